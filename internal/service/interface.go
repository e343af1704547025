package service

import (
	"context"
	"time"

	"github.com/godilite/call-insights/internal/domain"
	"github.com/godilite/call-insights/internal/repository/models"
)

// CallStore defines the persistence operations the service needs.
type CallStore interface {
	UpsertCalls(ctx context.Context, calls []domain.CallRecord) error
	GetCall(ctx context.Context, id string) (domain.CallRecord, error)
	SaveTranscript(ctx context.Context, t *domain.TranscriptBundle) error
	GetTranscript(ctx context.Context, callID string) (*domain.TranscriptBundle, error)
	GetTranscripts(ctx context.Context, ids []string) (map[string]*domain.TranscriptBundle, error)
	AppendAnalysis(ctx context.Context, a domain.QualityAnalysis) (domain.AnalysisRecord, error)
	GetLatestAnalysis(ctx context.Context, callID string) (domain.AnalysisRecord, error)
	LatestAnalyses(ctx context.Context, ids []string) (map[string]domain.AnalysisRecord, error)
	GetAnalysisHistory(ctx context.Context, callID string) ([]domain.AnalysisRecord, error)
	ListScoredCalls(ctx context.Context, start, end time.Time) ([]domain.ScoredCall, error)
	GetOverallScore(ctx context.Context, start, end time.Time) (models.OverallScoreResult, error)
	GetDailyScores(ctx context.Context, start, end time.Time) ([]models.DailyScore, error)
}

// Telemetry receives pipeline counters. A nil Telemetry is allowed.
type Telemetry interface {
	CallsNormalized(valid, invalid int)
	CallScored(kind domain.AnalysisKind, rating domain.Rating)
	ScoringSkipped(reason string)
	SyncFinished(outcome string, elapsed time.Duration)
}

type nopTelemetry struct{}

func (nopTelemetry) CallsNormalized(int, int) {}
func (nopTelemetry) CallScored(domain.AnalysisKind, domain.Rating) {}
func (nopTelemetry) ScoringSkipped(string) {}
func (nopTelemetry) SyncFinished(string, time.Duration) {}
