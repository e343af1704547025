package httpapi

import (
	"context"
	"time"

	"github.com/godilite/call-insights/internal/domain"
	"github.com/godilite/call-insights/internal/service"
)

// Analytics is the part of *service.AnalyticsService the REST handlers call.
type Analytics interface {
	GetCampaignMetrics(ctx context.Context, start, end time.Time) ([]domain.Metrics, error)
	GetAgentMetrics(ctx context.Context, start, end time.Time) ([]domain.Metrics, error)
	GetSummary(ctx context.Context, start, end time.Time) (domain.Metrics, error)
	GetOverallScore(ctx context.Context, start, end time.Time) (float64, error)
	GetPeriodOverPeriodScoreChange(ctx context.Context, start, end time.Time) (service.PeriodChange, error)
	GetScoreTrend(ctx context.Context, start, end time.Time) ([]service.PeriodScore, error)
	GetCallAnalysis(ctx context.Context, callID string) (domain.AnalysisRecord, error)
	GetAnalysisHistory(ctx context.Context, callID string) ([]domain.AnalysisRecord, error)
	Rescore(ctx context.Context, callID string) (domain.AnalysisRecord, error)
	Sync(ctx context.Context, from, to time.Time) (service.SyncReport, error)
}

// CacheInvalidator drops cached report responses after new data lands.
type CacheInvalidator interface {
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// Observer receives one notification per served request.
type Observer interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}
