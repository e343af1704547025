package grpc

import (
	"context"
	"time"

	"github.com/godilite/call-insights/internal/domain"
	"github.com/godilite/call-insights/internal/service"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// AnalyticsService is the part of *service.AnalyticsService the handlers call.
type AnalyticsService interface {
	GetCampaignMetrics(ctx context.Context, start, end time.Time) ([]domain.Metrics, error)
	GetAgentMetrics(ctx context.Context, start, end time.Time) ([]domain.Metrics, error)
	GetOverallScore(ctx context.Context, start, end time.Time) (float64, error)
	GetPeriodOverPeriodScoreChange(ctx context.Context, start, end time.Time) (service.PeriodChange, error)
	GetScoreTrend(ctx context.Context, start, end time.Time) ([]service.PeriodScore, error)
	GetCallAnalysis(ctx context.Context, callID string) (domain.AnalysisRecord, error)
	Sync(ctx context.Context, from, to time.Time) (service.SyncReport, error)
}
