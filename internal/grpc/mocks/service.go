package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/godilite/call-insights/internal/domain"
	"github.com/godilite/call-insights/internal/service"
)

// MockAnalyticsService is a mock implementation of the AnalyticsService
// interface for testing the handler layer.
type MockAnalyticsService struct {
	GetCampaignMetricsFunc             func(ctx context.Context, start, end time.Time) ([]domain.Metrics, error)
	GetAgentMetricsFunc                func(ctx context.Context, start, end time.Time) ([]domain.Metrics, error)
	GetOverallScoreFunc                func(ctx context.Context, start, end time.Time) (float64, error)
	GetPeriodOverPeriodScoreChangeFunc func(ctx context.Context, start, end time.Time) (service.PeriodChange, error)
	GetScoreTrendFunc                  func(ctx context.Context, start, end time.Time) ([]service.PeriodScore, error)
	GetCallAnalysisFunc                func(ctx context.Context, callID string) (domain.AnalysisRecord, error)
	SyncFunc                           func(ctx context.Context, from, to time.Time) (service.SyncReport, error)
}

func (m *MockAnalyticsService) GetCampaignMetrics(ctx context.Context, start, end time.Time) ([]domain.Metrics, error) {
	if m.GetCampaignMetricsFunc != nil {
		return m.GetCampaignMetricsFunc(ctx, start, end)
	}
	return nil, errors.New("GetCampaignMetricsFunc not implemented")
}

func (m *MockAnalyticsService) GetAgentMetrics(ctx context.Context, start, end time.Time) ([]domain.Metrics, error) {
	if m.GetAgentMetricsFunc != nil {
		return m.GetAgentMetricsFunc(ctx, start, end)
	}
	return nil, errors.New("GetAgentMetricsFunc not implemented")
}

func (m *MockAnalyticsService) GetOverallScore(ctx context.Context, start, end time.Time) (float64, error) {
	if m.GetOverallScoreFunc != nil {
		return m.GetOverallScoreFunc(ctx, start, end)
	}
	return 0, errors.New("GetOverallScoreFunc not implemented")
}

func (m *MockAnalyticsService) GetPeriodOverPeriodScoreChange(ctx context.Context, start, end time.Time) (service.PeriodChange, error) {
	if m.GetPeriodOverPeriodScoreChangeFunc != nil {
		return m.GetPeriodOverPeriodScoreChangeFunc(ctx, start, end)
	}
	return service.PeriodChange{}, errors.New("GetPeriodOverPeriodScoreChangeFunc not implemented")
}

func (m *MockAnalyticsService) GetScoreTrend(ctx context.Context, start, end time.Time) ([]service.PeriodScore, error) {
	if m.GetScoreTrendFunc != nil {
		return m.GetScoreTrendFunc(ctx, start, end)
	}
	return nil, errors.New("GetScoreTrendFunc not implemented")
}

func (m *MockAnalyticsService) GetCallAnalysis(ctx context.Context, callID string) (domain.AnalysisRecord, error) {
	if m.GetCallAnalysisFunc != nil {
		return m.GetCallAnalysisFunc(ctx, callID)
	}
	return domain.AnalysisRecord{}, errors.New("GetCallAnalysisFunc not implemented")
}

func (m *MockAnalyticsService) Sync(ctx context.Context, from, to time.Time) (service.SyncReport, error) {
	if m.SyncFunc != nil {
		return m.SyncFunc(ctx, from, to)
	}
	return service.SyncReport{}, errors.New("SyncFunc not implemented")
}
