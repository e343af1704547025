package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/godilite/call-insights/internal/domain"
	"github.com/godilite/call-insights/internal/service"
)

// MockAnalytics is a function-field implementation of httpapi.Analytics.
type MockAnalytics struct {
	GetCampaignMetricsFunc             func(ctx context.Context, start, end time.Time) ([]domain.Metrics, error)
	GetAgentMetricsFunc                func(ctx context.Context, start, end time.Time) ([]domain.Metrics, error)
	GetSummaryFunc                     func(ctx context.Context, start, end time.Time) (domain.Metrics, error)
	GetOverallScoreFunc                func(ctx context.Context, start, end time.Time) (float64, error)
	GetPeriodOverPeriodScoreChangeFunc func(ctx context.Context, start, end time.Time) (service.PeriodChange, error)
	GetScoreTrendFunc                  func(ctx context.Context, start, end time.Time) ([]service.PeriodScore, error)
	GetCallAnalysisFunc                func(ctx context.Context, callID string) (domain.AnalysisRecord, error)
	GetAnalysisHistoryFunc             func(ctx context.Context, callID string) ([]domain.AnalysisRecord, error)
	RescoreFunc                        func(ctx context.Context, callID string) (domain.AnalysisRecord, error)
	SyncFunc                           func(ctx context.Context, from, to time.Time) (service.SyncReport, error)
}

func (m *MockAnalytics) GetCampaignMetrics(ctx context.Context, start, end time.Time) ([]domain.Metrics, error) {
	if m.GetCampaignMetricsFunc != nil {
		return m.GetCampaignMetricsFunc(ctx, start, end)
	}
	return nil, errors.New("GetCampaignMetricsFunc not implemented")
}

func (m *MockAnalytics) GetAgentMetrics(ctx context.Context, start, end time.Time) ([]domain.Metrics, error) {
	if m.GetAgentMetricsFunc != nil {
		return m.GetAgentMetricsFunc(ctx, start, end)
	}
	return nil, errors.New("GetAgentMetricsFunc not implemented")
}

func (m *MockAnalytics) GetSummary(ctx context.Context, start, end time.Time) (domain.Metrics, error) {
	if m.GetSummaryFunc != nil {
		return m.GetSummaryFunc(ctx, start, end)
	}
	return domain.Metrics{}, errors.New("GetSummaryFunc not implemented")
}

func (m *MockAnalytics) GetOverallScore(ctx context.Context, start, end time.Time) (float64, error) {
	if m.GetOverallScoreFunc != nil {
		return m.GetOverallScoreFunc(ctx, start, end)
	}
	return 0, errors.New("GetOverallScoreFunc not implemented")
}

func (m *MockAnalytics) GetPeriodOverPeriodScoreChange(ctx context.Context, start, end time.Time) (service.PeriodChange, error) {
	if m.GetPeriodOverPeriodScoreChangeFunc != nil {
		return m.GetPeriodOverPeriodScoreChangeFunc(ctx, start, end)
	}
	return service.PeriodChange{}, errors.New("GetPeriodOverPeriodScoreChangeFunc not implemented")
}

func (m *MockAnalytics) GetScoreTrend(ctx context.Context, start, end time.Time) ([]service.PeriodScore, error) {
	if m.GetScoreTrendFunc != nil {
		return m.GetScoreTrendFunc(ctx, start, end)
	}
	return nil, errors.New("GetScoreTrendFunc not implemented")
}

func (m *MockAnalytics) GetCallAnalysis(ctx context.Context, callID string) (domain.AnalysisRecord, error) {
	if m.GetCallAnalysisFunc != nil {
		return m.GetCallAnalysisFunc(ctx, callID)
	}
	return domain.AnalysisRecord{}, errors.New("GetCallAnalysisFunc not implemented")
}

func (m *MockAnalytics) GetAnalysisHistory(ctx context.Context, callID string) ([]domain.AnalysisRecord, error) {
	if m.GetAnalysisHistoryFunc != nil {
		return m.GetAnalysisHistoryFunc(ctx, callID)
	}
	return nil, errors.New("GetAnalysisHistoryFunc not implemented")
}

func (m *MockAnalytics) Rescore(ctx context.Context, callID string) (domain.AnalysisRecord, error) {
	if m.RescoreFunc != nil {
		return m.RescoreFunc(ctx, callID)
	}
	return domain.AnalysisRecord{}, errors.New("RescoreFunc not implemented")
}

func (m *MockAnalytics) Sync(ctx context.Context, from, to time.Time) (service.SyncReport, error) {
	if m.SyncFunc != nil {
		return m.SyncFunc(ctx, from, to)
	}
	return service.SyncReport{}, errors.New("SyncFunc not implemented")
}

// MockInvalidator records the prefixes it was asked to drop.
type MockInvalidator struct {
	DeletePrefixFunc func(ctx context.Context, prefix string) (int, error)
	Prefixes         []string
}

func (m *MockInvalidator) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	m.Prefixes = append(m.Prefixes, prefix)
	if m.DeletePrefixFunc != nil {
		return m.DeletePrefixFunc(ctx, prefix)
	}
	return 0, nil
}
