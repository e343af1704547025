package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/godilite/call-insights/internal/domain"
	"github.com/godilite/call-insights/internal/repository/models"
)

// MockCallStore is a mock implementation of the CallStore interface for
// testing the service layer.
type MockCallStore struct {
	UpsertCallsFunc        func(ctx context.Context, calls []domain.CallRecord) error
	GetCallFunc            func(ctx context.Context, id string) (domain.CallRecord, error)
	SaveTranscriptFunc     func(ctx context.Context, t *domain.TranscriptBundle) error
	GetTranscriptFunc      func(ctx context.Context, callID string) (*domain.TranscriptBundle, error)
	GetTranscriptsFunc     func(ctx context.Context, ids []string) (map[string]*domain.TranscriptBundle, error)
	AppendAnalysisFunc     func(ctx context.Context, a domain.QualityAnalysis) (domain.AnalysisRecord, error)
	GetLatestAnalysisFunc  func(ctx context.Context, callID string) (domain.AnalysisRecord, error)
	LatestAnalysesFunc     func(ctx context.Context, ids []string) (map[string]domain.AnalysisRecord, error)
	GetAnalysisHistoryFunc func(ctx context.Context, callID string) ([]domain.AnalysisRecord, error)
	ListScoredCallsFunc    func(ctx context.Context, start, end time.Time) ([]domain.ScoredCall, error)
	GetOverallScoreFunc    func(ctx context.Context, start, end time.Time) (models.OverallScoreResult, error)
	GetDailyScoresFunc     func(ctx context.Context, start, end time.Time) ([]models.DailyScore, error)
}

func (m *MockCallStore) UpsertCalls(ctx context.Context, calls []domain.CallRecord) error {
	if m.UpsertCallsFunc != nil {
		return m.UpsertCallsFunc(ctx, calls)
	}
	return errors.New("UpsertCallsFunc not implemented")
}

func (m *MockCallStore) GetCall(ctx context.Context, id string) (domain.CallRecord, error) {
	if m.GetCallFunc != nil {
		return m.GetCallFunc(ctx, id)
	}
	return domain.CallRecord{}, errors.New("GetCallFunc not implemented")
}

func (m *MockCallStore) SaveTranscript(ctx context.Context, t *domain.TranscriptBundle) error {
	if m.SaveTranscriptFunc != nil {
		return m.SaveTranscriptFunc(ctx, t)
	}
	return errors.New("SaveTranscriptFunc not implemented")
}

func (m *MockCallStore) GetTranscript(ctx context.Context, callID string) (*domain.TranscriptBundle, error) {
	if m.GetTranscriptFunc != nil {
		return m.GetTranscriptFunc(ctx, callID)
	}
	return nil, errors.New("GetTranscriptFunc not implemented")
}

func (m *MockCallStore) GetTranscripts(ctx context.Context, ids []string) (map[string]*domain.TranscriptBundle, error) {
	if m.GetTranscriptsFunc != nil {
		return m.GetTranscriptsFunc(ctx, ids)
	}
	return nil, errors.New("GetTranscriptsFunc not implemented")
}

func (m *MockCallStore) AppendAnalysis(ctx context.Context, a domain.QualityAnalysis) (domain.AnalysisRecord, error) {
	if m.AppendAnalysisFunc != nil {
		return m.AppendAnalysisFunc(ctx, a)
	}
	return domain.AnalysisRecord{}, errors.New("AppendAnalysisFunc not implemented")
}

func (m *MockCallStore) GetLatestAnalysis(ctx context.Context, callID string) (domain.AnalysisRecord, error) {
	if m.GetLatestAnalysisFunc != nil {
		return m.GetLatestAnalysisFunc(ctx, callID)
	}
	return domain.AnalysisRecord{}, errors.New("GetLatestAnalysisFunc not implemented")
}

func (m *MockCallStore) LatestAnalyses(ctx context.Context, ids []string) (map[string]domain.AnalysisRecord, error) {
	if m.LatestAnalysesFunc != nil {
		return m.LatestAnalysesFunc(ctx, ids)
	}
	return nil, errors.New("LatestAnalysesFunc not implemented")
}

func (m *MockCallStore) GetAnalysisHistory(ctx context.Context, callID string) ([]domain.AnalysisRecord, error) {
	if m.GetAnalysisHistoryFunc != nil {
		return m.GetAnalysisHistoryFunc(ctx, callID)
	}
	return nil, errors.New("GetAnalysisHistoryFunc not implemented")
}

func (m *MockCallStore) ListScoredCalls(ctx context.Context, start, end time.Time) ([]domain.ScoredCall, error) {
	if m.ListScoredCallsFunc != nil {
		return m.ListScoredCallsFunc(ctx, start, end)
	}
	return nil, errors.New("ListScoredCallsFunc not implemented")
}

func (m *MockCallStore) GetOverallScore(ctx context.Context, start, end time.Time) (models.OverallScoreResult, error) {
	if m.GetOverallScoreFunc != nil {
		return m.GetOverallScoreFunc(ctx, start, end)
	}
	return models.OverallScoreResult{}, errors.New("GetOverallScoreFunc not implemented")
}

func (m *MockCallStore) GetDailyScores(ctx context.Context, start, end time.Time) ([]models.DailyScore, error) {
	if m.GetDailyScoresFunc != nil {
		return m.GetDailyScoresFunc(ctx, start, end)
	}
	return nil, errors.New("GetDailyScoresFunc not implemented")
}
