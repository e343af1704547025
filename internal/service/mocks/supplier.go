package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/godilite/call-insights/internal/domain"
)

type MockCallSupplier struct {
	FetchCallsFunc func(ctx context.Context, from, to time.Time) ([]domain.RawCallRecord, error)
}

func (m *MockCallSupplier) FetchCalls(ctx context.Context, from, to time.Time) ([]domain.RawCallRecord, error) {
	if m.FetchCallsFunc != nil {
		return m.FetchCallsFunc(ctx, from, to)
	}
	return nil, errors.New("FetchCallsFunc not implemented")
}

type MockTranscriptionSupplier struct {
	TranscribeFunc func(ctx context.Context, callID, recordingURL string) (*domain.TranscriptBundle, error)
}

func (m *MockTranscriptionSupplier) Transcribe(ctx context.Context, callID, recordingURL string) (*domain.TranscriptBundle, error) {
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, callID, recordingURL)
	}
	return nil, errors.New("TranscribeFunc not implemented")
}
