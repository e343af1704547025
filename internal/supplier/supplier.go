// Package supplier defines the boundary to the external telephony and speech
// services and the retrying HTTP transport their clients share.
package supplier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/godilite/call-insights/internal/domain"
)

// ErrUnexpectedStatus is wrapped by SupplierError for non-2xx responses.
var ErrUnexpectedStatus = errors.New("unexpected status")

// CallSupplier returns raw call-log records for a reporting window.
type CallSupplier interface {
	FetchCalls(ctx context.Context, from, to time.Time) ([]domain.RawCallRecord, error)
}

// TranscriptionSupplier turns a recording into a transcript tagged with callID.
type TranscriptionSupplier interface {
	Transcribe(ctx context.Context, callID, recordingURL string) (*domain.TranscriptBundle, error)
}

// Observer receives one notification per logical request, after retries.
type Observer interface {
	ObserveSupplierRequest(supplier, op, outcome string, elapsed time.Duration)
}

// SupplierError is the typed failure of an external fetch. StatusCode is zero
// when no response was received.
type SupplierError struct {
	Supplier   string
	Op         string
	StatusCode int
	Err        error
}

func (e *SupplierError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Supplier, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Supplier, e.Op, e.Err)
}

func (e *SupplierError) Unwrap() error { return e.Err }

// Temporary reports whether retrying the same request later could succeed.
func (e *SupplierError) Temporary() bool {
	return e.StatusCode == 0 || e.StatusCode == 429 || e.StatusCode >= 500
}
