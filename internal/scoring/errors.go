package scoring

import (
	"errors"
	"fmt"
)

var (
	ErrNotApplicable      = errors.New("call has no recording")
	ErrTranscriptPending  = errors.New("transcript pending")
	ErrTranscriptTooShort = errors.New("transcript too short")
)

// ScoringError marks a call that could not be scored. Such calls are left out
// of averages rather than scored as zero.
type ScoringError struct {
	CallID string
	Err    error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("score call %q: %v", e.CallID, e.Err)
}

func (e *ScoringError) Unwrap() error { return e.Err }

// Reason is a short stable label for metrics and API responses.
func (e *ScoringError) Reason() string {
	switch {
	case errors.Is(e.Err, ErrNotApplicable):
		return "not_applicable"
	case errors.Is(e.Err, ErrTranscriptPending):
		return "pending"
	case errors.Is(e.Err, ErrTranscriptTooShort):
		return "too_short"
	}
	return "other"
}
