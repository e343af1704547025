// Package transcript attaches transcription output to canonical calls.
package transcript

import (
	"errors"
	"fmt"

	"github.com/godilite/call-insights/internal/domain"
)

// ErrTranscriptMismatch is returned when a bundle is tagged with another
// call's id.
var ErrTranscriptMismatch = errors.New("transcript belongs to a different call")

// Merge resolves the transcription state of a call. Calls without a recording
// never carry a transcript. Matching is by call id only; recording URLs are
// not trusted because they are reused and expire.
func Merge(call domain.CallRecord, t *domain.TranscriptBundle) (domain.MergedCall, error) {
	merged := domain.MergedCall{Call: call}

	switch {
	case !call.HasRecording:
		merged.TranscriptionStatus = domain.TranscriptionNotApplicable
		return merged, nil
	case t == nil:
		merged.TranscriptionStatus = domain.TranscriptionPending
		return merged, nil
	case t.CallID != "" && t.CallID != call.ID:
		merged.TranscriptionStatus = domain.TranscriptionPending
		return merged, fmt.Errorf("%w: call %q, transcript %q", ErrTranscriptMismatch, call.ID, t.CallID)
	}

	bundle := *t
	bundle.CallID = call.ID
	merged.Transcript = &bundle
	merged.TranscriptionStatus = domain.TranscriptionCompleted
	return merged, nil
}

// MergeAll merges a batch in source order. A transcript that fails to match
// leaves its call pending and its error is joined into the returned error;
// the merged slice is complete either way.
func MergeAll(calls []domain.CallRecord, byID map[string]*domain.TranscriptBundle) ([]domain.MergedCall, error) {
	out := make([]domain.MergedCall, len(calls))
	var errs []error
	for i, call := range calls {
		merged, err := Merge(call, byID[call.ID])
		if err != nil {
			errs = append(errs, err)
		}
		out[i] = merged
	}
	return out, errors.Join(errs...)
}

// Index keys bundles by call id. Bundles without an id are skipped; for
// duplicate ids the last one wins.
func Index(bundles []domain.TranscriptBundle) map[string]*domain.TranscriptBundle {
	out := make(map[string]*domain.TranscriptBundle, len(bundles))
	for i := range bundles {
		if bundles[i].CallID == "" {
			continue
		}
		out[bundles[i].CallID] = &bundles[i]
	}
	return out
}
