package service_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/godilite/call-insights/internal/scoring"
	"github.com/godilite/call-insights/internal/service"
	"github.com/godilite/call-insights/internal/transcript"
	"github.com/stretchr/testify/assert"
)

func TestIsWeeklyAggregation_Utils(t *testing.T) {
	cases := []struct {
		name     string
		start    time.Time
		end      time.Time
		expected bool
	}{
		{
			name:     "less than 4 weeks is daily",
			start:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			end:      time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
			expected: false,
		},
		{
			name:     "exactly 4 weeks is weekly",
			start:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			end:      time.Date(2025, 1, 29, 0, 0, 0, 0, time.UTC),
			expected: true,
		},
		{
			name:     "over a calendar month is weekly",
			start:    time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			end:      time.Date(2025, 2, 16, 0, 0, 0, 0, time.UTC),
			expected: true,
		},
		{
			name:     "spanning february is weekly",
			start:    time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
			end:      time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
			expected: true,
		},
		{
			name:     "single day is daily",
			start:    time.Date(2025, 10, 18, 0, 0, 0, 0, time.UTC),
			end:      time.Date(2025, 10, 18, 23, 59, 59, 0, time.UTC),
			expected: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := service.IsWeeklyAggregation(tc.start, tc.end)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestReasonOf_Utils(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"pending", &scoring.ScoringError{CallID: "c1", Err: scoring.ErrTranscriptPending}, "pending"},
		{"no recording", &scoring.ScoringError{CallID: "c1", Err: scoring.ErrNotApplicable}, "not_applicable"},
		{"mismatched transcript", fmt.Errorf("%w: call %q", transcript.ErrTranscriptMismatch, "c1"), "merge_error"},
		{"anything else", errors.New("boom"), "other"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, service.ReasonOf(tc.err))
		})
	}
}
