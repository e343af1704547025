package transcript

import (
	"testing"

	"github.com/godilite/call-insights/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordedCall(id string) domain.CallRecord {
	return domain.CallRecord{ID: id, RecordingURL: "https://x/" + id + ".wav", HasRecording: true}
}

func TestMerge(t *testing.T) {
	t.Run("no recording is not applicable and drops transcript", func(t *testing.T) {
		call := domain.CallRecord{ID: "c1"}
		bundle := &domain.TranscriptBundle{CallID: "c1", Text: "hello there"}

		merged, err := Merge(call, bundle)

		require.NoError(t, err)
		assert.Equal(t, domain.TranscriptionNotApplicable, merged.TranscriptionStatus)
		assert.Nil(t, merged.Transcript)
	})

	t.Run("recording without transcript is pending", func(t *testing.T) {
		merged, err := Merge(recordedCall("c1"), nil)

		require.NoError(t, err)
		assert.Equal(t, domain.TranscriptionPending, merged.TranscriptionStatus)
		assert.Nil(t, merged.Transcript)
	})

	t.Run("matching transcript completes", func(t *testing.T) {
		bundle := &domain.TranscriptBundle{CallID: "c1", Text: "Thank you for calling, how can I help?"}

		merged, err := Merge(recordedCall("c1"), bundle)

		require.NoError(t, err)
		assert.Equal(t, domain.TranscriptionCompleted, merged.TranscriptionStatus)
		require.NotNil(t, merged.Transcript)
		assert.Equal(t, bundle.Text, merged.Transcript.Text)
	})

	t.Run("untagged transcript is bound to the call", func(t *testing.T) {
		merged, err := Merge(recordedCall("c1"), &domain.TranscriptBundle{Text: "hi"})

		require.NoError(t, err)
		assert.Equal(t, "c1", merged.Transcript.CallID)
	})

	t.Run("transcript for another call is rejected", func(t *testing.T) {
		merged, err := Merge(recordedCall("c1"), &domain.TranscriptBundle{CallID: "c2", Text: "hi"})

		assert.ErrorIs(t, err, ErrTranscriptMismatch)
		assert.Equal(t, domain.TranscriptionPending, merged.TranscriptionStatus)
		assert.Nil(t, merged.Transcript)
	})

	t.Run("same recording url does not match", func(t *testing.T) {
		a := recordedCall("a")
		b := recordedCall("b")
		b.RecordingURL = a.RecordingURL
		byID := Index([]domain.TranscriptBundle{{CallID: "a", Text: "only a"}})

		merged, err := MergeAll([]domain.CallRecord{a, b}, byID)

		require.NoError(t, err)
		assert.Equal(t, domain.TranscriptionCompleted, merged[0].TranscriptionStatus)
		assert.Equal(t, domain.TranscriptionPending, merged[1].TranscriptionStatus)
	})
}

func TestMergeAllNeverAttachesToUnrecordedCalls(t *testing.T) {
	calls := []domain.CallRecord{
		{ID: "u1"},
		recordedCall("r1"),
		{ID: "u2", RecordingURL: ""},
	}
	byID := Index([]domain.TranscriptBundle{
		{CallID: "u1", Text: "should never attach"},
		{CallID: "r1", Text: "attached"},
		{CallID: "u2", Text: "should never attach"},
	})

	merged, err := MergeAll(calls, byID)

	require.NoError(t, err)
	require.Len(t, merged, 3)
	for _, m := range merged {
		if !m.Call.HasRecording {
			assert.Nil(t, m.Transcript)
		}
	}
	assert.Equal(t, "r1", merged[1].Call.ID)
	assert.Equal(t, "attached", merged[1].Transcript.Text)
}

func TestMergeAllReportsMismatches(t *testing.T) {
	calls := []domain.CallRecord{recordedCall("c1"), recordedCall("c2"), recordedCall("c3")}
	byID := map[string]*domain.TranscriptBundle{
		"c1": {CallID: "c1", Text: "fine"},
		"c2": {CallID: "c9", Text: "wrong call"},
		"c3": {CallID: "c8", Text: "also wrong"},
	}

	merged, err := MergeAll(calls, byID)

	require.Len(t, merged, 3)
	assert.ErrorIs(t, err, ErrTranscriptMismatch)
	assert.ErrorContains(t, err, `"c2"`)
	assert.ErrorContains(t, err, `"c3"`)
	assert.Equal(t, domain.TranscriptionCompleted, merged[0].TranscriptionStatus)
	assert.Equal(t, domain.TranscriptionPending, merged[1].TranscriptionStatus)
	assert.Nil(t, merged[2].Transcript)
}

func TestIndex(t *testing.T) {
	byID := Index([]domain.TranscriptBundle{
		{CallID: "a", Text: "first"},
		{Text: "no id"},
		{CallID: "a", Text: "second"},
	})

	assert.Len(t, byID, 1)
	assert.Equal(t, "second", byID["a"].Text)
}
