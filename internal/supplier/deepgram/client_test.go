package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/godilite/call-insights/internal/domain"
	"github.com/godilite/call-insights/internal/supplier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listenBody = `{
  "metadata": {"request_id": "req-1", "duration": 12.5},
  "results": {
    "channels": [{
      "alternatives": [{
        "transcript": "thank you for calling how can i help i need a quote",
        "confidence": 0.93,
        "words": [
          {"word": "thank", "punctuated_word": "Thank", "start": 0.1, "end": 0.3, "confidence": 0.99, "speaker": 0},
          {"word": "you", "start": 0.3, "end": 0.4, "confidence": 0.98, "speaker": 0},
          {"word": "i", "punctuated_word": "I", "start": 2.0, "end": 2.1, "confidence": 0.9, "speaker": 1},
          {"word": "quote", "punctuated_word": "quote.", "start": 2.1, "end": 2.6, "confidence": 0.9, "speaker": 1}
        ],
        "paragraphs": {
          "paragraphs": [
            {"speaker": 0, "start": 0.1, "end": 0.4, "sentences": [{"text": "Thank you.", "start": 0.1, "end": 0.4}]},
            {"speaker": 1, "start": 2.0, "end": 2.6, "sentences": [{"text": "I quote.", "start": 2.0, "end": 2.6}]}
          ]
        }
      }]
    }],
    "sentiments": {
      "segments": [
        {"text": "Thank you", "start_word": 0, "end_word": 1, "sentiment": "positive", "sentiment_score": 0.71},
        {"text": "I quote", "start_word": 2, "end_word": 9, "sentiment": "neutral", "sentiment_score": 0.02}
      ]
    }
  }
}`

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/listen", r.URL.Path)
		assert.Equal(t, "Token dg-key", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "nova-3", q.Get("model"))
		for _, flag := range []string{"punctuate", "diarize", "sentiment", "paragraphs", "smart_format"} {
			assert.Equal(t, "true", q.Get(flag), flag)
		}

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://x/c1.wav", body["url"])

		_, _ = w.Write([]byte(listenBody))
	}))
	defer srv.Close()

	c, err := New("dg-key", WithBaseURL(srv.URL), WithModel("nova-3"))
	require.NoError(t, err)

	b, err := c.Transcribe(context.Background(), "c1", "https://x/c1.wav")

	require.NoError(t, err)
	assert.Equal(t, "c1", b.CallID)
	assert.Equal(t, "req-1", b.RequestID)
	assert.Equal(t, 12.5, b.Duration)
	assert.Equal(t, 0.93, b.Confidence)
	assert.Equal(t, "thank you for calling how can i help i need a quote", b.Text)

	require.Len(t, b.Words, 4)
	assert.Equal(t, "Thank", b.Words[0].Text)
	assert.Equal(t, "you", b.Words[1].Text, "falls back to the raw word")
	assert.Equal(t, 1, b.Words[3].Speaker)

	require.Len(t, b.Paragraphs, 2)
	assert.Equal(t, 1, b.Paragraphs[1].Speaker)
	assert.Equal(t, "I quote.", b.Paragraphs[1].Sentences[0].Text)

	require.Len(t, b.Sentiments, 2)
	assert.Equal(t, domain.SentimentPositive, b.Sentiments[0].Sentiment)
	assert.Equal(t, 0.1, b.Sentiments[0].Start)
	assert.Equal(t, 0.4, b.Sentiments[0].End)
	assert.Equal(t, 0, b.Sentiments[0].Speaker)
	assert.Equal(t, 1, b.Sentiments[1].Speaker)
	assert.Zero(t, b.Sentiments[1].End, "out of range word index is ignored")
}

func TestTranscribeUndiarizedWords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":{"channels":[{"alternatives":[{"transcript":"hello","words":[{"word":"hello","start":0,"end":1}]}]}]}}`))
	}))
	defer srv.Close()

	c, err := New("dg-key", WithBaseURL(srv.URL))
	require.NoError(t, err)

	b, err := c.Transcribe(context.Background(), "c1", "https://x/c1.wav")

	require.NoError(t, err)
	assert.Equal(t, domain.UnknownSpeaker, b.Words[0].Speaker)
	assert.Empty(t, b.Sentiments)
}

func TestTranscribeFailures(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		_, err := New("")
		assert.ErrorIs(t, err, ErrMissingAPIKey)
	})

	t.Run("missing recording url", func(t *testing.T) {
		c, err := New("dg-key")
		require.NoError(t, err)

		_, err = c.Transcribe(context.Background(), "c1", "")

		assert.ErrorIs(t, err, ErrMissingRecordingURL)
	})

	t.Run("unauthorized", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"err_code":"INVALID_AUTH"}`, http.StatusUnauthorized)
		}))
		defer srv.Close()

		c, err := New("bad", WithBaseURL(srv.URL))
		require.NoError(t, err)

		_, err = c.Transcribe(context.Background(), "c1", "https://x/c1.wav")

		var se *supplier.SupplierError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, Name, se.Supplier)
		assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	})

	t.Run("empty alternatives", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"results":{"channels":[]}}`))
		}))
		defer srv.Close()

		c, err := New("dg-key", WithBaseURL(srv.URL))
		require.NoError(t, err)

		_, err = c.Transcribe(context.Background(), "c1", "https://x/c1.wav")

		assert.ErrorIs(t, err, ErrNoAlternatives)
	})
}
