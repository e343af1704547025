package ringba

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/godilite/call-insights/internal/supplier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("requires credentials", func(t *testing.T) {
		_, err := New("", "tok")
		assert.ErrorIs(t, err, ErrMissingCredential)
	})

	t.Run("rejects unknown scheme", func(t *testing.T) {
		_, err := New("acct", "tok", WithAuthScheme("Basic"))
		assert.ErrorIs(t, err, ErrInvalidAuthScheme)
	})

	t.Run("scheme is case insensitive", func(t *testing.T) {
		c, err := New("acct", "tok", WithAuthScheme("bearer"))
		require.NoError(t, err)
		assert.Equal(t, "Bearer tok", c.authValue)
	})
}

func TestFetchCallsPaginates(t *testing.T) {
	var requests []callLogRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/RA123/calllogs", r.URL.Path)
		assert.Equal(t, "Token secret", r.Header.Get("Authorization"))

		var req callLogRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests = append(requests, req)

		n := 2
		if req.Offset >= 4 {
			n = 1
		}
		records := make([]string, n)
		for i := range records {
			records[i] = fmt.Sprintf(`{"inboundCallId":"c%d","callLengthInSeconds":%d}`, req.Offset+i, 30+i)
		}
		fmt.Fprintf(w, `{"isSuccessful":true,"report":{"records":[%s],"totalCount":5}}`, strings.Join(records, ","))
	}))
	defer srv.Close()

	c, err := New("RA123", "secret", WithBaseURL(srv.URL+"/v2/"), WithPageSize(2))
	require.NoError(t, err)

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	got, err := c.FetchCalls(context.Background(), from, to)

	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, "c0", got[0]["inboundCallId"])
	assert.Equal(t, "c4", got[4]["inboundCallId"])
	assert.Equal(t, json.Number("30"), got[0]["callLengthInSeconds"])

	require.Len(t, requests, 3)
	assert.Equal(t, []int{0, 2, 4}, []int{requests[0].Offset, requests[1].Offset, requests[2].Offset})
	assert.Equal(t, "2025-03-01T00:00:00Z", requests[0].ReportStart)
	assert.Equal(t, "2025-03-02T00:00:00Z", requests[0].ReportEnd)
	assert.Equal(t, 2, requests[0].Size)
}

func TestFetchCallsFailures(t *testing.T) {
	t.Run("forbidden is a supplier error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "forbidden", http.StatusForbidden)
		}))
		defer srv.Close()

		c, err := New("RA123", "secret", WithBaseURL(srv.URL))
		require.NoError(t, err)

		_, err = c.FetchCalls(context.Background(), time.Now(), time.Now())

		var se *supplier.SupplierError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, Name, se.Supplier)
		assert.Equal(t, "fetch_calls", se.Op)
		assert.Equal(t, http.StatusForbidden, se.StatusCode)
	})

	t.Run("unrecognised payload is a supplier error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"message":"ok"}`))
		}))
		defer srv.Close()

		c, err := New("RA123", "secret", WithBaseURL(srv.URL))
		require.NoError(t, err)

		_, err = c.FetchCalls(context.Background(), time.Now(), time.Now())

		var se *supplier.SupplierError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, http.StatusOK, se.StatusCode)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		hits := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			if hits == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte(`[{"callId":"a"}]`))
		}))
		defer srv.Close()

		c, err := New("RA123", "secret", WithBaseURL(srv.URL), WithRetry(time.Second, time.Millisecond))
		require.NoError(t, err)

		got, err := c.FetchCalls(context.Background(), time.Now(), time.Now())

		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, 2, hits)
	})
}
