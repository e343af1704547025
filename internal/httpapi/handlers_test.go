package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/godilite/call-insights/internal/domain"
	"github.com/godilite/call-insights/internal/httpapi/mocks"
	"github.com/godilite/call-insights/internal/report"
	"github.com/godilite/call-insights/internal/scoring"
	"github.com/godilite/call-insights/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var (
	testStart = time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC)
)

type response struct {
	Data      json.RawMessage `json:"data"`
	Error     *errorBody      `json:"error"`
	RequestID string          `json:"request_id"`
}

func serve(t *testing.T, h http.Handler, method, target string, body string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func windowQuery(path string) string {
	return fmt.Sprintf("%s?start=%s&end=%s", path, testStart.Format(time.RFC3339), testEnd.Format(time.RFC3339))
}

type observedRequest struct {
	method, route string
	status        int
}

type recordingObserver struct {
	seen []observedRequest
}

func (o *recordingObserver) ObserveHTTP(method, route string, status int, _ time.Duration) {
	o.seen = append(o.seen, observedRequest{method, route, status})
}

func TestNewHandlers(t *testing.T) {
	t.Run("nil analytics panics", func(t *testing.T) {
		assert.Panics(t, func() { NewHandlers(nil, zap.NewNop()) })
	})

	t.Run("nil logger is allowed", func(t *testing.T) {
		h := NewHandlers(&mocks.MockAnalytics{}, nil)
		assert.NotNil(t, h.logger)
	})
}

func TestHealthAndRequestID(t *testing.T) {
	h := NewHandlers(&mocks.MockAnalytics{}, zap.NewNop()).Routes()

	t.Run("generates an id", func(t *testing.T) {
		rec, resp := serve(t, h, http.MethodGet, "/healthz", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, string(resp.Data))
		assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
		assert.Equal(t, rec.Header().Get(RequestIDHeader), resp.RequestID)
	})

	t.Run("echoes incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set(RequestIDHeader, "req-42")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
	})
}

func TestWindowBinding(t *testing.T) {
	var gotStart, gotEnd time.Time
	mock := &mocks.MockAnalytics{
		GetCampaignMetricsFunc: func(ctx context.Context, start, end time.Time) ([]domain.Metrics, error) {
			gotStart, gotEnd = start, end
			return []domain.Metrics{}, nil
		},
	}
	h := NewHandlers(mock, zap.NewNop()).Routes()

	t.Run("rfc3339 bounds", func(t *testing.T) {
		rec, _ := serve(t, h, http.MethodGet, windowQuery("/api/v1/metrics/campaigns"), "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, testStart, gotStart)
		assert.Equal(t, testEnd, gotEnd)
	})

	t.Run("date only end covers the day", func(t *testing.T) {
		rec, _ := serve(t, h, http.MethodGet, "/api/v1/metrics/campaigns?start=2025-10-01&end=2025-10-31", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, testStart, gotStart)
		assert.Equal(t, testEnd.Add(24*time.Hour-time.Nanosecond), gotEnd)
	})

	tests := []struct {
		name    string
		query   string
		wantMsg string
	}{
		{"missing start", "?end=2025-10-31", "start is required"},
		{"missing both", "", "start is required; end is required"},
		{"end before start", "?start=2025-10-31&end=2025-10-01", "end must not be before start"},
		{"bad format", "?start=yesterday&end=2025-10-01", `start: "yesterday" is neither RFC3339 nor YYYY-MM-DD`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := serve(t, h, http.MethodGet, "/api/v1/metrics/campaigns"+tt.query, "")

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "invalid_request", resp.Error.Code)
			assert.Equal(t, tt.wantMsg, resp.Error.Message)
		})
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"no calls", service.ErrNoCalls, http.StatusNotFound, "no_calls"},
		{"no scores", service.ErrNoScores, http.StatusNotFound, "no_scores"},
		{"unknown call", service.ErrCallNotFound, http.StatusNotFound, "call_not_found"},
		{"not scored", service.ErrNotScored, http.StatusNotFound, "not_scored"},
		{"invalid window", fmt.Errorf("%w: x", service.ErrInvalidWindow), http.StatusBadRequest, "invalid_window"},
		{"scoring error", &scoring.ScoringError{CallID: "c1", Err: scoring.ErrTranscriptPending}, http.StatusUnprocessableEntity, "pending"},
		{"supplier not configured", service.ErrSupplierNotConfigured, http.StatusServiceUnavailable, "supplier_not_configured"},
		{"supplier failure", fmt.Errorf("%w: ringba 500", service.ErrSupplierFailure), http.StatusBadGateway, "supplier_error"},
		{"storage failure", fmt.Errorf("%w: locked", service.ErrStorageFailure), http.StatusInternalServerError, "storage_error"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mocks.MockAnalytics{
				GetCallAnalysisFunc: func(ctx context.Context, callID string) (domain.AnalysisRecord, error) {
					return domain.AnalysisRecord{}, tt.err
				},
			}
			h := NewHandlers(mock, zap.NewNop()).Routes()

			rec, resp := serve(t, h, http.MethodGet, "/api/v1/calls/c1/analysis", "")

			assert.Equal(t, tt.wantStatus, rec.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.NotContains(t, resp.Error.Message, "boom")
		})
	}
}

func TestReportEndpoints(t *testing.T) {
	avg := 7.5
	mock := &mocks.MockAnalytics{
		GetAgentMetricsFunc: func(ctx context.Context, start, end time.Time) ([]domain.Metrics, error) {
			return []domain.Metrics{{GroupBy: domain.GroupByAgent, Key: "Ann", TotalCalls: 2, ScoredCalls: 1, AverageScore: &avg}}, nil
		},
		GetSummaryFunc: func(ctx context.Context, start, end time.Time) (domain.Metrics, error) {
			return domain.Metrics{GroupBy: domain.GroupByAll, Key: "all", TotalCalls: 2, Revenue: decimal.NewFromInt(10)}, nil
		},
		GetOverallScoreFunc: func(ctx context.Context, start, end time.Time) (float64, error) {
			return 7.26, nil
		},
		GetPeriodOverPeriodScoreChangeFunc: func(ctx context.Context, start, end time.Time) (service.PeriodChange, error) {
			return service.PeriodChange{CurrentPeriodScore: 9, PreviousPeriodScore: 6, ChangePercentage: 50}, nil
		},
		GetScoreTrendFunc: func(ctx context.Context, start, end time.Time) ([]service.PeriodScore, error) {
			return []service.PeriodScore{{Period: "2025-W41", Score: 6.33, Count: 3}}, nil
		},
	}
	h := NewHandlers(mock, zap.NewNop()).Routes()

	t.Run("agents", func(t *testing.T) {
		rec, resp := serve(t, h, http.MethodGet, windowQuery("/api/v1/metrics/agents"), "")

		require.Equal(t, http.StatusOK, rec.Code)
		var rows []domain.Metrics
		require.NoError(t, json.Unmarshal(resp.Data, &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, "Ann", rows[0].Key)
		require.NotNil(t, rows[0].AverageScore)
		assert.Equal(t, 7.5, *rows[0].AverageScore)
	})

	t.Run("summary", func(t *testing.T) {
		rec, resp := serve(t, h, http.MethodGet, windowQuery("/api/v1/metrics/summary"), "")

		require.Equal(t, http.StatusOK, rec.Code)
		var m domain.Metrics
		require.NoError(t, json.Unmarshal(resp.Data, &m))
		assert.Equal(t, 2, m.TotalCalls)
		assert.Nil(t, m.AverageScore)
		assert.True(t, decimal.NewFromInt(10).Equal(m.Revenue))
	})

	t.Run("overall score", func(t *testing.T) {
		_, resp := serve(t, h, http.MethodGet, windowQuery("/api/v1/scores/overall"), "")
		assert.JSONEq(t, `{"score":7.26}`, string(resp.Data))
	})

	t.Run("period change", func(t *testing.T) {
		_, resp := serve(t, h, http.MethodGet, windowQuery("/api/v1/scores/change"), "")
		assert.JSONEq(t, `{"currentPeriodScore":9,"previousPeriodScore":6,"changePercentage":50}`, string(resp.Data))
	})

	t.Run("trend", func(t *testing.T) {
		_, resp := serve(t, h, http.MethodGet, windowQuery("/api/v1/scores/trend"), "")
		assert.JSONEq(t, `[{"period":"2025-W41","score":6.33,"count":3}]`, string(resp.Data))
	})
}

func TestExportWorkbook(t *testing.T) {
	avg := 6.0
	mock := &mocks.MockAnalytics{
		GetSummaryFunc: func(ctx context.Context, start, end time.Time) (domain.Metrics, error) {
			return domain.Metrics{GroupBy: domain.GroupByAll, Key: "all", TotalCalls: 1, ScoredCalls: 1, AverageScore: &avg}, nil
		},
		GetCampaignMetricsFunc: func(ctx context.Context, start, end time.Time) ([]domain.Metrics, error) {
			return []domain.Metrics{{GroupBy: domain.GroupByCampaign, Key: "camp-a", TotalCalls: 1, AverageScore: &avg}}, nil
		},
		GetAgentMetricsFunc: func(ctx context.Context, start, end time.Time) ([]domain.Metrics, error) {
			return []domain.Metrics{{GroupBy: domain.GroupByAgent, Key: "Ann", TotalCalls: 1, AverageScore: &avg}}, nil
		},
	}
	h := NewHandlers(mock, zap.NewNop()).Routes()

	t.Run("renders xlsx", func(t *testing.T) {
		rec, _ := serve(t, h, http.MethodGet, "/api/v1/reports/metrics.xlsx?start=2025-10-01&end=2025-10-31", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "call-metrics_2025-10-01_2025-10-31.xlsx")

		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()

		v, err := f.GetCellValue(report.SheetCampaigns, "A2")
		require.NoError(t, err)
		assert.Equal(t, "camp-a", v)
		v, err = f.GetCellValue(report.SheetAgents, "A2")
		require.NoError(t, err)
		assert.Equal(t, "Ann", v)
	})

	t.Run("one failing view fails the export", func(t *testing.T) {
		failing := *mock
		failing.GetAgentMetricsFunc = func(ctx context.Context, start, end time.Time) ([]domain.Metrics, error) {
			return nil, service.ErrNoCalls
		}
		h := NewHandlers(&failing, zap.NewNop()).Routes()

		rec, resp := serve(t, h, http.MethodGet, windowQuery("/api/v1/reports/metrics.xlsx"), "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "no_calls", resp.Error.Code)
	})
}

func TestCallEndpoints(t *testing.T) {
	created := time.Date(2025, 10, 2, 9, 0, 0, 0, time.UTC)
	v1 := domain.AnalysisRecord{Version: 1, CreatedAt: created, Analysis: domain.QualityAnalysis{CallID: "c1", OverallScore: 6, OverallRating: domain.RatingBad}}
	v2 := domain.AnalysisRecord{Version: 2, CreatedAt: created.Add(time.Hour), Analysis: domain.QualityAnalysis{CallID: "c1", OverallScore: 8, OverallRating: domain.RatingGood}}

	var gotID string
	mock := &mocks.MockAnalytics{
		GetCallAnalysisFunc: func(ctx context.Context, callID string) (domain.AnalysisRecord, error) {
			gotID = callID
			return v2, nil
		},
		GetAnalysisHistoryFunc: func(ctx context.Context, callID string) ([]domain.AnalysisRecord, error) {
			return []domain.AnalysisRecord{v1, v2}, nil
		},
		RescoreFunc: func(ctx context.Context, callID string) (domain.AnalysisRecord, error) {
			return domain.AnalysisRecord{Version: 3, Analysis: v2.Analysis}, nil
		},
	}
	inv := &mocks.MockInvalidator{}
	h := NewHandlers(mock, zap.NewNop(), WithCacheInvalidator(inv, "grpc:")).Routes()

	t.Run("latest analysis", func(t *testing.T) {
		rec, resp := serve(t, h, http.MethodGet, "/api/v1/calls/c1/analysis", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "c1", gotID)
		var got domain.AnalysisRecord
		require.NoError(t, json.Unmarshal(resp.Data, &got))
		assert.Equal(t, 2, got.Version)
		assert.Equal(t, domain.RatingGood, got.Analysis.OverallRating)
	})

	t.Run("history", func(t *testing.T) {
		_, resp := serve(t, h, http.MethodGet, "/api/v1/calls/c1/analyses", "")

		var got []domain.AnalysisRecord
		require.NoError(t, json.Unmarshal(resp.Data, &got))
		require.Len(t, got, 2)
		assert.Equal(t, 1, got[0].Version)
		assert.Equal(t, 2, got[1].Version)
	})

	t.Run("rescore invalidates reports", func(t *testing.T) {
		rec, resp := serve(t, h, http.MethodPost, "/api/v1/calls/c1/rescore", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var got domain.AnalysisRecord
		require.NoError(t, json.Unmarshal(resp.Data, &got))
		assert.Equal(t, 3, got.Version)
		assert.Equal(t, []string{"grpc:"}, inv.Prefixes)
	})

	t.Run("rescore is POST only", func(t *testing.T) {
		rec, resp := serve(t, h, http.MethodGet, "/api/v1/calls/c1/rescore", "")

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "method_not_allowed", resp.Error.Code)
	})
}

func TestSync(t *testing.T) {
	body := `{"start":"2025-10-01T00:00:00Z","end":"2025-10-31T00:00:00Z"}`

	t.Run("success invalidates cache", func(t *testing.T) {
		var gotFrom, gotTo time.Time
		mock := &mocks.MockAnalytics{
			SyncFunc: func(ctx context.Context, from, to time.Time) (service.SyncReport, error) {
				gotFrom, gotTo = from, to
				return service.SyncReport{RunID: "run-1", Fetched: 3, Normalized: 2, Invalid: 1, Scored: 1,
					NotScored: map[string]int{"not_applicable": 1}}, nil
			},
		}
		inv := &mocks.MockInvalidator{}
		h := NewHandlers(mock, zap.NewNop(), WithCacheInvalidator(inv, "grpc:")).Routes()

		rec, resp := serve(t, h, http.MethodPost, "/api/v1/sync", body)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, testStart, gotFrom)
		assert.Equal(t, testEnd, gotTo)
		var rep service.SyncReport
		require.NoError(t, json.Unmarshal(resp.Data, &rep))
		assert.Equal(t, "run-1", rep.RunID)
		assert.Equal(t, map[string]int{"not_applicable": 1}, rep.NotScored)
		assert.Equal(t, []string{"grpc:"}, inv.Prefixes)
	})

	t.Run("failed sync keeps cache", func(t *testing.T) {
		mock := &mocks.MockAnalytics{
			SyncFunc: func(ctx context.Context, from, to time.Time) (service.SyncReport, error) {
				return service.SyncReport{}, fmt.Errorf("%w: timeout", service.ErrSupplierFailure)
			},
		}
		inv := &mocks.MockInvalidator{}
		h := NewHandlers(mock, zap.NewNop(), WithCacheInvalidator(inv, "grpc:")).Routes()

		rec, _ := serve(t, h, http.MethodPost, "/api/v1/sync", body)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Empty(t, inv.Prefixes)
	})

	t.Run("invalidation failure does not fail the sync", func(t *testing.T) {
		mock := &mocks.MockAnalytics{
			SyncFunc: func(ctx context.Context, from, to time.Time) (service.SyncReport, error) {
				return service.SyncReport{RunID: "run-2"}, nil
			},
		}
		inv := &mocks.MockInvalidator{
			DeletePrefixFunc: func(ctx context.Context, prefix string) (int, error) {
				return 0, errors.New("redis down")
			},
		}
		h := NewHandlers(mock, zap.NewNop(), WithCacheInvalidator(inv, "grpc:")).Routes()

		rec, _ := serve(t, h, http.MethodPost, "/api/v1/sync", body)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	bad := []struct {
		name, body, wantMsg string
	}{
		{"empty body", "", "request body is empty"},
		{"unknown field", `{"start":"2025-10-01T00:00:00Z","end":"2025-10-31T00:00:00Z","force":true}`, `decode body: json: unknown field "force"`},
		{"end before start", `{"start":"2025-10-31T00:00:00Z","end":"2025-10-01T00:00:00Z"}`, "end must not be before start"},
		{"missing end", `{"start":"2025-10-01T00:00:00Z"}`, "end is required"},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandlers(&mocks.MockAnalytics{}, zap.NewNop()).Routes()

			rec, resp := serve(t, h, http.MethodPost, "/api/v1/sync", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantMsg, resp.Error.Message)
		})
	}
}

func TestObserverAndMetricsRoute(t *testing.T) {
	obs := &recordingObserver{}
	scrape := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# metrics\n"))
	})
	mock := &mocks.MockAnalytics{
		GetCallAnalysisFunc: func(ctx context.Context, callID string) (domain.AnalysisRecord, error) {
			return domain.AnalysisRecord{}, service.ErrCallNotFound
		},
	}
	h := NewHandlers(mock, zap.NewNop(), WithObserver(obs), WithMetricsHandler(scrape)).Routes()

	serve(t, h, http.MethodGet, "/api/v1/calls/abc/analysis", "")
	serve(t, h, http.MethodGet, "/api/v1/calls/xyz/analysis", "")
	rec, _ := serve(t, h, http.MethodGet, "/metrics", "")
	serve(t, h, http.MethodGet, "/nope", "")

	assert.Equal(t, "# metrics\n", rec.Body.String())
	assert.Equal(t, []observedRequest{
		{http.MethodGet, "/api/v1/calls/{id}/analysis", http.StatusNotFound},
		{http.MethodGet, "/api/v1/calls/{id}/analysis", http.StatusNotFound},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "unmatched", http.StatusNotFound},
	}, obs.seen)
}

func TestRecoverer(t *testing.T) {
	mock := &mocks.MockAnalytics{
		GetCallAnalysisFunc: func(ctx context.Context, callID string) (domain.AnalysisRecord, error) {
			panic("boom")
		},
	}
	h := NewHandlers(mock, zap.NewNop()).Routes()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/calls/c1/analysis", nil)
	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() { h.ServeHTTP(rec, req) })
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
