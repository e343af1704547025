// Package httpapi serves the analytics reports, call analyses and sync
// trigger over REST.
package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/godilite/call-insights/internal/domain"
	"github.com/godilite/call-insights/internal/report"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultRequestTimeout = 10 * time.Second
	syncTimeout           = 10 * time.Minute

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Handlers struct {
	analytics   Analytics
	invalidator CacheInvalidator
	prefix      string
	logger      *zap.Logger
	metrics     http.Handler
	observer    Observer
}

type Option func(*Handlers)

// WithCacheInvalidator drops every cached key under prefix after a
// successful sync.
func WithCacheInvalidator(c CacheInvalidator, prefix string) Option {
	return func(h *Handlers) {
		h.invalidator = c
		h.prefix = prefix
	}
}

// WithMetricsHandler mounts a scrape endpoint at /metrics.
func WithMetricsHandler(mh http.Handler) Option {
	return func(h *Handlers) { h.metrics = mh }
}

func WithObserver(obs Observer) Option {
	return func(h *Handlers) { h.observer = obs }
}

func NewHandlers(analytics Analytics, logger *zap.Logger, opts ...Option) *Handlers {
	if analytics == nil {
		panic("nil Analytics provided to NewHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handlers{analytics: analytics, logger: logger.Named("http-handler")}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes builds the chi router with the middleware stack applied.
func (h *Handlers) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer, requestID, accessLog(h.logger, h.observer))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondOK(w, r, map[string]string{"status": "ok"})
	})
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/metrics/campaigns", h.metricsBy(domain.GroupByCampaign))
		r.Get("/metrics/agents", h.metricsBy(domain.GroupByAgent))
		r.Get("/metrics/summary", h.summary)
		r.Get("/scores/overall", h.overallScore)
		r.Get("/scores/change", h.periodChange)
		r.Get("/scores/trend", h.scoreTrend)
		r.Get("/reports/metrics.xlsx", h.exportWorkbook)

		r.Route("/calls/{id}", func(r chi.Router) {
			r.Get("/analysis", h.callAnalysis)
			r.Get("/analyses", h.analysisHistory)
			r.Post("/rescore", h.rescore)
		})

		r.Post("/sync", h.sync)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, "route_not_found", "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	return r
}

func (h *Handlers) windowFromQuery(w http.ResponseWriter, r *http.Request) (window, bool) {
	win, err := bindWindowQuery(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return window{}, false
	}
	return win, true
}

func (h *Handlers) metricsBy(groupBy domain.GroupBy) http.HandlerFunc {
	op := string(groupBy) + "_metrics"
	return func(w http.ResponseWriter, r *http.Request) {
		win, ok := h.windowFromQuery(w, r)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
		defer cancel()

		var (
			rows []domain.Metrics
			err  error
		)
		if groupBy == domain.GroupByAgent {
			rows, err = h.analytics.GetAgentMetrics(ctx, win.Start, win.End)
		} else {
			rows, err = h.analytics.GetCampaignMetrics(ctx, win.Start, win.End)
		}
		if err != nil {
			h.handleError(w, r, op, err)
			return
		}
		respondOK(w, r, rows)
	}
}

func (h *Handlers) summary(w http.ResponseWriter, r *http.Request) {
	win, ok := h.windowFromQuery(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	m, err := h.analytics.GetSummary(ctx, win.Start, win.End)
	if err != nil {
		h.handleError(w, r, "summary", err)
		return
	}
	respondOK(w, r, m)
}

func (h *Handlers) overallScore(w http.ResponseWriter, r *http.Request) {
	win, ok := h.windowFromQuery(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	score, err := h.analytics.GetOverallScore(ctx, win.Start, win.End)
	if err != nil {
		h.handleError(w, r, "overall_score", err)
		return
	}
	respondOK(w, r, map[string]float64{"score": score})
}

func (h *Handlers) periodChange(w http.ResponseWriter, r *http.Request) {
	win, ok := h.windowFromQuery(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	change, err := h.analytics.GetPeriodOverPeriodScoreChange(ctx, win.Start, win.End)
	if err != nil {
		h.handleError(w, r, "period_change", err)
		return
	}
	respondOK(w, r, map[string]float64{
		"currentPeriodScore":  change.CurrentPeriodScore,
		"previousPeriodScore": change.PreviousPeriodScore,
		"changePercentage":    change.ChangePercentage,
	})
}

func (h *Handlers) scoreTrend(w http.ResponseWriter, r *http.Request) {
	win, ok := h.windowFromQuery(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	trend, err := h.analytics.GetScoreTrend(ctx, win.Start, win.End)
	if err != nil {
		h.handleError(w, r, "score_trend", err)
		return
	}
	respondOK(w, r, trend)
}

// exportWorkbook fetches the three metrics views concurrently and renders
// them as one XLSX download.
func (h *Handlers) exportWorkbook(w http.ResponseWriter, r *http.Request) {
	win, ok := h.windowFromQuery(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	wb := report.Workbook{Start: win.Start, End: win.End}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		wb.Summary, err = h.analytics.GetSummary(gctx, win.Start, win.End)
		return err
	})
	g.Go(func() (err error) {
		wb.Campaigns, err = h.analytics.GetCampaignMetrics(gctx, win.Start, win.End)
		return err
	})
	g.Go(func() (err error) {
		wb.Agents, err = h.analytics.GetAgentMetrics(gctx, win.Start, win.End)
		return err
	})
	if err := g.Wait(); err != nil {
		h.handleError(w, r, "export_metrics", err)
		return
	}

	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		h.handleError(w, r, "export_metrics", err)
		return
	}

	name := fmt.Sprintf("call-metrics_%s_%s.xlsx", win.Start.Format(time.DateOnly), win.End.Format(time.DateOnly))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handlers) callAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	rec, err := h.analytics.GetCallAnalysis(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, "call_analysis", err)
		return
	}
	respondOK(w, r, rec)
}

func (h *Handlers) analysisHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	history, err := h.analytics.GetAnalysisHistory(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, "analysis_history", err)
		return
	}
	respondOK(w, r, history)
}

func (h *Handlers) rescore(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	rec, err := h.analytics.Rescore(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, "rescore", err)
		return
	}
	h.invalidate(ctx)
	respondOK(w, r, rec)
}

func (h *Handlers) sync(w http.ResponseWriter, r *http.Request) {
	win, err := bindWindowBody(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), syncTimeout)
	defer cancel()

	rep, err := h.analytics.Sync(ctx, win.Start, win.End)
	if err != nil {
		h.handleError(w, r, "sync", err)
		return
	}
	h.invalidate(ctx)
	respondOK(w, r, rep)
}

// invalidate is best effort. A failure leaves stale reports until their TTL.
func (h *Handlers) invalidate(ctx context.Context) {
	if h.invalidator == nil {
		return
	}
	n, err := h.invalidator.DeletePrefix(ctx, h.prefix)
	if err != nil {
		h.logger.Warn("cache invalidation failed", zap.String("prefix", h.prefix), zap.Error(err))
		return
	}
	h.logger.Debug("cache invalidated", zap.String("prefix", h.prefix), zap.Int("keys", n))
}
