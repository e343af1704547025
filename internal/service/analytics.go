package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/godilite/call-insights/internal/aggregate"
	"github.com/godilite/call-insights/internal/domain"
	"github.com/godilite/call-insights/internal/normalize"
	"github.com/godilite/call-insights/internal/pipeline"
	"github.com/godilite/call-insights/internal/repository"
	"github.com/godilite/call-insights/internal/scoring"
	"github.com/godilite/call-insights/internal/supplier"
	"github.com/godilite/call-insights/internal/transcript"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	dbTimeout                 = 5 * time.Second
	defaultSupplierTimeout    = 30 * time.Second
	defaultTranscribeTimeout  = 2 * time.Minute
	defaultTranscribeParallel = 4
)

var (
	ErrNoCalls               = errors.New("no calls found")
	ErrNoScores              = errors.New("no scored calls found")
	ErrCallNotFound          = errors.New("call not found")
	ErrNotScored             = errors.New("call has not been scored")
	ErrStorageFailure        = errors.New("storage failure")
	ErrSupplierFailure       = errors.New("supplier failure")
	ErrSupplierNotConfigured = errors.New("supplier not configured")
	ErrInvalidWindow         = errors.New("invalid time window")
)

// AnalyticsService syncs calls from the suppliers, scores them and serves
// the reporting queries.
type AnalyticsService struct {
	storage     CallStore
	logger      *zap.Logger
	calls       supplier.CallSupplier
	transcriber supplier.TranscriptionSupplier
	normalizer  *normalize.Normalizer
	scorer      pipeline.Scorer
	telemetry   Telemetry
	now         func() time.Time

	workers            int
	structural         bool
	supplierTimeout    time.Duration
	transcribeTimeout  time.Duration
	transcribeParallel int

	pipeline *pipeline.Pipeline
}

type Option func(*AnalyticsService)

func WithCallSupplier(c supplier.CallSupplier) Option {
	return func(s *AnalyticsService) { s.calls = c }
}

func WithTranscriptionSupplier(t supplier.TranscriptionSupplier) Option {
	return func(s *AnalyticsService) { s.transcriber = t }
}

func WithNormalizer(n *normalize.Normalizer) Option {
	return func(s *AnalyticsService) { s.normalizer = n }
}

func WithScorer(sc pipeline.Scorer) Option {
	return func(s *AnalyticsService) { s.scorer = sc }
}

func WithTelemetry(t Telemetry) Option {
	return func(s *AnalyticsService) { s.telemetry = t }
}

func WithClock(now func() time.Time) Option {
	return func(s *AnalyticsService) { s.now = now }
}

func WithWorkers(n int) Option {
	return func(s *AnalyticsService) { s.workers = n }
}

// WithStructuralFallback scores calls without a recording from duration and
// disposition.
func WithStructuralFallback(enabled bool) Option {
	return func(s *AnalyticsService) { s.structural = enabled }
}

func WithSupplierTimeout(d time.Duration) Option {
	return func(s *AnalyticsService) {
		if d > 0 {
			s.supplierTimeout = d
		}
	}
}

func WithTranscription(timeout time.Duration, parallel int) Option {
	return func(s *AnalyticsService) {
		if timeout > 0 {
			s.transcribeTimeout = timeout
		}
		if parallel > 0 {
			s.transcribeParallel = parallel
		}
	}
}

// NewAnalyticsService creates a new AnalyticsService instance.
func NewAnalyticsService(storage CallStore, logger *zap.Logger, opts ...Option) *AnalyticsService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	s := &AnalyticsService{
		storage:            storage,
		logger:             logger,
		now:                time.Now,
		supplierTimeout:    defaultSupplierTimeout,
		transcribeTimeout:  defaultTranscribeTimeout,
		transcribeParallel: defaultTranscribeParallel,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.normalizer == nil {
		s.normalizer = normalize.NewNormalizer(normalize.WithClock(s.now))
	}
	if s.scorer == nil {
		s.scorer = scoring.New()
	}
	if s.telemetry == nil {
		s.telemetry = nopTelemetry{}
	}
	s.pipeline = pipeline.New(s.scorer,
		pipeline.WithWorkers(s.workers),
		pipeline.WithStructuralFallback(s.structural))
	return s
}

func validateWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return fmt.Errorf("%w: %s - %s", ErrInvalidWindow, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return nil
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStorageFailure, err)
}

// Sync fetches calls for [from, to], normalizes and stores them, transcribes
// recordings that have no stored transcript and scores every call. A new
// analysis version is written only when the result differs from the latest.
func (s *AnalyticsService) Sync(ctx context.Context, from, to time.Time) (SyncReport, error) {
	report := SyncReport{RunID: uuid.NewString(), From: from, To: to, NotScored: map[string]int{}}
	started := s.now()
	log := s.logger.With(zap.String("run_id", report.RunID))

	err := s.sync(ctx, &report, log)
	report.Elapsed = s.now().Sub(started)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		log.Error("sync failed", zap.Error(err))
	} else {
		log.Info("sync finished",
			zap.Int("fetched", report.Fetched),
			zap.Int("invalid", report.Invalid),
			zap.Int("transcribed", report.Transcribed),
			zap.Int("scored", report.Scored),
			zap.Int("unchanged", report.Unchanged),
			zap.Duration("elapsed", report.Elapsed))
	}
	s.telemetry.SyncFinished(outcome, report.Elapsed)
	return report, err
}

func (s *AnalyticsService) sync(ctx context.Context, report *SyncReport, log *zap.Logger) error {
	if s.calls == nil {
		return ErrSupplierNotConfigured
	}
	if err := validateWindow(report.From, report.To); err != nil {
		return err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.supplierTimeout)
	raw, err := s.calls.FetchCalls(fetchCtx, report.From, report.To)
	cancel()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSupplierFailure, err)
	}
	report.Fetched = len(raw)

	batch := s.normalizer.Normalize(raw)
	report.Normalized = batch.Stats.Valid
	report.Invalid = batch.Stats.Invalid
	s.telemetry.CallsNormalized(batch.Stats.Valid, batch.Stats.Invalid)
	for _, inv := range batch.Stats.InvalidRecords {
		log.Debug("dropped invalid record", zap.Int("index", inv.Index), zap.Error(inv.Err))
	}

	calls := dedupeCalls(batch.Records)
	if len(calls) == 0 {
		return nil
	}

	if err := s.withDB(ctx, func(ctx context.Context) error {
		return s.storage.UpsertCalls(ctx, calls)
	}); err != nil {
		return err
	}

	ids := make([]string, len(calls))
	var recorded []string
	for i, c := range calls {
		ids[i] = c.ID
		if c.HasRecording {
			recorded = append(recorded, c.ID)
		}
	}

	var transcripts map[string]*domain.TranscriptBundle
	if err := s.withDB(ctx, func(ctx context.Context) (err error) {
		transcripts, err = s.storage.GetTranscripts(ctx, recorded)
		return err
	}); err != nil {
		return err
	}

	if transcripts == nil {
		transcripts = make(map[string]*domain.TranscriptBundle)
	}

	fresh, err := s.transcribeMissing(ctx, calls, transcripts, report, log)
	if err != nil {
		return err
	}
	for _, t := range fresh {
		if err := s.withDB(ctx, func(ctx context.Context) error {
			return s.storage.SaveTranscript(ctx, t)
		}); err != nil {
			return err
		}
		transcripts[t.CallID] = t
	}

	outcomes, err := s.pipeline.Run(ctx, calls, transcripts)
	if err != nil {
		return err
	}

	var latest map[string]domain.AnalysisRecord
	if err := s.withDB(ctx, func(ctx context.Context) (err error) {
		latest, err = s.storage.LatestAnalyses(ctx, ids)
		return err
	}); err != nil {
		return err
	}

	for _, o := range outcomes {
		if o.Err != nil {
			reason := reasonOf(o.Err)
			report.NotScored[reason]++
			s.telemetry.ScoringSkipped(reason)
			continue
		}
		if prev, ok := latest[o.Analysis.CallID]; ok && sameAnalysis(prev.Analysis, *o.Analysis) {
			report.Unchanged++
			continue
		}
		if err := s.withDB(ctx, func(ctx context.Context) error {
			_, err := s.storage.AppendAnalysis(ctx, *o.Analysis)
			return err
		}); err != nil {
			return err
		}
		report.Scored++
		s.telemetry.CallScored(o.Analysis.Kind, o.Analysis.OverallRating)
	}
	return nil
}

// withDB runs one storage step under its own timeout and tags failures as
// storage failures.
func (s *AnalyticsService) withDB(ctx context.Context, fn func(ctx context.Context) error) error {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()
	if err := fn(dbCtx); err != nil {
		return storageErr(err)
	}
	return nil
}

// transcribeMissing transcribes recorded calls that have no stored transcript.
// A failed transcription leaves the call pending and is not an error.
func (s *AnalyticsService) transcribeMissing(ctx context.Context, calls []domain.CallRecord, have map[string]*domain.TranscriptBundle, report *SyncReport, log *zap.Logger) ([]*domain.TranscriptBundle, error) {
	var todo []domain.CallRecord
	for _, c := range calls {
		if c.HasRecording && have[c.ID] == nil {
			todo = append(todo, c)
		}
	}
	if len(todo) == 0 || s.transcriber == nil {
		return nil, nil
	}

	results := make([]*domain.TranscriptBundle, len(todo))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.transcribeParallel)
	for i, c := range todo {
		g.Go(func() error {
			tctx, cancel := context.WithTimeout(gctx, s.transcribeTimeout)
			defer cancel()
			t, err := s.transcriber.Transcribe(tctx, c.ID, c.RecordingURL)
			if err != nil {
				log.Warn("transcription failed, call stays pending",
					zap.String("call_id", c.ID), zap.Error(err))
				return nil
			}
			results[i] = t
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]*domain.TranscriptBundle, 0, len(results))
	for i, t := range results {
		if t == nil {
			report.TranscriptionFailures++
			continue
		}
		bundle := *t
		bundle.CallID = todo[i].ID
		out = append(out, &bundle)
	}
	report.Transcribed = len(out)
	return out, nil
}

// dedupeCalls keeps the last record per id at the position of the first.
func dedupeCalls(calls []domain.CallRecord) []domain.CallRecord {
	scored := make([]domain.ScoredCall, len(calls))
	for i, c := range calls {
		scored[i] = domain.ScoredCall{Call: c}
	}
	unique := aggregate.Dedupe(scored)
	out := make([]domain.CallRecord, len(unique))
	for i, sc := range unique {
		out[i] = sc.Call
	}
	return out
}

func sameAnalysis(a, b domain.QualityAnalysis) bool {
	x, err1 := json.Marshal(a)
	y, err2 := json.Marshal(b)
	return err1 == nil && err2 == nil && bytes.Equal(x, y)
}

func reasonOf(err error) string {
	var se *scoring.ScoringError
	if errors.As(err, &se) {
		return se.Reason()
	}
	if errors.Is(err, transcript.ErrTranscriptMismatch) {
		return "merge_error"
	}
	return "other"
}

// Rescore scores a stored call again and always appends a new version.
func (s *AnalyticsService) Rescore(ctx context.Context, callID string) (domain.AnalysisRecord, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	call, err := s.storage.GetCall(dbCtx, callID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.AnalysisRecord{}, ErrCallNotFound
		}
		return domain.AnalysisRecord{}, storageErr(err)
	}

	var transcripts map[string]*domain.TranscriptBundle
	if call.HasRecording {
		t, err := s.storage.GetTranscript(dbCtx, callID)
		switch {
		case err == nil:
			transcripts = map[string]*domain.TranscriptBundle{callID: t}
		case !errors.Is(err, repository.ErrNotFound):
			return domain.AnalysisRecord{}, storageErr(err)
		}
	}

	outcomes, err := s.pipeline.Run(ctx, []domain.CallRecord{call}, transcripts)
	if err != nil {
		return domain.AnalysisRecord{}, err
	}
	if o := outcomes[0]; o.Err != nil {
		s.telemetry.ScoringSkipped(reasonOf(o.Err))
		return domain.AnalysisRecord{}, o.Err
	}

	rec, err := s.storage.AppendAnalysis(dbCtx, *outcomes[0].Analysis)
	if err != nil {
		return domain.AnalysisRecord{}, storageErr(err)
	}
	s.telemetry.CallScored(rec.Analysis.Kind, rec.Analysis.OverallRating)
	s.logger.Info("call rescored",
		zap.String("call_id", callID),
		zap.Int("version", rec.Version),
		zap.Float64("score", rec.Analysis.OverallScore))
	return rec, nil
}

// notScoredOrMissing tells an unknown call apart from one without analyses.
func (s *AnalyticsService) notScoredOrMissing(ctx context.Context, callID string) error {
	if _, err := s.storage.GetCall(ctx, callID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCallNotFound
		}
		return storageErr(err)
	}
	return ErrNotScored
}

// GetCallAnalysis returns the latest analysis version of a call.
func (s *AnalyticsService) GetCallAnalysis(ctx context.Context, callID string) (domain.AnalysisRecord, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rec, err := s.storage.GetLatestAnalysis(dbCtx, callID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.AnalysisRecord{}, s.notScoredOrMissing(dbCtx, callID)
		}
		return domain.AnalysisRecord{}, storageErr(err)
	}
	return rec, nil
}

// GetAnalysisHistory returns every analysis version of a call, oldest first.
func (s *AnalyticsService) GetAnalysisHistory(ctx context.Context, callID string) ([]domain.AnalysisRecord, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	history, err := s.storage.GetAnalysisHistory(dbCtx, callID)
	if err != nil {
		return nil, storageErr(err)
	}
	if len(history) == 0 {
		return nil, s.notScoredOrMissing(dbCtx, callID)
	}
	return history, nil
}

func (s *AnalyticsService) scoredCalls(ctx context.Context, start, end time.Time) ([]domain.ScoredCall, error) {
	if err := validateWindow(start, end); err != nil {
		return nil, err
	}
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	items, err := s.storage.ListScoredCalls(dbCtx, start, end)
	if err != nil {
		return nil, storageErr(err)
	}
	if len(items) == 0 {
		return nil, ErrNoCalls
	}
	return items, nil
}

func (s *AnalyticsService) metrics(ctx context.Context, start, end time.Time, groupBy domain.GroupBy) ([]domain.Metrics, error) {
	items, err := s.scoredCalls(ctx, start, end)
	if err != nil {
		return nil, err
	}
	out, err := aggregate.Aggregate(items, groupBy)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("aggregated metrics",
		zap.String("group_by", string(groupBy)),
		zap.Int("calls", len(items)),
		zap.Int("groups", len(out)))
	return out, nil
}

// GetCampaignMetrics aggregates the window per campaign.
func (s *AnalyticsService) GetCampaignMetrics(ctx context.Context, start, end time.Time) ([]domain.Metrics, error) {
	return s.metrics(ctx, start, end, domain.GroupByCampaign)
}

// GetAgentMetrics aggregates the window per agent.
func (s *AnalyticsService) GetAgentMetrics(ctx context.Context, start, end time.Time) ([]domain.Metrics, error) {
	return s.metrics(ctx, start, end, domain.GroupByAgent)
}

// GetSummary aggregates the whole window into one Metrics.
func (s *AnalyticsService) GetSummary(ctx context.Context, start, end time.Time) (domain.Metrics, error) {
	items, err := s.scoredCalls(ctx, start, end)
	if err != nil {
		return domain.Metrics{}, err
	}
	return aggregate.Summarize(items), nil
}

// GetOverallScore returns the mean latest score for the requested window.
func (s *AnalyticsService) GetOverallScore(ctx context.Context, start, end time.Time) (float64, error) {
	if err := validateWindow(start, end); err != nil {
		return 0, err
	}
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	result, err := s.storage.GetOverallScore(dbCtx, start, end)
	if err != nil {
		return 0, storageErr(err)
	}
	if result.Count == 0 {
		return 0, ErrNoScores
	}

	score := round2(result.Score)
	s.logger.Info("fetched overall score",
		zap.Float64("score", score),
		zap.Int64("count", result.Count),
		zap.Time("start", start),
		zap.Time("end", end))
	return score, nil
}

// GetPeriodOverPeriodScoreChange compares the window with the window of equal
// length that ends just before it. With no previous scores the change is 100%.
func (s *AnalyticsService) GetPeriodOverPeriodScoreChange(ctx context.Context, start, end time.Time) (PeriodChange, error) {
	currentScore, err := s.GetOverallScore(ctx, start, end)
	if err != nil {
		return PeriodChange{}, fmt.Errorf("current score: %w", err)
	}

	duration := end.Sub(start)
	prevEnd := start.Add(-time.Nanosecond)
	prevStart := prevEnd.Add(-duration + time.Nanosecond)

	previousScore, err := s.GetOverallScore(ctx, prevStart, prevEnd)
	if err != nil {
		if errors.Is(err, ErrNoScores) {
			return PeriodChange{
				CurrentPeriodScore:  currentScore,
				PreviousPeriodScore: 0,
				ChangePercentage:    100.0,
			}, nil
		}
		return PeriodChange{}, fmt.Errorf("previous score: %w", err)
	}

	var change float64
	if previousScore > 0 {
		change = round2((currentScore - previousScore) / previousScore * 100.0)
	} else if currentScore > 0 {
		change = 100.0
	}

	return PeriodChange{
		CurrentPeriodScore:  currentScore,
		PreviousPeriodScore: previousScore,
		ChangePercentage:    change,
	}, nil
}

func isAtLeastOneMonth(start, end time.Time) bool {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return !s.AddDate(0, 1, 0).After(e)
}

// isWeeklyAggregation switches the trend to ISO weeks for windows of four
// weeks or a calendar month and longer.
func isWeeklyAggregation(start, end time.Time) bool {
	return isAtLeastOneMonth(start, end) || end.Sub(start) >= 28*24*time.Hour
}

// GetScoreTrend returns mean scores per day, or per ISO week for long windows.
func (s *AnalyticsService) GetScoreTrend(ctx context.Context, start, end time.Time) ([]PeriodScore, error) {
	if err := validateWindow(start, end); err != nil {
		return nil, err
	}
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	days, err := s.storage.GetDailyScores(dbCtx, start, end)
	if err != nil {
		return nil, storageErr(err)
	}
	if len(days) == 0 {
		return nil, ErrNoScores
	}

	weekly := isWeeklyAggregation(start, end)
	var out []PeriodScore
	sums := map[string]float64{}
	for _, d := range days {
		period := d.Day
		if weekly {
			day, err := time.Parse("2006-01-02", d.Day)
			if err != nil {
				return nil, storageErr(err)
			}
			y, w := day.ISOWeek()
			period = fmt.Sprintf("%04d-W%02d", y, w)
		}
		if n := len(out); n == 0 || out[n-1].Period != period {
			out = append(out, PeriodScore{Period: period})
		}
		out[len(out)-1].Count += d.Count
		sums[period] += d.ScoreSum
	}
	for i := range out {
		out[i].Score = round2(sums[out[i].Period] / float64(out[i].Count))
	}
	return out, nil
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
