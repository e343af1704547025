// Package pipeline merges calls with their transcripts and scores them across
// a bounded set of workers. Output order always matches input order.
package pipeline

import (
	"context"
	"errors"
	"runtime"

	"github.com/godilite/call-insights/internal/domain"
	"github.com/godilite/call-insights/internal/scoring"
	"github.com/godilite/call-insights/internal/transcript"
	"golang.org/x/sync/errgroup"
)

// Scorer is the part of *scoring.Scorer the pipeline needs.
type Scorer interface {
	Score(m domain.MergedCall) (domain.QualityAnalysis, error)
	ScoreStructural(m domain.MergedCall) domain.QualityAnalysis
}

// Outcome is the result for one call. Exactly one of Analysis and Err is set.
type Outcome struct {
	Merged   domain.MergedCall
	Analysis *domain.QualityAnalysis
	Err      error
}

type Pipeline struct {
	scorer     Scorer
	workers    int
	structural bool
}

type Option func(*Pipeline)

func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithStructuralFallback scores calls without a recording from duration and
// disposition instead of reporting them as not applicable.
func WithStructuralFallback(enabled bool) Option {
	return func(p *Pipeline) { p.structural = enabled }
}

func New(scorer Scorer, opts ...Option) *Pipeline {
	if scorer == nil {
		panic("scorer cannot be nil")
	}
	p := &Pipeline{scorer: scorer, workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run merges and scores every call. Scoring failures are reported per
// outcome; the returned error is only set when ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context, calls []domain.CallRecord, transcripts map[string]*domain.TranscriptBundle) ([]Outcome, error) {
	out := make([]Outcome, len(calls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := range calls {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = p.process(calls[i], transcripts[calls[i].ID])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Pipeline) process(call domain.CallRecord, bundle *domain.TranscriptBundle) Outcome {
	merged, err := transcript.Merge(call, bundle)
	if err != nil {
		return Outcome{Merged: merged, Err: err}
	}

	analysis, err := p.scorer.Score(merged)
	if err != nil {
		if p.structural && errors.Is(err, scoring.ErrNotApplicable) {
			a := p.scorer.ScoreStructural(merged)
			return Outcome{Merged: merged, Analysis: &a}
		}
		return Outcome{Merged: merged, Err: err}
	}
	return Outcome{Merged: merged, Analysis: &analysis}
}

// ScoredCalls pairs each outcome's call with its analysis, nil when scoring
// failed, in outcome order.
func ScoredCalls(outcomes []Outcome) []domain.ScoredCall {
	out := make([]domain.ScoredCall, len(outcomes))
	for i, o := range outcomes {
		out[i] = domain.ScoredCall{Call: o.Merged.Call, Analysis: o.Analysis}
	}
	return out
}
