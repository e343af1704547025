// Package aggregate rolls scored calls up into campaign and agent metrics.
// Results are projections; nothing here is persisted.
package aggregate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/godilite/call-insights/internal/domain"
	"github.com/shopspring/decimal"
)

var ErrUnknownGroupBy = errors.New("unknown group by")

// Dedupe keeps one entry per call id. The last occurrence wins but takes the
// position of the first, so overlapping pages collapse in place.
func Dedupe(items []domain.ScoredCall) []domain.ScoredCall {
	pos := make(map[string]int, len(items))
	out := make([]domain.ScoredCall, 0, len(items))
	for _, it := range items {
		if i, ok := pos[it.Call.ID]; ok {
			out[i] = it
			continue
		}
		pos[it.Call.ID] = len(out)
		out = append(out, it)
	}
	return out
}

// Aggregate deduplicates items by call id and computes one Metrics per group,
// sorted by group key. Inputs are not modified.
func Aggregate(items []domain.ScoredCall, groupBy domain.GroupBy) ([]domain.Metrics, error) {
	keyOf, err := keyFunc(groupBy)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*accumulator)
	for _, it := range Dedupe(items) {
		key := keyOf(it.Call)
		acc, ok := groups[key]
		if !ok {
			acc = newAccumulator(groupBy, key)
			groups[key] = acc
		}
		acc.add(it)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]domain.Metrics, 0, len(keys))
	for _, k := range keys {
		out = append(out, groups[k].metrics())
	}
	return out, nil
}

// Summarize computes a single Metrics over every call.
func Summarize(items []domain.ScoredCall) domain.Metrics {
	acc := newAccumulator(domain.GroupByAll, string(domain.GroupByAll))
	for _, it := range Dedupe(items) {
		acc.add(it)
	}
	return acc.metrics()
}

func keyFunc(groupBy domain.GroupBy) (func(domain.CallRecord) string, error) {
	switch groupBy {
	case domain.GroupByCampaign:
		return func(c domain.CallRecord) string { return c.CampaignID }, nil
	case domain.GroupByAgent:
		return func(c domain.CallRecord) string { return c.AgentName }, nil
	case domain.GroupByAll:
		return func(domain.CallRecord) string { return string(domain.GroupByAll) }, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownGroupBy, groupBy)
}

type accumulator struct {
	m        domain.Metrics
	scoreSum decimal.Decimal
	seconds  int
}

func newAccumulator(groupBy domain.GroupBy, key string) *accumulator {
	return &accumulator{
		m: domain.Metrics{
			GroupBy: groupBy,
			Key:     key,
			Name:    key,
			Revenue: decimal.Zero,
			Cost:    decimal.Zero,
		},
		scoreSum: decimal.Zero,
	}
}

func (a *accumulator) add(it domain.ScoredCall) {
	c := it.Call
	a.m.TotalCalls++
	switch c.Status {
	case domain.StatusConnected:
		a.m.CompletedCalls++
	case domain.StatusRejected:
		a.m.RejectedCalls++
	case domain.StatusSkipped:
		a.m.SkippedCalls++
	}

	if a.m.GroupBy == domain.GroupByCampaign && c.CampaignName != "" {
		a.m.Name = c.CampaignName
	}

	a.seconds += c.DurationSeconds
	a.m.Revenue = a.m.Revenue.Add(c.Revenue)
	a.m.Cost = a.m.Cost.Add(c.Cost)

	if converted(it) {
		a.m.Conversions++
	}

	if it.Analysis == nil {
		return
	}
	a.m.ScoredCalls++
	a.scoreSum = a.scoreSum.Add(decimal.NewFromFloat(it.Analysis.OverallScore))
	switch it.Analysis.OverallRating {
	case domain.RatingGood:
		a.m.GoodCalls++
	case domain.RatingBad:
		a.m.BadCalls++
	case domain.RatingUgly:
		a.m.UglyCalls++
	}
}

func (a *accumulator) metrics() domain.Metrics {
	m := a.m
	if m.ScoredCalls > 0 {
		avg := a.scoreSum.Div(decimal.NewFromInt(int64(m.ScoredCalls))).Round(2).InexactFloat64()
		m.AverageScore = &avg
	}
	m.TotalAudioMinutes = decimal.NewFromInt(int64(a.seconds)).Div(decimal.NewFromInt(60)).Round(2).InexactFloat64()
	if m.TotalCalls > 0 {
		m.ConversionRate = decimal.NewFromInt(int64(m.Conversions) * 100).
			Div(decimal.NewFromInt(int64(m.TotalCalls))).Round(2).InexactFloat64()
	}
	return m
}

// converted trusts the analysis verdict when there is one and falls back to
// the disposition for unscored calls.
func converted(it domain.ScoredCall) bool {
	if it.Analysis != nil {
		return it.Analysis.BusinessConversion.Converted
	}
	return it.Call.Disposition == domain.DispositionConverted
}
