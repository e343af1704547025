package aggregate

import (
	"testing"

	"github.com/godilite/call-insights/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(id, campaign, agent string, seconds int, status domain.CallStatus) domain.CallRecord {
	return domain.CallRecord{
		ID:              id,
		CampaignID:      campaign,
		AgentName:       agent,
		DurationSeconds: seconds,
		Status:          status,
		Disposition:     domain.DispositionUnknown,
		Revenue:         decimal.Zero,
		Cost:            decimal.Zero,
	}
}

func analysis(id string, score float64, rating domain.Rating, converted bool) *domain.QualityAnalysis {
	return &domain.QualityAnalysis{
		CallID:             id,
		OverallScore:       score,
		OverallRating:      rating,
		BusinessConversion: domain.BusinessConversion{Converted: converted},
	}
}

func TestAggregateOverlappingFetches(t *testing.T) {
	first := []domain.ScoredCall{
		{Call: call("c1", "camp", "Sam", 60, domain.StatusConnected), Analysis: analysis("c1", 6.0, domain.RatingBad, false)},
		{Call: call("c2", "camp", "Ana", 120, domain.StatusConnected)},
	}
	second := []domain.ScoredCall{
		{Call: call("c1", "camp", "Sam", 60, domain.StatusConnected), Analysis: analysis("c1", 8.0, domain.RatingGood, true)},
	}

	got, err := Aggregate(append(append([]domain.ScoredCall{}, first...), second...), domain.GroupByCampaign)

	require.NoError(t, err)
	require.Len(t, got, 1)
	m := got[0]
	assert.Equal(t, 2, m.TotalCalls)
	assert.Equal(t, 1, m.ScoredCalls)
	require.NotNil(t, m.AverageScore)
	assert.Equal(t, 8.0, *m.AverageScore, "last seen analysis wins")
	assert.Equal(t, 1, m.GoodCalls)
	assert.Equal(t, 1, m.Conversions)
	assert.Equal(t, 50.0, m.ConversionRate)
	assert.Equal(t, 3.0, m.TotalAudioMinutes)
}

func TestAggregateByAgent(t *testing.T) {
	items := []domain.ScoredCall{
		{Call: call("a", "x", "Sam", 30, domain.StatusConnected), Analysis: analysis("a", 7.5, domain.RatingGood, false)},
		{Call: call("b", "x", "Sam", 45, domain.StatusRejected), Analysis: analysis("b", 5.0, domain.RatingUgly, false)},
		{Call: call("c", "y", "Sam", 10, domain.StatusSkipped)},
		{Call: call("d", "y", "Ana", 20, domain.StatusConnected), Analysis: analysis("d", 6.3, domain.RatingBad, false)},
	}
	items[2].Call.Revenue = decimal.RequireFromString("12.50")
	items[2].Call.Cost = decimal.RequireFromString("1.25")
	items[1].Call.Revenue = decimal.RequireFromString("7.50")

	got, err := Aggregate(items, domain.GroupByAgent)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ana", got[0].Key)
	assert.Equal(t, "Sam", got[1].Key)

	sam := got[1]
	assert.Equal(t, domain.GroupByAgent, sam.GroupBy)
	assert.Equal(t, 3, sam.TotalCalls)
	assert.Equal(t, 1, sam.CompletedCalls)
	assert.Equal(t, 1, sam.RejectedCalls)
	assert.Equal(t, 1, sam.SkippedCalls)
	assert.Equal(t, 2, sam.ScoredCalls)
	assert.Equal(t, 6.25, *sam.AverageScore)
	assert.Equal(t, 1, sam.GoodCalls)
	assert.Equal(t, 1, sam.UglyCalls)
	assert.Equal(t, 1.42, sam.TotalAudioMinutes)
	assert.True(t, decimal.RequireFromString("20").Equal(sam.Revenue))
	assert.True(t, decimal.RequireFromString("1.25").Equal(sam.Cost))
}

func TestAggregateUnscoredGroup(t *testing.T) {
	c := call("u1", "camp", "Sam", 0, domain.StatusMissed)
	c.Disposition = domain.DispositionConverted

	got, err := Aggregate([]domain.ScoredCall{{Call: c}}, domain.GroupByCampaign)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].AverageScore, "no analyses means no average, not zero")
	assert.Equal(t, 0, got[0].ScoredCalls)
	assert.Equal(t, 1, got[0].Conversions, "disposition counts when unscored")
}

func TestAggregateCampaignName(t *testing.T) {
	a := call("a", "camp-1", "Sam", 10, domain.StatusConnected)
	b := call("b", "camp-1", "Sam", 10, domain.StatusConnected)
	b.CampaignName = "Solar Leads"

	got, err := Aggregate([]domain.ScoredCall{{Call: a}, {Call: b}}, domain.GroupByCampaign)

	require.NoError(t, err)
	assert.Equal(t, "camp-1", got[0].Key)
	assert.Equal(t, "Solar Leads", got[0].Name)
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	items := []domain.ScoredCall{
		{Call: call("c1", "camp", "Sam", 60, domain.StatusConnected), Analysis: analysis("c1", 6.0, domain.RatingBad, false)},
		{Call: call("c1", "camp", "Sam", 60, domain.StatusConnected), Analysis: analysis("c1", 8.0, domain.RatingGood, false)},
	}
	before := append([]domain.ScoredCall{}, items...)

	first, err := Aggregate(items, domain.GroupByCampaign)
	require.NoError(t, err)
	second, err := Aggregate(items, domain.GroupByCampaign)
	require.NoError(t, err)

	assert.Equal(t, before, items)
	assert.Equal(t, first, second)
	assert.NotSame(t, first[0].AverageScore, second[0].AverageScore)
}

func TestAggregateErrors(t *testing.T) {
	_, err := Aggregate(nil, domain.GroupBy("region"))
	assert.ErrorIs(t, err, ErrUnknownGroupBy)

	got, err := Aggregate(nil, domain.GroupByAgent)
	assert.NoError(t, err)
	assert.Empty(t, got)
}

func TestSummarize(t *testing.T) {
	items := []domain.ScoredCall{
		{Call: call("a", "x", "Sam", 90, domain.StatusConnected), Analysis: analysis("a", 9.0, domain.RatingGood, true)},
		{Call: call("b", "y", "Ana", 30, domain.StatusConnected), Analysis: analysis("b", 4.0, domain.RatingUgly, false)},
		{Call: call("b", "y", "Ana", 30, domain.StatusConnected), Analysis: analysis("b", 4.0, domain.RatingUgly, false)},
	}

	m := Summarize(items)

	assert.Equal(t, domain.GroupByAll, m.GroupBy)
	assert.Equal(t, "all", m.Key)
	assert.Equal(t, 2, m.TotalCalls)
	assert.Equal(t, 6.5, *m.AverageScore)
	assert.Equal(t, 2.0, m.TotalAudioMinutes)
	assert.Equal(t, 50.0, m.ConversionRate)
}

func TestDedupe(t *testing.T) {
	items := []domain.ScoredCall{
		{Call: domain.CallRecord{ID: "a", AgentName: "first"}},
		{Call: domain.CallRecord{ID: "b"}},
		{Call: domain.CallRecord{ID: "a", AgentName: "second"}},
	}

	got := Dedupe(items)

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Call.ID)
	assert.Equal(t, "second", got[0].Call.AgentName)
	assert.Equal(t, "b", got[1].Call.ID)
}
