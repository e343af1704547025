package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/godilite/call-insights/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWorkbookWrite(t *testing.T) {
	avg := 6.25
	wb := Workbook{
		Start: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC),
		Summary: domain.Metrics{
			GroupBy: domain.GroupByAll, Key: "all", TotalCalls: 3, ScoredCalls: 2, AverageScore: &avg,
			Revenue: decimal.NewFromInt(20), Cost: decimal.Zero,
		},
		Campaigns: []domain.Metrics{
			{
				GroupBy: domain.GroupByCampaign, Key: "camp-a", Name: "Solar", TotalCalls: 3, ScoredCalls: 2,
				AverageScore: &avg, TotalAudioMinutes: 1.42, Revenue: decimal.NewFromInt(20), Cost: decimal.RequireFromString("1.5"),
			},
		},
		Agents: []domain.Metrics{
			{GroupBy: domain.GroupByAgent, Key: "Ann", TotalCalls: 1, Revenue: decimal.Zero, Cost: decimal.Zero},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	t.Run("sheets", func(t *testing.T) {
		assert.Equal(t, []string{SheetSummary, SheetCampaigns, SheetAgents}, f.GetSheetList())
	})

	t.Run("summary is label value pairs", func(t *testing.T) {
		rows, err := f.GetRows(SheetSummary)
		require.NoError(t, err)

		assert.Equal(t, []string{"Window start", "2025-10-01T00:00:00Z"}, rows[0])
		assert.Equal(t, []string{"Total calls", "3"}, rows[2])
		assert.Equal(t, []string{"Average score", "6.25"}, rows[7])
	})

	t.Run("campaign rows", func(t *testing.T) {
		rows, err := f.GetRows(SheetCampaigns)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		assert.Equal(t, "Key", rows[0][0])
		assert.Equal(t, "Conversion rate %", rows[0][13])
		assert.Equal(t, "camp-a", rows[1][0])
		assert.Equal(t, "Solar", rows[1][1])
		assert.Equal(t, "6.25", rows[1][7])
		assert.Equal(t, "1.42", rows[1][11])
		assert.Equal(t, "20", rows[1][14])
		assert.Equal(t, "1.5", rows[1][15])
	})

	t.Run("unscored group has an empty average", func(t *testing.T) {
		rows, err := f.GetRows(SheetAgents)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		assert.Equal(t, "Ann", rows[1][0])
		assert.Equal(t, "", rows[1][7])
	})
}

func TestWorkbookWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Workbook{}.Write(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetCampaigns)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
