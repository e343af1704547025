// Package report renders metrics as an XLSX workbook.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/godilite/call-insights/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary   = "Summary"
	SheetCampaigns = "Campaigns"
	SheetAgents    = "Agents"
)

var metricsHeader = []any{
	"Key", "Name", "Total calls", "Completed", "Rejected", "Skipped", "Scored",
	"Average score", "Good", "Bad", "Ugly", "Audio minutes", "Conversions",
	"Conversion rate %", "Revenue", "Cost",
}

// Workbook is the content of one metrics export.
type Workbook struct {
	Start     time.Time
	End       time.Time
	Summary   domain.Metrics
	Campaigns []domain.Metrics
	Agents    []domain.Metrics
}

// Write renders the workbook as XLSX into w. Groups without a scored call get
// an empty average cell rather than zero.
func (wb Workbook) Write(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetCampaigns, SheetAgents} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	summary := [][]any{
		{"Window start", wb.Start.UTC().Format(time.RFC3339)},
		{"Window end", wb.End.UTC().Format(time.RFC3339)},
	}
	summary = append(summary, transpose(wb.Summary)...)
	for i, row := range summary {
		if err := f.SetSheetRow(SheetSummary, cell(1, i+1), &row); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	if err := f.SetColStyle(SheetSummary, "A", bold); err != nil {
		return fmt.Errorf("style summary: %w", err)
	}
	if err := f.SetColWidth(SheetSummary, "A", "A", 20); err != nil {
		return fmt.Errorf("size summary: %w", err)
	}

	for _, s := range []struct {
		name string
		rows []domain.Metrics
	}{
		{SheetCampaigns, wb.Campaigns},
		{SheetAgents, wb.Agents},
	} {
		if err := writeMetricsSheet(f, s.name, s.rows, bold); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeMetricsSheet(f *excelize.File, sheet string, rows []domain.Metrics, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &metricsHeader); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze %s header: %w", sheet, err)
	}
	for i, m := range rows {
		row := metricsRow(m)
		if err := f.SetSheetRow(sheet, cell(1, i+2), &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

func metricsRow(m domain.Metrics) []any {
	var avg any
	if m.AverageScore != nil {
		avg = *m.AverageScore
	}
	return []any{
		m.Key, m.Name, m.TotalCalls, m.CompletedCalls, m.RejectedCalls, m.SkippedCalls, m.ScoredCalls,
		avg, m.GoodCalls, m.BadCalls, m.UglyCalls, m.TotalAudioMinutes, m.Conversions,
		m.ConversionRate, m.Revenue.InexactFloat64(), m.Cost.InexactFloat64(),
	}
}

// transpose lays a single Metrics out as label/value pairs.
func transpose(m domain.Metrics) [][]any {
	values := metricsRow(m)[2:]
	out := make([][]any, len(values))
	for i, v := range values {
		out[i] = []any{metricsHeader[i+2], v}
	}
	return out
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
