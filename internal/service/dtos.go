package service

import "time"

// SyncReport summarizes one Sync run. NotScored counts calls per scoring
// failure reason; they keep any earlier analysis.
type SyncReport struct {
	RunID                 string         `json:"runId"`
	From                  time.Time      `json:"from"`
	To                    time.Time      `json:"to"`
	Fetched               int            `json:"fetched"`
	Normalized            int            `json:"normalized"`
	Invalid               int            `json:"invalid"`
	Transcribed           int            `json:"transcribed"`
	TranscriptionFailures int            `json:"transcriptionFailures"`
	Scored                int            `json:"scored"`
	Unchanged             int            `json:"unchanged"`
	NotScored             map[string]int `json:"notScored"`
	Elapsed               time.Duration  `json:"elapsed"`
}

type PeriodScore struct {
	Period string  `json:"period"`
	Score  float64 `json:"score"`
	Count  int     `json:"count"`
}

type PeriodChange struct {
	CurrentPeriodScore  float64
	PreviousPeriodScore float64
	ChangePercentage    float64
}
