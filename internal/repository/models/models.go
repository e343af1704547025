package models

// OverallScoreResult is the mean overall score of the latest analysis of
// every call in a window.
type OverallScoreResult struct {
	Score float64
	Count int64
}

// DailyScore holds the score sum and count of latest analyses for calls that
// started on Day (YYYY-MM-DD, UTC).
type DailyScore struct {
	Day      string
	ScoreSum float64
	Count    int
}
