package scoring

import "github.com/godilite/call-insights/internal/domain"

// ScoreStructural scores a call from duration, status and disposition only.
// It is an explicit opt-in for calls that cannot be transcribed; the
// speech-derived parts of the analysis stay nil.
func (s *Scorer) ScoreStructural(m domain.MergedCall) domain.QualityAnalysis {
	call := m.Call
	score := durationBand(call.DurationSeconds)

	switch call.Status {
	case domain.StatusRejected, domain.StatusMissed, domain.StatusFailed, domain.StatusSkipped:
		score = min(score, 3)
	}

	switch call.Disposition {
	case domain.DispositionConverted:
		score += 2
	case domain.DispositionCallback:
		score += 0.5
	case domain.DispositionVoicemail:
		score -= 1
	case domain.DispositionNoAnswer:
		score -= 2
	}

	overall := clampScore(score)
	return domain.QualityAnalysis{
		CallID:             call.ID,
		Kind:               domain.AnalysisStructural,
		ScorerVersion:      Version,
		OverallScore:       overall,
		OverallRating:      RatingFor(overall),
		BusinessConversion: dispositionConversion(call.Disposition),
	}
}

func durationBand(seconds int) float64 {
	switch {
	case seconds < 10:
		return 2
	case seconds < 30:
		return 3.5
	case seconds < 60:
		return 5
	case seconds < 180:
		return 6
	case seconds < 600:
		return 7
	}
	return 7.5
}
