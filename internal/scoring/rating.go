package scoring

import (
	"math"

	"github.com/godilite/call-insights/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	goodThreshold = 7.5
	badThreshold  = 5.1
)

// RatingFor maps an overall score onto GOOD, BAD or UGLY. The score is first
// rounded half away from zero to one decimal, so no value lands between 5.0
// and 5.1: 5.05 becomes 5.1 and rates BAD.
func RatingFor(score float64) domain.Rating {
	s := Round1(score)
	switch {
	case s >= goodThreshold:
		return domain.RatingGood
	case s >= badThreshold:
		return domain.RatingBad
	default:
		return domain.RatingUgly
	}
}

// Round1 rounds half away from zero to one decimal place.
func Round1(v float64) float64 {
	return roundTo(v, 1)
}

func roundTo(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func clampScore(v float64) float64 {
	return Round1(clamp(v, 0, 10))
}
