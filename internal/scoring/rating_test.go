package scoring

import (
	"testing"

	"github.com/godilite/call-insights/internal/domain"
	"github.com/stretchr/testify/assert"
)

// TestRatingFor tests rating thresholds, including the 5.0/5.1 boundary
func TestRatingFor(t *testing.T) {
	cases := []struct {
		score float64
		want  domain.Rating
	}{
		{10, domain.RatingGood},
		{7.5, domain.RatingGood},
		{7.45, domain.RatingGood},
		{7.449, domain.RatingBad},
		{7.4, domain.RatingBad},
		{5.1, domain.RatingBad},
		{5.05, domain.RatingBad},
		{5.049, domain.RatingUgly},
		{5.0, domain.RatingUgly},
		{0, domain.RatingUgly},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, RatingFor(tc.score), "score %v", tc.score)
	}
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 5.1, Round1(5.05))
	assert.Equal(t, 8.3, Round1(8.25))
	assert.Equal(t, -2.5, Round1(-2.45))
	assert.Equal(t, 7.0, Round1(6.96))
	assert.Equal(t, 0.0, Round1(0.04))
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 10.0, clampScore(14.2))
	assert.Equal(t, 0.0, clampScore(-3))
	assert.Equal(t, 4.6, clampScore(4.55))
}
