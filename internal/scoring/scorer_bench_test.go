package scoring

import (
	"strings"
	"testing"
)

func BenchmarkScore(b *testing.B) {
	s := New()
	m := completedCall(strings.Repeat("Thank you for calling, I understand, let me check your plan coverage. ", 40))

	b.ReportAllocs()

	for b.Loop() {
		_, _ = s.Score(m)
	}
}
