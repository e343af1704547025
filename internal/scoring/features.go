package scoring

import (
	"strings"
	"unicode"

	"github.com/godilite/call-insights/internal/domain"
)

// features are the transcript measurements every sub-score is built from.
type features struct {
	tokens      []string
	agentTokens []string
	diarized    bool
	talkRatio   float64
	wpm         float64
	hasPacing   bool
	fillerRatio float64
	confidence  float64
}

func extractFeatures(t *domain.TranscriptBundle, agentSpeaker int) features {
	f := features{
		tokens:     tokenize(t.Text),
		confidence: t.Confidence,
	}
	f.agentTokens = f.tokens

	speakers := make(map[int]int)
	for _, w := range t.Words {
		if w.Speaker == domain.UnknownSpeaker {
			speakers = nil
			break
		}
		speakers[w.Speaker]++
	}
	if len(speakers) > 1 {
		f.diarized = true
		var agentText strings.Builder
		for _, w := range t.Words {
			if w.Speaker == agentSpeaker {
				agentText.WriteString(w.Text)
				agentText.WriteByte(' ')
			}
		}
		f.agentTokens = tokenize(agentText.String())
		f.talkRatio = float64(speakers[agentSpeaker]) / float64(len(t.Words))
	}

	if spoken := speakingSeconds(t); spoken > 0 && len(f.tokens) > 0 {
		f.wpm = float64(len(f.tokens)) / (spoken / 60)
		f.hasPacing = true
	}

	if len(f.agentTokens) > 0 {
		fillers := 0
		for _, tok := range f.agentTokens {
			if _, ok := fillerWords[tok]; ok {
				fillers++
			}
		}
		f.fillerRatio = float64(fillers) / float64(len(f.agentTokens))
	}

	return f
}

// speakingSeconds prefers word timings over the reported audio duration. The
// call duration is not used since it includes ringing and hold time.
func speakingSeconds(t *domain.TranscriptBundle) float64 {
	if n := len(t.Words); n > 0 {
		if span := t.Words[n-1].End - t.Words[0].Start; span > 0 {
			return span
		}
	}
	return t.Duration
}

func tokenize(s string) []string {
	s = strings.ToLower(strings.ReplaceAll(s, "’", "'"))
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	out := fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, "'"); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// countPhrases counts whole-token occurrences of each phrase and returns the
// phrases that matched at least once.
func countPhrases(tokens []string, phrases []string) (int, []string) {
	total := 0
	var matched []string
	for _, p := range phrases {
		n := countPhrase(tokens, tokenize(p))
		if n > 0 {
			total += n
			matched = append(matched, p)
		}
	}
	return total, matched
}

func countPhrase(tokens, phrase []string) int {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return 0
	}
	n := 0
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		match := true
		for j, p := range phrase {
			if tokens[i+j] != p {
				match = false
				break
			}
		}
		if match {
			n++
		}
	}
	return n
}

func hits(tokens []string, phrases []string) int {
	n, _ := countPhrases(tokens, phrases)
	return n
}
