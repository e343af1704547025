package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/godilite/call-insights/internal/domain"
)

const (
	sentimentThreshold = 0.2

	sourceSupplier = "supplier"
	sourceLexicon  = "lexicon"
)

// sentimentTimeline returns supplier segments when present and falls back to
// a lexicon pass over paragraphs, or over the raw text when undiarized.
func sentimentTimeline(t *domain.TranscriptBundle) ([]domain.SentimentSegment, string) {
	if len(t.Sentiments) > 0 {
		out := make([]domain.SentimentSegment, len(t.Sentiments))
		for i, s := range t.Sentiments {
			s.Score = clamp(s.Score, -1, 1)
			if s.Sentiment == "" {
				s.Sentiment = labelFor(s.Score)
			}
			out[i] = s
		}
		return out, sourceSupplier
	}

	var out []domain.SentimentSegment
	if len(t.Paragraphs) > 0 {
		for _, p := range t.Paragraphs {
			for _, s := range p.Sentences {
				if seg, ok := lexiconSegment(s.Text, s.Start, s.End, p.Speaker); ok {
					out = append(out, seg)
				}
			}
		}
		return out, sourceLexicon
	}

	for _, sentence := range splitSentences(t.Text) {
		if seg, ok := lexiconSegment(sentence, 0, 0, domain.UnknownSpeaker); ok {
			out = append(out, seg)
		}
	}
	return out, sourceLexicon
}

func lexiconSegment(text string, start, end float64, speaker int) (domain.SentimentSegment, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.SentimentSegment{}, false
	}
	score := roundTo(lexiconScore(tokenize(text)), 3)
	return domain.SentimentSegment{
		Text:      text,
		Start:     start,
		End:       end,
		Sentiment: labelFor(score),
		Score:     score,
		Speaker:   speaker,
	}, true
}

// lexiconScore is the polarity balance of a sentence, damped for sentences
// with a single sentiment word. A negator directly before a word flips it.
func lexiconScore(tokens []string) float64 {
	pos, neg := 0, 0
	for i, tok := range tokens {
		_, isPos := positiveWords[tok]
		_, isNeg := negativeWords[tok]
		if !isPos && !isNeg {
			continue
		}
		if i > 0 {
			if _, negated := negators[tokens[i-1]]; negated {
				isPos, isNeg = isNeg, isPos
			}
		}
		if isPos {
			pos++
		} else {
			neg++
		}
	}
	total := pos + neg
	if total == 0 {
		return 0
	}
	return float64(pos-neg) / float64(total) * math.Min(1, float64(total)/2)
}

func labelFor(score float64) domain.Sentiment {
	switch {
	case score >= sentimentThreshold:
		return domain.SentimentPositive
	case score <= -sentimentThreshold:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

func splitSentences(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})
}

// summarizeSentiment builds per-speaker aggregates sorted by speaker.
func summarizeSentiment(timeline []domain.SentimentSegment, source string) *domain.SentimentAnalysis {
	bySpeaker := make(map[int]*domain.SpeakerSentiment)
	sums := make(map[int]float64)
	total := 0.0

	for _, seg := range timeline {
		sp, ok := bySpeaker[seg.Speaker]
		if !ok {
			sp = &domain.SpeakerSentiment{Speaker: seg.Speaker}
			bySpeaker[seg.Speaker] = sp
		}
		switch seg.Sentiment {
		case domain.SentimentPositive:
			sp.Positive++
		case domain.SentimentNegative:
			sp.Negative++
		default:
			sp.Neutral++
		}
		sums[seg.Speaker] += seg.Score
		total += seg.Score
	}

	speakers := make([]domain.SpeakerSentiment, 0, len(bySpeaker))
	for id, sp := range bySpeaker {
		n := sp.Positive + sp.Neutral + sp.Negative
		sp.AverageScore = roundTo(sums[id]/float64(n), 3)
		sp.Sentiment = labelFor(sp.AverageScore)
		speakers = append(speakers, *sp)
	}
	sort.Slice(speakers, func(i, j int) bool { return speakers[i].Speaker < speakers[j].Speaker })

	analysis := &domain.SentimentAnalysis{
		Overall:  domain.SentimentNeutral,
		Source:   source,
		Speakers: speakers,
		Timeline: timeline,
	}
	if len(timeline) > 0 {
		analysis.AverageScore = roundTo(total/float64(len(timeline)), 3)
		analysis.Overall = labelFor(analysis.AverageScore)
	}
	return analysis
}

// sentimentShares returns the positive and negative share of the agent's
// segments, or of all segments when none are attributed to the agent.
func sentimentShares(timeline []domain.SentimentSegment, agentSpeaker int) (pos, neg float64) {
	segments := make([]domain.SentimentSegment, 0, len(timeline))
	for _, seg := range timeline {
		if seg.Speaker == agentSpeaker {
			segments = append(segments, seg)
		}
	}
	if len(segments) == 0 {
		segments = timeline
	}
	if len(segments) == 0 {
		return 0, 0
	}

	for _, seg := range segments {
		switch seg.Sentiment {
		case domain.SentimentPositive:
			pos++
		case domain.SentimentNegative:
			neg++
		}
	}
	n := float64(len(segments))
	return pos / n, neg / n
}
