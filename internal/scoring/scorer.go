// Package scoring computes deterministic quality analyses for merged calls.
package scoring

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/godilite/call-insights/internal/domain"
)

// Version is stored with every analysis so rescoring with a changed model is
// distinguishable from an unchanged one.
const Version = "quality-v1"

const defaultMinTranscriptChars = 20

// Weights sets the share of each agent-performance component in the overall
// score. Non-positive weights are ignored; if none remain all four count
// equally.
type Weights struct {
	Communication    float64
	ProblemSolving   float64
	ProductKnowledge float64
	CustomerService  float64
}

func EqualWeights() Weights {
	return Weights{Communication: 1, ProblemSolving: 1, ProductKnowledge: 1, CustomerService: 1}
}

type Config struct {
	MinTranscriptChars int
	Weights            Weights
	AgentSpeaker       int
}

type Option func(*Config)

func WithMinTranscriptChars(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MinTranscriptChars = n
		}
	}
}

func WithWeights(w Weights) Option {
	return func(c *Config) { c.Weights = w }
}

// WithAgentSpeaker sets which diarized speaker is the agent.
func WithAgentSpeaker(speaker int) Option {
	return func(c *Config) {
		if speaker >= 0 {
			c.AgentSpeaker = speaker
		}
	}
}

// Scorer is safe for concurrent use; it holds no mutable state.
type Scorer struct {
	cfg Config
}

func New(opts ...Option) *Scorer {
	cfg := Config{
		MinTranscriptChars: defaultMinTranscriptChars,
		Weights:            EqualWeights(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Scorer{cfg: cfg}
}

func (s *Scorer) Config() Config { return s.cfg }

// Score analyses a call with a completed transcript. Calls without a
// recording, with a pending transcript, or with too little text fail with a
// *ScoringError instead of receiving a score.
func (s *Scorer) Score(m domain.MergedCall) (domain.QualityAnalysis, error) {
	callID := m.Call.ID

	switch {
	case m.TranscriptionStatus == domain.TranscriptionNotApplicable || !m.Call.HasRecording:
		return domain.QualityAnalysis{}, &ScoringError{CallID: callID, Err: ErrNotApplicable}
	case m.TranscriptionStatus != domain.TranscriptionCompleted || m.Transcript == nil:
		return domain.QualityAnalysis{}, &ScoringError{CallID: callID, Err: ErrTranscriptPending}
	}

	text := strings.TrimSpace(m.Transcript.Text)
	if utf8.RuneCountInString(text) < s.cfg.MinTranscriptChars {
		return domain.QualityAnalysis{}, &ScoringError{CallID: callID, Err: ErrTranscriptTooShort}
	}

	f := extractFeatures(m.Transcript, s.cfg.AgentSpeaker)
	timeline, source := sentimentTimeline(m.Transcript)
	sentiment := summarizeSentiment(timeline, source)
	pos, neg := sentimentShares(timeline, s.cfg.AgentSpeaker)

	tone := s.toneQuality(f, pos, neg)
	agent := s.agentPerformance(f, pos, neg)

	return domain.QualityAnalysis{
		CallID:             callID,
		Kind:               domain.AnalysisTranscript,
		ScorerVersion:      Version,
		OverallScore:       agent.Overall,
		OverallRating:      RatingFor(agent.Overall),
		ToneQuality:        tone,
		AgentPerformance:   agent,
		BusinessConversion: classifyConversion(m.Call.Disposition, f.tokens),
		SentimentAnalysis:  sentiment,
	}, nil
}

func (s *Scorer) toneQuality(f features, pos, neg float64) *domain.ToneQuality {
	greet := math.Min(float64(hits(f.agentTokens, greetingPhrases)), 2)
	closing := math.Min(float64(hits(f.agentTokens, closingPhrases)), 2)
	courtesy := math.Min(float64(hits(f.agentTokens, courtesyPhrases)), 4)
	empathy := math.Min(float64(hits(f.agentTokens, empathyPhrases)), 3)
	rude := float64(hits(f.agentTokens, negativeAgentPhrases))
	fillerPenalty := math.Min(2, f.fillerRatio*20)

	t := &domain.ToneQuality{
		Professionalism: clampScore(5 + 1.5*greet + closing + 0.25*courtesy - 2.5*rude - fillerPenalty),
		Friendliness:    clampScore(5 + 4*(pos-neg) + 0.5*courtesy + 0.5*greet),
		Empathy:         clampScore(4 + 1.5*empathy + 1.5*pos - 1.5*rude),
		Clarity:         clampScore(7 - pacingPenalty(f) - math.Min(3, f.fillerRatio*30) + confidenceAdjustment(f.confidence)),
	}
	t.Overall = Round1((t.Professionalism + t.Friendliness + t.Empathy + t.Clarity) / 4)
	return t
}

func (s *Scorer) agentPerformance(f features, pos, neg float64) *domain.AgentPerformance {
	greet := math.Min(float64(hits(f.agentTokens, greetingPhrases)), 2)
	closing := math.Min(float64(hits(f.agentTokens, closingPhrases)), 2)
	courtesy := math.Min(float64(hits(f.agentTokens, courtesyPhrases)), 4)
	empathy := math.Min(float64(hits(f.agentTokens, empathyPhrases)), 2)
	problem := math.Min(float64(hits(f.agentTokens, problemSolvingPhrases)), 4)
	product := math.Min(float64(hits(f.agentTokens, productPhrases)), 5)
	rude := float64(hits(f.agentTokens, negativeAgentPhrases))

	depth := 0.0
	if len(f.agentTokens) >= 100 {
		depth = 0.5
	}

	a := &domain.AgentPerformance{
		Communication:    clampScore(6 + 0.75*greet + 0.5*closing - pacingPenalty(f) - math.Min(2.5, f.fillerRatio*25) + confidenceAdjustment(f.confidence) + talkRatioAdjustment(f) - 1.5*rude),
		ProblemSolving:   clampScore(4 + problem + 0.5*empathy - 2*rude),
		ProductKnowledge: clampScore(4 + product + depth),
		CustomerService:  clampScore(4 + greet + 0.5*courtesy + closing + 2*(pos-neg) - 2*rude),
	}
	a.Overall = s.weightedOverall(a)
	return a
}

func (s *Scorer) weightedOverall(a *domain.AgentPerformance) float64 {
	w := s.cfg.Weights
	parts := []struct{ weight, value float64 }{
		{w.Communication, a.Communication},
		{w.ProblemSolving, a.ProblemSolving},
		{w.ProductKnowledge, a.ProductKnowledge},
		{w.CustomerService, a.CustomerService},
	}

	sum, total := 0.0, 0.0
	for _, p := range parts {
		if p.weight > 0 {
			sum += p.weight * p.value
			total += p.weight
		}
	}
	if total == 0 {
		for _, p := range parts {
			sum += p.value
		}
		total = float64(len(parts))
	}
	return clampScore(sum / total)
}

// pacingPenalty grows outside the 110-170 words per minute band.
func pacingPenalty(f features) float64 {
	if !f.hasPacing {
		return 0
	}
	switch {
	case f.wpm < 110:
		return math.Min(3, (110-f.wpm)/20)
	case f.wpm > 170:
		return math.Min(3, (f.wpm-170)/20)
	}
	return 0
}

// confidenceAdjustment is zero when the supplier reported no confidence.
func confidenceAdjustment(c float64) float64 {
	if c <= 0 {
		return 0
	}
	return clamp((c-0.85)*10, -2, 1)
}

// talkRatioAdjustment rewards an agent share of 35-65% of the words.
func talkRatioAdjustment(f features) float64 {
	if !f.diarized {
		return 0
	}
	switch {
	case f.talkRatio < 0.35:
		return -math.Min(2, (0.35-f.talkRatio)*5)
	case f.talkRatio > 0.65:
		return -math.Min(2, (f.talkRatio-0.65)*5)
	}
	return 1
}
