package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Rating string

const (
	RatingGood Rating = "GOOD"
	RatingBad  Rating = "BAD"
	RatingUgly Rating = "UGLY"
)

type AnalysisKind string

const (
	// AnalysisTranscript is scored from speech features.
	AnalysisTranscript AnalysisKind = "transcript"
	// AnalysisStructural is scored from duration and disposition only.
	AnalysisStructural AnalysisKind = "structural"
)

type ConversionType string

const (
	ConversionSale        ConversionType = "sale"
	ConversionAppointment ConversionType = "appointment"
	ConversionTransfer    ConversionType = "transfer"
	ConversionLead        ConversionType = "lead"
	ConversionCallback    ConversionType = "callback"
	ConversionNone        ConversionType = "none"
)

type ToneQuality struct {
	Professionalism float64 `json:"professionalism"`
	Friendliness    float64 `json:"friendliness"`
	Empathy         float64 `json:"empathy"`
	Clarity         float64 `json:"clarity"`
	Overall         float64 `json:"overall"`
}

type AgentPerformance struct {
	Communication    float64 `json:"communication"`
	ProblemSolving   float64 `json:"problemSolving"`
	ProductKnowledge float64 `json:"productKnowledge"`
	CustomerService  float64 `json:"customerService"`
	Overall          float64 `json:"overall"`
}

type BusinessConversion struct {
	Converted  bool           `json:"converted"`
	Confidence float64        `json:"confidence"`
	Type       ConversionType `json:"type"`
	Signals    []string       `json:"signals,omitempty"`
}

type SpeakerSentiment struct {
	Speaker      int       `json:"speaker"`
	Positive     int       `json:"positive"`
	Neutral      int       `json:"neutral"`
	Negative     int       `json:"negative"`
	AverageScore float64   `json:"averageScore"`
	Sentiment    Sentiment `json:"sentiment"`
}

type SentimentAnalysis struct {
	Overall      Sentiment          `json:"overall"`
	AverageScore float64            `json:"averageScore"`
	Source       string             `json:"source"`
	Speakers     []SpeakerSentiment `json:"speakers"`
	Timeline     []SentimentSegment `json:"timeline"`
}

// QualityAnalysis is the immutable result of scoring one call. Speech-derived
// parts are nil on the structural path.
type QualityAnalysis struct {
	CallID             string             `json:"callId"`
	Kind               AnalysisKind       `json:"kind"`
	ScorerVersion      string             `json:"scorerVersion"`
	OverallScore       float64            `json:"overallScore"`
	OverallRating      Rating             `json:"overallRating"`
	ToneQuality        *ToneQuality       `json:"toneQuality"`
	AgentPerformance   *AgentPerformance  `json:"agentPerformance"`
	BusinessConversion BusinessConversion `json:"businessConversion"`
	SentimentAnalysis  *SentimentAnalysis `json:"sentimentAnalysis"`
}

// AnalysisRecord is a persisted analysis version. Versions start at 1 and a
// rescore always appends.
type AnalysisRecord struct {
	Analysis  QualityAnalysis `json:"analysis"`
	Version   int             `json:"version"`
	CreatedAt time.Time       `json:"createdAt"`
}

type GroupBy string

const (
	GroupByCampaign GroupBy = "campaign"
	GroupByAgent    GroupBy = "agent"
	GroupByAll      GroupBy = "all"
)

// Metrics is a reporting projection over a set of scored calls. AverageScore
// is nil when no call in the group has an analysis.
type Metrics struct {
	GroupBy           GroupBy         `json:"groupBy"`
	Key               string          `json:"key"`
	Name              string          `json:"name"`
	TotalCalls        int             `json:"totalCalls"`
	CompletedCalls    int             `json:"completedCalls"`
	RejectedCalls     int             `json:"rejectedCalls"`
	SkippedCalls      int             `json:"skippedCalls"`
	ScoredCalls       int             `json:"scoredCalls"`
	AverageScore      *float64        `json:"averageScore"`
	GoodCalls         int             `json:"goodCalls"`
	BadCalls          int             `json:"badCalls"`
	UglyCalls         int             `json:"uglyCalls"`
	TotalAudioMinutes float64         `json:"totalAudioMinutes"`
	Conversions       int             `json:"conversions"`
	ConversionRate    float64         `json:"conversionRate"`
	Revenue           decimal.Decimal `json:"revenue"`
	Cost              decimal.Decimal `json:"cost"`
}
