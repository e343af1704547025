// Package v1 holds the wire messages and service descriptor of the
// callinsights.v1.CallAnalytics gRPC service. Messages travel as JSON through
// the codec registered in codec.go.
package v1

import "google.golang.org/protobuf/types/known/timestamppb"

type TimePeriodRequest struct {
	StartDate *timestamppb.Timestamp `json:"startDate,omitempty"`
	EndDate   *timestamppb.Timestamp `json:"endDate,omitempty"`
}

func (x *TimePeriodRequest) GetStartDate() *timestamppb.Timestamp {
	if x != nil {
		return x.StartDate
	}
	return nil
}

func (x *TimePeriodRequest) GetEndDate() *timestamppb.Timestamp {
	if x != nil {
		return x.EndDate
	}
	return nil
}

// GroupMetrics is one campaign or agent row. HasAverageScore is false when no
// call in the group was scored.
type GroupMetrics struct {
	Key               string  `json:"key"`
	Name              string  `json:"name,omitempty"`
	TotalCalls        int64   `json:"totalCalls"`
	CompletedCalls    int64   `json:"completedCalls"`
	RejectedCalls     int64   `json:"rejectedCalls"`
	SkippedCalls      int64   `json:"skippedCalls"`
	ScoredCalls       int64   `json:"scoredCalls"`
	HasAverageScore   bool    `json:"hasAverageScore"`
	AverageScore      float64 `json:"averageScore"`
	GoodCalls         int64   `json:"goodCalls"`
	BadCalls          int64   `json:"badCalls"`
	UglyCalls         int64   `json:"uglyCalls"`
	TotalAudioMinutes float64 `json:"totalAudioMinutes"`
	Conversions       int64   `json:"conversions"`
	ConversionRate    float64 `json:"conversionRate"`
	Revenue           string  `json:"revenue"`
	Cost              string  `json:"cost"`
}

func (x *GroupMetrics) GetKey() string {
	if x != nil {
		return x.Key
	}
	return ""
}

func (x *GroupMetrics) GetAverageScore() (float64, bool) {
	if x != nil {
		return x.AverageScore, x.HasAverageScore
	}
	return 0, false
}

type MetricsResponse struct {
	Metrics []*GroupMetrics `json:"metrics"`
}

func (x *MetricsResponse) GetMetrics() []*GroupMetrics {
	if x != nil {
		return x.Metrics
	}
	return nil
}

type OverallQualityScoreResponse struct {
	Score float64 `json:"score"`
}

func (x *OverallQualityScoreResponse) GetScore() float64 {
	if x != nil {
		return x.Score
	}
	return 0
}

type PeriodOverPeriodScoreChangeResponse struct {
	CurrentPeriodScore  float64 `json:"currentPeriodScore"`
	PreviousPeriodScore float64 `json:"previousPeriodScore"`
	ChangePercentage    float64 `json:"changePercentage"`
}

func (x *PeriodOverPeriodScoreChangeResponse) GetChangePercentage() float64 {
	if x != nil {
		return x.ChangePercentage
	}
	return 0
}

type PeriodScore struct {
	Period string  `json:"period"`
	Score  float64 `json:"score"`
	Count  int64   `json:"count"`
}

type ScoreTrendResponse struct {
	PeriodScores []*PeriodScore `json:"periodScores"`
}

func (x *ScoreTrendResponse) GetPeriodScores() []*PeriodScore {
	if x != nil {
		return x.PeriodScores
	}
	return nil
}

type CallAnalysisRequest struct {
	CallId string `json:"callId"`
}

func (x *CallAnalysisRequest) GetCallId() string {
	if x != nil {
		return x.CallId
	}
	return ""
}

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

// CallAnalysisResponse carries one analysis version. Tone, Agent and
// Sentiment are unset for structural analyses.
type CallAnalysisResponse struct {
	CallId               string                 `json:"callId"`
	Version              int32                  `json:"version"`
	CreatedAt            *timestamppb.Timestamp `json:"createdAt,omitempty"`
	Kind                 string                 `json:"kind"`
	ScorerVersion        string                 `json:"scorerVersion"`
	OverallScore         float64                `json:"overallScore"`
	OverallRating        string                 `json:"overallRating"`
	Tone                 *ToneQuality           `json:"tone,omitempty"`
	Agent                *AgentPerformance      `json:"agent,omitempty"`
	Sentiment            string                 `json:"sentiment,omitempty"`
	Converted            bool                   `json:"converted"`
	ConversionType       string                 `json:"conversionType"`
	ConversionConfidence float64                `json:"conversionConfidence"`
}

func (x *CallAnalysisResponse) GetOverallRating() string {
	if x != nil {
		return x.OverallRating
	}
	return ""
}

type SyncCallsResponse struct {
	RunId                 string           `json:"runId"`
	Fetched               int64            `json:"fetched"`
	Normalized            int64            `json:"normalized"`
	Invalid               int64            `json:"invalid"`
	Transcribed           int64            `json:"transcribed"`
	TranscriptionFailures int64            `json:"transcriptionFailures"`
	Scored                int64            `json:"scored"`
	Unchanged             int64            `json:"unchanged"`
	NotScored             map[string]int64 `json:"notScored,omitempty"`
}

func (x *SyncCallsResponse) GetRunId() string {
	if x != nil {
		return x.RunId
	}
	return ""
}
