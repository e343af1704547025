// Package domain holds the canonical call analytics types shared by the
// normalization, scoring and aggregation stages.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawCallRecord is one call-log entry exactly as the telephony provider
// returned it. Numbers are kept as json.Number by the decoder.
type RawCallRecord map[string]any

type CallStatus string

const (
	StatusConnected CallStatus = "connected"
	StatusRejected  CallStatus = "rejected"
	StatusSkipped   CallStatus = "skipped"
	StatusMissed    CallStatus = "missed"
	StatusFailed    CallStatus = "failed"
	StatusUnknown   CallStatus = "unknown"
)

type Disposition string

const (
	DispositionConverted    Disposition = "converted"
	DispositionNotConverted Disposition = "not_converted"
	DispositionCallback     Disposition = "callback"
	DispositionVoicemail    Disposition = "voicemail"
	DispositionNoAnswer     Disposition = "no_answer"
	DispositionUnknown      Disposition = "unknown"
)

const (
	UnknownCampaign = "unknown"
	UnknownAgent    = "Unknown Agent"
)

// CallRecord is the canonical call produced by the normalizer.
type CallRecord struct {
	ID              string          `json:"id"`
	CampaignID      string          `json:"campaignId"`
	CampaignName    string          `json:"campaignName,omitempty"`
	AgentName       string          `json:"agentName"`
	CallerNumber    string          `json:"callerNumber,omitempty"`
	DurationSeconds int             `json:"durationSeconds"`
	RecordingURL    string          `json:"recordingUrl,omitempty"`
	HasRecording    bool            `json:"hasRecording"`
	StartTime       time.Time       `json:"startTime"`
	EndTime         *time.Time      `json:"endTime,omitempty"`
	Status          CallStatus      `json:"status"`
	Disposition     Disposition     `json:"disposition"`
	Revenue         decimal.Decimal `json:"revenue"`
	Cost            decimal.Decimal `json:"cost"`
}

// ScoredCall pairs a call with its latest analysis. Analysis is nil when the
// call has not been scored.
type ScoredCall struct {
	Call     CallRecord       `json:"call"`
	Analysis *QualityAnalysis `json:"analysis,omitempty"`
}
