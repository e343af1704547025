package domain

type TranscriptionStatus string

const (
	TranscriptionNotApplicable TranscriptionStatus = "not_applicable"
	TranscriptionPending       TranscriptionStatus = "pending"
	TranscriptionCompleted     TranscriptionStatus = "completed"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// UnknownSpeaker marks words and segments that carry no diarization.
const UnknownSpeaker = -1

type Word struct {
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
	Speaker    int     `json:"speaker"`
}

type Sentence struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type Paragraph struct {
	Speaker   int        `json:"speaker"`
	Start     float64    `json:"start"`
	End       float64    `json:"end"`
	Sentences []Sentence `json:"sentences"`
}

type SentimentSegment struct {
	Text      string    `json:"text"`
	Start     float64   `json:"start"`
	End       float64   `json:"end"`
	Sentiment Sentiment `json:"sentiment"`
	Score     float64   `json:"score"`
	Speaker   int       `json:"speaker"`
}

// TranscriptBundle is the speech output attached to exactly one call.
// Duration and Confidence are zero when the supplier did not report them.
type TranscriptBundle struct {
	CallID     string             `json:"callId"`
	RequestID  string             `json:"requestId,omitempty"`
	Text       string             `json:"text"`
	Confidence float64            `json:"confidence"`
	Duration   float64            `json:"duration"`
	Words      []Word             `json:"words,omitempty"`
	Paragraphs []Paragraph        `json:"paragraphs,omitempty"`
	Sentiments []SentimentSegment `json:"sentiments,omitempty"`
}

// MergedCall is a call with its transcription state resolved. Transcript is
// non-nil only when TranscriptionStatus is completed.
type MergedCall struct {
	Call                CallRecord          `json:"call"`
	Transcript          *TranscriptBundle   `json:"transcript,omitempty"`
	TranscriptionStatus TranscriptionStatus `json:"transcriptionStatus"`
}
