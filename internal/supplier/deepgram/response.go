package deepgram

import (
	"strings"

	"github.com/godilite/call-insights/internal/domain"
)

type listenResponse struct {
	Metadata struct {
		RequestID string  `json:"request_id"`
		Duration  float64 `json:"duration"`
	} `json:"metadata"`
	Results struct {
		Channels []struct {
			Alternatives []alternative `json:"alternatives"`
		} `json:"channels"`
		Sentiments struct {
			Segments []struct {
				Text           string  `json:"text"`
				StartWord      int     `json:"start_word"`
				EndWord        int     `json:"end_word"`
				Sentiment      string  `json:"sentiment"`
				SentimentScore float64 `json:"sentiment_score"`
			} `json:"segments"`
		} `json:"sentiments"`
	} `json:"results"`
}

type alternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
	Words      []struct {
		Word           string  `json:"word"`
		PunctuatedWord string  `json:"punctuated_word"`
		Start          float64 `json:"start"`
		End            float64 `json:"end"`
		Confidence     float64 `json:"confidence"`
		Speaker        *int    `json:"speaker"`
	} `json:"words"`
	Paragraphs struct {
		Paragraphs []struct {
			Speaker   *int    `json:"speaker"`
			Start     float64 `json:"start"`
			End       float64 `json:"end"`
			Sentences []struct {
				Text  string  `json:"text"`
				Start float64 `json:"start"`
				End   float64 `json:"end"`
			} `json:"sentences"`
		} `json:"paragraphs"`
	} `json:"paragraphs"`
}

func speakerOf(s *int) int {
	if s == nil {
		return domain.UnknownSpeaker
	}
	return *s
}

// bundle maps the first alternative of the first channel. Sentiment segments
// reference words by index; their times and speaker come from those words.
func (r *listenResponse) bundle(callID string) *domain.TranscriptBundle {
	alt := r.Results.Channels[0].Alternatives[0]

	b := &domain.TranscriptBundle{
		CallID:     callID,
		RequestID:  r.Metadata.RequestID,
		Text:       strings.TrimSpace(alt.Transcript),
		Confidence: alt.Confidence,
		Duration:   r.Metadata.Duration,
		Words:      make([]domain.Word, 0, len(alt.Words)),
	}

	for _, w := range alt.Words {
		text := w.PunctuatedWord
		if text == "" {
			text = w.Word
		}
		b.Words = append(b.Words, domain.Word{
			Text:       text,
			Start:      w.Start,
			End:        w.End,
			Confidence: w.Confidence,
			Speaker:    speakerOf(w.Speaker),
		})
	}

	for _, p := range alt.Paragraphs.Paragraphs {
		para := domain.Paragraph{Speaker: speakerOf(p.Speaker), Start: p.Start, End: p.End}
		for _, s := range p.Sentences {
			para.Sentences = append(para.Sentences, domain.Sentence{Text: s.Text, Start: s.Start, End: s.End})
		}
		b.Paragraphs = append(b.Paragraphs, para)
	}

	for _, s := range r.Results.Sentiments.Segments {
		seg := domain.SentimentSegment{
			Text:      s.Text,
			Sentiment: domain.Sentiment(s.Sentiment),
			Score:     s.SentimentScore,
			Speaker:   domain.UnknownSpeaker,
		}
		if s.StartWord >= 0 && s.StartWord < len(b.Words) {
			seg.Start = b.Words[s.StartWord].Start
			seg.Speaker = b.Words[s.StartWord].Speaker
		}
		if s.EndWord >= 0 && s.EndWord < len(b.Words) {
			seg.End = b.Words[s.EndWord].End
		}
		b.Sentiments = append(b.Sentiments, seg)
	}

	return b
}
