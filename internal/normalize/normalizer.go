package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/godilite/call-insights/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrMissingID        = errors.New("missing call id")
	ErrInvalidDuration  = errors.New("invalid duration")
	ErrNegativeDuration = errors.New("negative duration")
)

// InvalidRecord is a raw record dropped by the validity check.
type InvalidRecord struct {
	Index int
	Err   error
}

func (r InvalidRecord) Error() string {
	return fmt.Sprintf("record %d: %v", r.Index, r.Err)
}

// BatchStats is the metadata reported alongside a normalized batch. Gaps
// counts, per field, the records where the field was absent or unreadable
// and a default was applied.
type BatchStats struct {
	Total          int
	Valid          int
	Invalid        int
	Gaps           map[Field]int
	InvalidRecords []InvalidRecord
}

type Batch struct {
	Records []domain.CallRecord
	Stats   BatchStats
}

type Normalizer struct {
	extractor *Extractor
	now       func() time.Time
}

type NormalizerOption func(*Normalizer)

func WithExtractor(e *Extractor) NormalizerOption {
	return func(n *Normalizer) {
		if e != nil {
			n.extractor = e
		}
	}
}

// WithClock sets the clock used for the start time default.
func WithClock(now func() time.Time) NormalizerOption {
	return func(n *Normalizer) {
		if now != nil {
			n.now = now
		}
	}
}

func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		extractor: NewExtractor(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize converts a raw batch into canonical records in source order.
// Invalid records are dropped and counted; an all-invalid batch yields an
// empty result.
func (n *Normalizer) Normalize(raw []domain.RawCallRecord) Batch {
	extractedAt := n.now().UTC()
	batch := Batch{
		Records: make([]domain.CallRecord, 0, len(raw)),
		Stats: BatchStats{
			Total: len(raw),
			Gaps:  make(map[Field]int),
		},
	}

	for i, r := range raw {
		rec, gaps, err := n.normalizeRecord(r, extractedAt)
		for _, f := range gaps {
			batch.Stats.Gaps[f]++
		}
		if err != nil {
			batch.Stats.Invalid++
			batch.Stats.InvalidRecords = append(batch.Stats.InvalidRecords, InvalidRecord{Index: i, Err: err})
			continue
		}
		batch.Records = append(batch.Records, rec)
	}
	batch.Stats.Valid = len(batch.Records)

	return batch
}

// NormalizeRecord converts a single raw record, using the current clock for
// the start time default.
func (n *Normalizer) NormalizeRecord(raw domain.RawCallRecord) (domain.CallRecord, error) {
	rec, _, err := n.normalizeRecord(raw, n.now().UTC())
	return rec, err
}

func (n *Normalizer) normalizeRecord(raw domain.RawCallRecord, extractedAt time.Time) (domain.CallRecord, []Field, error) {
	var gaps []Field
	str := func(f Field) string {
		res, ok := n.extractor.Resolve(raw, f)
		if !ok || res.Err != nil {
			gaps = append(gaps, f)
			return ""
		}
		return res.Value.(string)
	}

	id := str(FieldID)
	if id == "" {
		return domain.CallRecord{}, gaps, ErrMissingID
	}

	duration := 0
	if res, ok := n.extractor.Resolve(raw, FieldDuration); !ok {
		gaps = append(gaps, FieldDuration)
	} else if res.Err != nil {
		return domain.CallRecord{}, gaps, fmt.Errorf("%w: %v", ErrInvalidDuration, res.Err)
	} else if duration = res.Value.(int); duration < 0 {
		return domain.CallRecord{}, gaps, fmt.Errorf("%w: %d", ErrNegativeDuration, duration)
	}

	rec := domain.CallRecord{
		ID:              id,
		CampaignID:      str(FieldCampaignID),
		CampaignName:    str(FieldCampaignName),
		AgentName:       str(FieldAgent),
		CallerNumber:    str(FieldCaller),
		DurationSeconds: duration,
		RecordingURL:    str(FieldRecordingURL),
		StartTime:       extractedAt,
		Revenue:         decimal.Zero,
		Cost:            decimal.Zero,
	}
	rec.HasRecording = rec.RecordingURL != ""

	if rec.CampaignID == "" {
		rec.CampaignID = domain.UnknownCampaign
	}
	if rec.AgentName == "" {
		rec.AgentName = domain.UnknownAgent
	}

	if res, ok := n.extractor.Resolve(raw, FieldStartTime); ok && res.Err == nil {
		rec.StartTime = res.Value.(time.Time)
	} else {
		gaps = append(gaps, FieldStartTime)
	}
	if res, ok := n.extractor.Resolve(raw, FieldEndTime); ok && res.Err == nil {
		end := res.Value.(time.Time)
		rec.EndTime = &end
	} else {
		gaps = append(gaps, FieldEndTime)
	}

	rec.Status = n.status(raw, &gaps)
	rec.Disposition = n.disposition(raw, &gaps)
	rec.Revenue = n.amount(raw, FieldRevenue, &gaps)
	rec.Cost = n.amount(raw, FieldCost, &gaps)

	return rec, gaps, nil
}

func (n *Normalizer) status(raw domain.RawCallRecord, gaps *[]Field) domain.CallStatus {
	status := domain.StatusUnknown
	if res, ok := n.extractor.Resolve(raw, FieldStatus); ok && res.Err == nil {
		status = ParseStatus(res.Value.(string))
	} else {
		*gaps = append(*gaps, FieldStatus)
	}
	if status != domain.StatusUnknown {
		return status
	}

	if res, ok := n.extractor.Resolve(raw, FieldConnected); ok && res.Err == nil {
		if res.Value.(bool) {
			return domain.StatusConnected
		}
		return domain.StatusMissed
	}
	return status
}

func (n *Normalizer) disposition(raw domain.RawCallRecord, gaps *[]Field) domain.Disposition {
	disposition := domain.DispositionUnknown
	if res, ok := n.extractor.Resolve(raw, FieldDisposition); ok && res.Err == nil {
		disposition = ParseDisposition(res.Value.(string))
	} else {
		*gaps = append(*gaps, FieldDisposition)
	}
	if disposition != domain.DispositionUnknown {
		return disposition
	}

	if res, ok := n.extractor.Resolve(raw, FieldConverted); ok && res.Err == nil {
		if res.Value.(bool) {
			return domain.DispositionConverted
		}
		return domain.DispositionNotConverted
	}
	return disposition
}

// amount reads a non-negative decimal; negative or unreadable values are a
// gap and fall back to zero.
func (n *Normalizer) amount(raw domain.RawCallRecord, f Field, gaps *[]Field) decimal.Decimal {
	res, ok := n.extractor.Resolve(raw, f)
	if !ok || res.Err != nil {
		*gaps = append(*gaps, f)
		return decimal.Zero
	}
	d := res.Value.(decimal.Decimal)
	if d.IsNegative() {
		*gaps = append(*gaps, f)
		return decimal.Zero
	}
	return d
}

var statusAliases = map[string]domain.CallStatus{
	"connected":  domain.StatusConnected,
	"answered":   domain.StatusConnected,
	"completed":  domain.StatusConnected,
	"complete":   domain.StatusConnected,
	"success":    domain.StatusConnected,
	"successful": domain.StatusConnected,
	"rejected":   domain.StatusRejected,
	"blocked":    domain.StatusRejected,
	"declined":   domain.StatusRejected,
	"skipped":    domain.StatusSkipped,
	"filtered":   domain.StatusSkipped,
	"missed":     domain.StatusMissed,
	"no_answer":  domain.StatusMissed,
	"noanswer":   domain.StatusMissed,
	"unanswered": domain.StatusMissed,
	"abandoned":  domain.StatusMissed,
	"failed":     domain.StatusFailed,
	"failure":    domain.StatusFailed,
	"error":      domain.StatusFailed,
	"busy":       domain.StatusFailed,
}

var dispositionAliases = map[string]domain.Disposition{
	"converted":     domain.DispositionConverted,
	"conversion":    domain.DispositionConverted,
	"sale":          domain.DispositionConverted,
	"sold":          domain.DispositionConverted,
	"won":           domain.DispositionConverted,
	"not_converted": domain.DispositionNotConverted,
	"no_sale":       domain.DispositionNotConverted,
	"lost":          domain.DispositionNotConverted,
	"callback":      domain.DispositionCallback,
	"call_back":     domain.DispositionCallback,
	"follow_up":     domain.DispositionCallback,
	"voicemail":     domain.DispositionVoicemail,
	"voice_mail":    domain.DispositionVoicemail,
	"vm":            domain.DispositionVoicemail,
	"no_answer":     domain.DispositionNoAnswer,
	"noanswer":      domain.DispositionNoAnswer,
	"unanswered":    domain.DispositionNoAnswer,
}

// ParseStatus maps a provider status label onto the bounded enumeration.
func ParseStatus(s string) domain.CallStatus {
	if st, ok := statusAliases[labelKey(s)]; ok {
		return st
	}
	return domain.StatusUnknown
}

// ParseDisposition maps a provider disposition label onto the bounded
// enumeration.
func ParseDisposition(s string) domain.Disposition {
	if d, ok := dispositionAliases[labelKey(s)]; ok {
		return d
	}
	return domain.DispositionUnknown
}

// labelKey folds "No Answer", "no-answer" and "NO_ANSWER" together.
func labelKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}
