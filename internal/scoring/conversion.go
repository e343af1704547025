package scoring

import "github.com/godilite/call-insights/internal/domain"

const (
	dispositionConfidence = 95.0
	minTypedConfidence    = 50.0
)

var convertingTypes = map[domain.ConversionType]bool{
	domain.ConversionSale:        true,
	domain.ConversionAppointment: true,
	domain.ConversionTransfer:    true,
}

// classifyConversion combines the call disposition with keyword rules over
// the transcript tokens. A converted disposition is trusted outright; keyword
// evidence only sets the type in that case.
func classifyConversion(disposition domain.Disposition, tokens []string) domain.BusinessConversion {
	var signals []string
	best := domain.ConversionNone
	bestHits := 0
	for _, rule := range conversionRules {
		n, matched := countPhrases(tokens, rule.phrases)
		for _, m := range matched {
			signals = append(signals, rule.kind+":"+m)
		}
		if n > bestHits {
			best = domain.ConversionType(rule.kind)
			bestHits = n
		}
	}

	rejections, matched := countPhrases(tokens, rejectionPhrases)
	for _, m := range matched {
		signals = append(signals, "rejection:"+m)
	}

	switch disposition {
	case domain.DispositionConverted:
		typ := domain.ConversionSale
		if convertingTypes[best] {
			typ = best
		}
		return domain.BusinessConversion{
			Converted:  true,
			Confidence: dispositionConfidence,
			Type:       typ,
			Signals:    append([]string{"disposition:converted"}, signals...),
		}
	case domain.DispositionCallback:
		signals = append(signals, "disposition:callback")
		if bestHits == 0 {
			best, bestHits = domain.ConversionCallback, 1
		}
	case domain.DispositionNotConverted, domain.DispositionNoAnswer, domain.DispositionVoicemail:
		signals = append(signals, "disposition:"+string(disposition))
		rejections++
	}

	result := domain.BusinessConversion{Type: domain.ConversionNone, Signals: signals}
	if bestHits == 0 {
		return result
	}

	result.Confidence = clamp(40+15*float64(bestHits)-20*float64(rejections), 0, 100)
	if result.Confidence >= minTypedConfidence {
		result.Type = best
		result.Converted = convertingTypes[best]
	}
	return result
}

// dispositionConversion is the verdict available without a transcript.
func dispositionConversion(disposition domain.Disposition) domain.BusinessConversion {
	return classifyConversion(disposition, nil)
}
