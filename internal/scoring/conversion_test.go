package scoring

import (
	"testing"

	"github.com/godilite/call-insights/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassifyConversion(t *testing.T) {
	cases := []struct {
		name        string
		disposition domain.Disposition
		text        string
		converted   bool
		confidence  float64
		typ         domain.ConversionType
	}{
		{"converted disposition", domain.DispositionConverted, "", true, 95, domain.ConversionSale},
		{"converted disposition keeps keyword type", domain.DispositionConverted, "I booked your appointment", true, 95, domain.ConversionAppointment},
		{"appointment keywords", domain.DispositionUnknown, "Let me schedule an appointment for Tuesday", true, 70, domain.ConversionAppointment},
		{"rejection outweighs interest", domain.DispositionUnknown, "I'm not interested", false, 35, domain.ConversionNone},
		{"callback disposition", domain.DispositionCallback, "", false, 55, domain.ConversionCallback},
		{"lead is not a conversion", domain.DispositionUnknown, "please email me more information", false, 70, domain.ConversionLead},
		{"tie goes to earlier rule", domain.DispositionUnknown, "purchase then appointment", true, 55, domain.ConversionSale},
		{"not converted disposition lowers confidence", domain.DispositionNotConverted, "we can transfer you now", false, 35, domain.ConversionNone},
		{"no signals", domain.DispositionUnknown, "hello there", false, 0, domain.ConversionNone},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classifyConversion(tc.disposition, tokenize(tc.text))

			assert.Equal(t, tc.converted, got.Converted)
			assert.Equal(t, tc.confidence, got.Confidence)
			assert.Equal(t, tc.typ, got.Type)
		})
	}
}

func TestClassifyConversionSignals(t *testing.T) {
	got := classifyConversion(domain.DispositionConverted, tokenize("Great, I'll take it. Here is my credit card."))

	assert.Equal(t, []string{"disposition:converted", "sale:credit card", "sale:i'll take it"}, got.Signals)
}
