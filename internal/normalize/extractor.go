package normalize

import (
	"strings"

	"github.com/godilite/call-insights/internal/domain"
)

// Resolution describes which alias supplied a field and how it coerced.
type Resolution struct {
	Field Field
	Alias string
	Raw   any
	Value any
	Err   error
}

// Extractor resolves canonical fields from raw records through ordered alias
// tables.
type Extractor struct {
	aliases map[Field][]string
}

type Option func(*Extractor)

// WithAliases replaces the alias list of one field.
func WithAliases(field Field, aliases ...string) Option {
	return func(e *Extractor) {
		e.aliases[field] = append([]string(nil), aliases...)
	}
}

func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{aliases: DefaultAliases()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Aliases returns the configured alias list for a field.
func (e *Extractor) Aliases(field Field) []string {
	return append([]string(nil), e.aliases[field]...)
}

// Resolve finds the first alias holding a value and coerces it. ok is false
// when no alias is present; a present value that fails coercion is reported
// through Resolution.Err and later aliases are not consulted.
func (e *Extractor) Resolve(raw domain.RawCallRecord, field Field) (Resolution, bool) {
	for _, alias := range e.aliases[field] {
		v, found := raw[alias]
		if !found || isBlank(v) {
			continue
		}
		value, err := coerce(fieldKinds[field], v)
		return Resolution{Field: field, Alias: alias, Raw: v, Value: value, Err: err}, true
	}
	return Resolution{Field: field}, false
}

// Extract returns the coerced value of a field, or nil and false when the
// field is absent or its value is not coercible.
func (e *Extractor) Extract(raw domain.RawCallRecord, field Field) (any, bool) {
	res, ok := e.Resolve(raw, field)
	if !ok || res.Err != nil {
		return nil, false
	}
	return res.Value, true
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
