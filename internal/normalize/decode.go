package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/godilite/call-insights/internal/domain"
)

// WrapperKeys is the canonical unwrap order for object-shaped payloads.
var WrapperKeys = []string{"data", "records", "results", "items", "callLogs", "report"}

// maxWrapDepth bounds how many nested wrapper objects are unwrapped, e.g.
// {"report": {"records": [...]}}.
const maxWrapDepth = 2

var (
	ErrMalformedPayload = errors.New("malformed payload")
	ErrNoRecordArray    = errors.New("no record array found")
	ErrNonObjectRecord  = errors.New("record is not an object")
)

// DecodeError reports why a supplier payload could not be read. Index is the
// offending element for ErrNonObjectRecord and -1 otherwise.
type DecodeError struct {
	Index int
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("decode call records: element %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("decode call records: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode reads a telephony payload into raw records. Accepted shapes are a
// top-level array, or an object wrapping the array under one of WrapperKeys
// (checked in that order), nested at most two objects deep.
func Decode(data []byte) ([]domain.RawCallRecord, error) {
	return DecodeReader(bytes.NewReader(data))
}

func DecodeReader(r io.Reader) ([]domain.RawCallRecord, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, &DecodeError{Index: -1, Err: fmt.Errorf("%w: %v", ErrMalformedPayload, err)}
	}

	items, ok := unwrap(payload, 0)
	if !ok {
		return nil, &DecodeError{Index: -1, Err: ErrNoRecordArray}
	}

	records := make([]domain.RawCallRecord, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, &DecodeError{Index: i, Err: fmt.Errorf("%w: got %T", ErrNonObjectRecord, item)}
		}
		records = append(records, domain.RawCallRecord(obj))
	}
	return records, nil
}

func unwrap(v any, depth int) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case map[string]any:
		if depth >= maxWrapDepth {
			return nil, false
		}
		for _, key := range WrapperKeys {
			child, found := t[key]
			if !found || child == nil {
				continue
			}
			if items, ok := unwrap(child, depth+1); ok {
				return items, true
			}
		}
	}
	return nil, false
}
