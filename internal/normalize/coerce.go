package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUncoercible is returned when a present value cannot be read as the
// field's type.
var ErrUncoercible = errors.New("value cannot be coerced")

// epochMillisThreshold separates epoch seconds from epoch milliseconds.
const epochMillisThreshold = 1e12

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02",
}

var truthy = map[string]struct{}{
	"true": {}, "1": {}, "yes": {}, "y": {}, "t": {}, "on": {},
}

func coerce(k kind, v any) (any, error) {
	switch k {
	case kindString:
		return asString(v)
	case kindInt:
		return asInt(v)
	case kindDecimal:
		return asDecimal(v)
	case kindBool:
		return asBool(v)
	case kindTime:
		return asTime(v)
	}
	return nil, fmt.Errorf("%w: unsupported field kind %d", ErrUncoercible, k)
}

func asString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), nil
	case json.Number:
		return t.String(), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case bool:
		return strconv.FormatBool(t), nil
	}
	return "", fmt.Errorf("%w: %T as string", ErrUncoercible, v)
}

func asFloat(v any) (float64, error) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q as number", ErrUncoercible, t.String())
		}
		return f, nil
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q as number", ErrUncoercible, t)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%w: %T as number", ErrUncoercible, v)
}

// asInt rounds fractional sources to the nearest integer.
func asInt(v any) (int, error) {
	f, err := asFloat(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: non-finite number", ErrUncoercible)
	}
	r := math.Round(f)
	if r > math.MaxInt32 || r < math.MinInt32 {
		return 0, fmt.Errorf("%w: %g out of range", ErrUncoercible, f)
	}
	return int(r), nil
}

func asDecimal(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q as decimal", ErrUncoercible, t.String())
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(t), nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case string:
		s := strings.TrimSpace(t)
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q as decimal", ErrUncoercible, t)
		}
		return d, nil
	}
	return decimal.Zero, fmt.Errorf("%w: %T as decimal", ErrUncoercible, v)
}

// asBool treats any string outside the truthy set as false.
func asBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		_, ok := truthy[strings.ToLower(strings.TrimSpace(t))]
		return ok, nil
	case json.Number, float64, int, int64:
		f, err := asFloat(t)
		if err != nil {
			return false, err
		}
		return f != 0, nil
	}
	return false, fmt.Errorf("%w: %T as bool", ErrUncoercible, v)
}

func asTime(v any) (time.Time, error) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC(), nil
			}
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return time.Time{}, fmt.Errorf("%w: %q as time", ErrUncoercible, s)
		}
	}

	f, err := asFloat(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %T as time", ErrUncoercible, v)
	}
	if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, fmt.Errorf("%w: epoch %v", ErrUncoercible, f)
	}
	if f >= epochMillisThreshold {
		return time.UnixMilli(int64(f)).UTC(), nil
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
}
