package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

// window is a reporting or sync time range. Both bounds are inclusive.
type window struct {
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required,gtefield=Start"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		validate = v
	})
	return validate
}

// bindWindowQuery reads ?start=&end= as RFC3339 timestamps or plain dates.
// A plain end date covers that whole day.
func bindWindowQuery(r *http.Request) (window, error) {
	var w window
	var err error
	q := r.URL.Query()
	if w.Start, err = parseBound(q.Get("start"), false); err != nil {
		return window{}, fmt.Errorf("start: %w", err)
	}
	if w.End, err = parseBound(q.Get("end"), true); err != nil {
		return window{}, fmt.Errorf("end: %w", err)
	}
	return w, validateStruct(w)
}

// bindWindowBody decodes a JSON window and rejects unknown fields.
func bindWindowBody(r *http.Request) (window, error) {
	var w window
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil {
		if errors.Is(err, io.EOF) {
			return window{}, errors.New("request body is empty")
		}
		return window{}, fmt.Errorf("decode body: %w", err)
	}
	return w, validateStruct(w)
}

func parseBound(s string, endOfDay bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is neither RFC3339 nor YYYY-MM-DD", s)
	}
	if endOfDay {
		d = d.Add(24*time.Hour - time.Nanosecond)
	}
	return d, nil
}

func validateStruct(v any) error {
	err := validatorInstance().Struct(v)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "gtefield":
			msgs = append(msgs, fe.Field()+" must not be before "+strings.ToLower(fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
