package supplier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	defaultMaxElapsed = 15 * time.Second
	maxErrorBody      = 512
)

// Transport sends JSON requests with exponential backoff. Network errors,
// 429 and 5xx are retried; other statuses fail permanently.
type Transport struct {
	Supplier        string
	Client          *http.Client
	MaxElapsed      time.Duration
	InitialInterval time.Duration
	Observer        Observer
	Logger          *zap.Logger
}

// Do builds a fresh request per attempt and hands a 2xx body to decode.
// Decode errors are not retried.
func (t *Transport) Do(ctx context.Context, op string, build func(ctx context.Context) (*http.Request, error), decode func(io.Reader) error) error {
	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	logger := t.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = defaultMaxElapsed
	if t.MaxElapsed > 0 {
		bo.MaxElapsedTime = t.MaxElapsed
	}
	if t.InitialInterval > 0 {
		bo.InitialInterval = t.InitialInterval
	}

	start := time.Now()
	var lastErr *SupplierError
	attempt := func() error {
		req, err := build(ctx)
		if err != nil {
			lastErr = &SupplierError{Supplier: t.Supplier, Op: op, Err: err}
			return backoff.Permanent(lastErr)
		}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = &SupplierError{Supplier: t.Supplier, Op: op, Err: err}
			if ctx.Err() != nil {
				return backoff.Permanent(lastErr)
			}
			return lastErr
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			lastErr = &SupplierError{
				Supplier:   t.Supplier,
				Op:         op,
				StatusCode: resp.StatusCode,
				Err:        fmt.Errorf("%w: %s", ErrUnexpectedStatus, body),
			}
			if lastErr.Temporary() {
				return lastErr
			}
			return backoff.Permanent(lastErr)
		}

		if err := decode(resp.Body); err != nil {
			lastErr = &SupplierError{Supplier: t.Supplier, Op: op, StatusCode: resp.StatusCode, Err: err}
			return backoff.Permanent(lastErr)
		}
		lastErr = nil
		return nil
	}

	notify := func(err error, wait time.Duration) {
		logger.Warn("supplier request failed, retrying",
			zap.String("supplier", t.Supplier),
			zap.String("op", op),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	err := backoff.RetryNotify(attempt, backoff.WithContext(bo, ctx), notify)
	t.observe(op, err, time.Since(start))
	if err == nil {
		return nil
	}
	if lastErr != nil {
		return lastErr
	}
	return &SupplierError{Supplier: t.Supplier, Op: op, Err: err}
}

func (t *Transport) observe(op string, err error, elapsed time.Duration) {
	if t.Observer == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	t.Observer.ObserveSupplierRequest(t.Supplier, op, outcome, elapsed)
}
