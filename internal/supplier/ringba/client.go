// Package ringba fetches call logs from the Ringba reporting API.
package ringba

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/godilite/call-insights/internal/domain"
	"github.com/godilite/call-insights/internal/normalize"
	"github.com/godilite/call-insights/internal/supplier"
	"go.uber.org/zap"
)

const (
	Name = "ringba"

	DefaultBaseURL  = "https://api.ringba.com/v2"
	defaultPageSize = 500
	maxPages        = 1000

	SchemeToken  = "Token"
	SchemeBearer = "Bearer"
)

var (
	ErrInvalidAuthScheme = errors.New("invalid auth scheme")
	ErrMissingCredential = errors.New("account id and token are required")
)

type Client struct {
	baseURL   string
	accountID string
	authValue string
	pageSize  int
	transport *supplier.Transport
}

type options struct {
	baseURL    string
	scheme     string
	pageSize   int
	httpClient *http.Client
	maxElapsed time.Duration
	retryWait  time.Duration
	observer   supplier.Observer
	logger     *zap.Logger
}

type Option func(*options)

func WithBaseURL(u string) Option {
	return func(o *options) {
		if u != "" {
			o.baseURL = u
		}
	}
}

// WithAuthScheme selects the Authorization scheme, Token or Bearer.
func WithAuthScheme(scheme string) Option {
	return func(o *options) {
		if scheme != "" {
			o.scheme = scheme
		}
	}
}

func WithPageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithRetry bounds the total retry time and sets the first backoff wait.
func WithRetry(maxElapsed, initial time.Duration) Option {
	return func(o *options) {
		o.maxElapsed = maxElapsed
		o.retryWait = initial
	}
}

func WithObserver(obs supplier.Observer) Option {
	return func(o *options) { o.observer = obs }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New resolves the authorization header once; requests never fall back to
// another scheme.
func New(accountID, token string, opts ...Option) (*Client, error) {
	o := options{
		baseURL:    DefaultBaseURL,
		scheme:     SchemeToken,
		pageSize:   defaultPageSize,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(&o)
	}

	if accountID == "" || token == "" {
		return nil, ErrMissingCredential
	}
	var scheme string
	switch strings.ToLower(o.scheme) {
	case "token":
		scheme = SchemeToken
	case "bearer":
		scheme = SchemeBearer
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidAuthScheme, o.scheme)
	}

	logger := o.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:   strings.TrimRight(o.baseURL, "/"),
		accountID: accountID,
		authValue: scheme + " " + token,
		pageSize:  o.pageSize,
		transport: &supplier.Transport{
			Supplier:        Name,
			Client:          o.httpClient,
			MaxElapsed:      o.maxElapsed,
			InitialInterval: o.retryWait,
			Observer:        o.observer,
			Logger:          logger.Named("ringba"),
		},
	}, nil
}

type orderBy struct {
	Column    string `json:"column"`
	Direction string `json:"direction"`
}

type callLogRequest struct {
	ReportStart    string    `json:"reportStart"`
	ReportEnd      string    `json:"reportEnd"`
	Offset         int       `json:"offset"`
	Size           int       `json:"size"`
	OrderByColumns []orderBy `json:"orderByColumns"`
}

// FetchCalls pages through the call log for [from, to] until a short page.
func (c *Client) FetchCalls(ctx context.Context, from, to time.Time) ([]domain.RawCallRecord, error) {
	endpoint := fmt.Sprintf("%s/%s/calllogs", c.baseURL, c.accountID)

	var all []domain.RawCallRecord
	for page, offset := 0, 0; page < maxPages; page++ {
		body, err := json.Marshal(callLogRequest{
			ReportStart:    from.UTC().Format(time.RFC3339),
			ReportEnd:      to.UTC().Format(time.RFC3339),
			Offset:         offset,
			Size:           c.pageSize,
			OrderByColumns: []orderBy{{Column: "callDt", Direction: "asc"}},
		})
		if err != nil {
			return nil, err
		}

		var records []domain.RawCallRecord
		err = c.transport.Do(ctx, "fetch_calls",
			func(ctx context.Context) (*http.Request, error) {
				req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
				if err != nil {
					return nil, err
				}
				req.Header.Set("Authorization", c.authValue)
				req.Header.Set("Content-Type", "application/json")
				req.Header.Set("Accept", "application/json")
				return req, nil
			},
			func(r io.Reader) error {
				records, err = normalize.DecodeReader(r)
				return err
			})
		if err != nil {
			return nil, err
		}

		all = append(all, records...)
		if len(records) < c.pageSize {
			break
		}
		offset += len(records)
	}
	return all, nil
}
