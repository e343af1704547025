// Package deepgram transcribes call recordings with the Deepgram prerecorded
// audio API.
package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/godilite/call-insights/internal/domain"
	"github.com/godilite/call-insights/internal/supplier"
	"go.uber.org/zap"
)

const (
	Name = "deepgram"

	DefaultBaseURL = "https://api.deepgram.com"
	DefaultModel   = "nova-2"
)

var (
	ErrMissingAPIKey       = errors.New("deepgram api key is required")
	ErrMissingRecordingURL = errors.New("recording url is required")
	ErrNoAlternatives      = errors.New("response has no transcript alternatives")
)

type Client struct {
	endpoint  string
	apiKey    string
	transport *supplier.Transport
}

type options struct {
	baseURL    string
	model      string
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

func WithModel(m string) Option {
	return func(o *options) {
		if m != "" {
			o.model = m
		}
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

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

func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	o := options{
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	q := url.Values{}
	q.Set("model", o.model)
	q.Set("punctuate", "true")
	q.Set("diarize", "true")
	q.Set("sentiment", "true")
	q.Set("paragraphs", "true")
	q.Set("smart_format", "true")

	return &Client{
		endpoint: strings.TrimRight(o.baseURL, "/") + "/v1/listen?" + q.Encode(),
		apiKey:   apiKey,
		transport: &supplier.Transport{
			Supplier:        Name,
			Client:          o.httpClient,
			MaxElapsed:      o.maxElapsed,
			InitialInterval: o.retryWait,
			Observer:        o.observer,
			Logger:          logger.Named("deepgram"),
		},
	}, nil
}

// Transcribe asks Deepgram to fetch and transcribe recordingURL. The bundle is
// tagged with callID so the merger can match it.
func (c *Client) Transcribe(ctx context.Context, callID, recordingURL string) (*domain.TranscriptBundle, error) {
	if recordingURL == "" {
		return nil, &supplier.SupplierError{Supplier: Name, Op: "transcribe", Err: ErrMissingRecordingURL}
	}
	body, err := json.Marshal(map[string]string{"url": recordingURL})
	if err != nil {
		return nil, err
	}

	var resp listenResponse
	err = c.transport.Do(ctx, "transcribe",
		func(ctx context.Context) (*http.Request, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
			if err != nil {
				return nil, err
			}
			req.Header.Set("Authorization", "Token "+c.apiKey)
			req.Header.Set("Content-Type", "application/json")
			return req, nil
		},
		func(r io.Reader) error {
			if err := json.NewDecoder(r).Decode(&resp); err != nil {
				return fmt.Errorf("decode deepgram response: %w", err)
			}
			if len(resp.Results.Channels) == 0 || len(resp.Results.Channels[0].Alternatives) == 0 {
				return ErrNoAlternatives
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return resp.bundle(callID), nil
}
