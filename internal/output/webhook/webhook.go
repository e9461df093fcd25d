// Package webhook POSTs analysis reports to an HTTP endpoint as JSON.
package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/crimson-sun/sawmill/internal/httpclient"
	"github.com/crimson-sun/sawmill/internal/output"
)

const defaultTimeout = 10 * time.Second

// Option configures a webhook Output.
type Option func(*Output)

// WithHeaders sets custom HTTP headers sent with every POST.
func WithHeaders(h map[string]string) Option {
	return func(o *Output) { o.headers = h }
}

// WithTimeout sets the HTTP client timeout. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return func(o *Output) { o.timeout = d }
}

// Output POSTs each report to an HTTP endpoint as one JSON object.
// Retries on 429/5xx with backoff.
type Output struct {
	client  *httpclient.Client
	url     string
	headers map[string]string
	timeout time.Duration
}

// New creates a webhook output targeting the given URL.
func New(url string, opts ...Option) *Output {
	o := &Output{
		url:     url,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.client = httpclient.New(httpclient.WithTimeout(o.timeout))
	return o
}

// Write POSTs the report. The response body is discarded; only the
// status code matters.
func (o *Output) Write(ctx context.Context, r output.Report) error {
	if err := o.client.PostJSON(ctx, o.url, o.headers, r, nil); err != nil {
		return fmt.Errorf("webhook output: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}
