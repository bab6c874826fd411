// Package platform talks to the account platform that owns users, the
// service catalog and billable orders. Every call is a single attempt
// bounded by the configured timeout and the caller's context.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/robark/destiny-matrix/internal/api/metrics"
)

const (
	userPath    = "/api/user"
	catalogPath = "/api/service/details"
	orderPath   = "/api/order/create"

	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Config captures the settings for reaching the platform.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient is shared by all calls. A pooled client is built when nil.
	HTTPClient *http.Client
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a platform client. A default timeout is applied when none
// is provided.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = NewHTTPClient()
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		timeout: timeout,
		http:    hc,
		log:     log.With().Str("component", "platform").Logger(),
	}
}

// NewHTTPClient returns an http.Client with its own keep-alive pool, meant to
// be shared for the lifetime of the process.
func NewHTTPClient() *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.MaxIdleConns = 100
	tr.MaxIdleConnsPerHost = 20
	tr.IdleConnTimeout = 90 * time.Second
	return &http.Client{Transport: tr}
}

type response struct {
	status int
	body   []byte
}

// do performs one request. A non-nil error means no usable HTTP response.
func (c *Client) do(ctx context.Context, method, path, token string, payload any) (*response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Msg("platform call")

	return &response{status: resp.StatusCode, body: data}, nil
}

func observe(target string, start time.Time, outcome *string) {
	metrics.RemoteCallDuration.WithLabelValues(target, *outcome).Observe(time.Since(start).Seconds())
}
