// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ShopSage Contributors

// Package agent is the outbound client for the external analysis
// service. It owns the retry, timeout, and error-translation policy; it
// persists nothing.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/shopsage-dev/shopsage/internal/store"
	ssgerr "github.com/shopsage-dev/shopsage/pkg/errors"
)

const (
	// DefaultBaseURL is the analysis agent endpoint when none is configured.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout bounds a single outbound attempt.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the number of extra attempts after the first.
	DefaultMaxRetries = 2

	// DefaultRetryInterval is the first backoff wait; it doubles per retry.
	DefaultRetryInterval = 500 * time.Millisecond

	analyzePath = "/api/analyze"
)

// Config holds the analysis client configuration.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	MaxRetries    int
	RetryInterval time.Duration
}

// Result is the parsed analysis response plus the measured wall-clock
// processing time.
type Result struct {
	Answer           string
	Confidence       float64
	QueryUsed        string
	DataPoints       []map[string]any
	ProcessingTimeMS int64
}

// Client calls the external analysis service. The HTTP client is
// constructed once at wire-up and injected; its timeout bounds each
// attempt.
type Client struct {
	cfg    Config
	client *http.Client
}

// New creates a Client. A nil httpClient gets a fresh one with the
// configured timeout.
func New(cfg Config, httpClient *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultRetryInterval
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, client: httpClient}
}

type analyzeRequest struct {
	StoreID  string         `json:"store_id"`
	Question string         `json:"question"`
	Context  analyzeContext `json:"context"`
}

type analyzeContext struct {
	AccessToken   string            `json:"access_token"`
	APIVersion    string            `json:"api_version"`
	StoreMetadata map[string]string `json:"store_metadata"`
}

type analyzeResponse struct {
	Answer     string           `json:"answer"`
	Confidence float64          `json:"confidence"`
	QueryUsed  string           `json:"query_used"`
	DataPoints []map[string]any `json:"data_points"`
}

// Analyze sends the question to the analysis service and returns the
// parsed result. Timeouts and connection failures retry with exponential
// backoff; application-level (non-2xx) responses never retry. The
// reported processing time is measured from a single start timestamp
// taken before the first attempt, so it includes retry overhead.
func (c *Client) Analyze(ctx context.Context, q *store.Question, s *store.Store) (*Result, error) {
	if q.QuestionText == "" {
		return nil, ssgerr.New(ssgerr.CodeAgentRequestInvalid, "question text is required")
	}

	apiVersion := s.APIVersion
	if apiVersion == "" {
		apiVersion = store.DefaultAPIVersion
	}

	payload, err := json.Marshal(analyzeRequest{
		StoreID:  s.ShopDomain,
		Question: q.QuestionText,
		Context: analyzeContext{
			AccessToken:   s.AccessToken,
			APIVersion:    apiVersion,
			StoreMetadata: s.Metadata,
		},
	})
	if err != nil {
		return nil, ssgerr.Wrap(err, ssgerr.CodeAgentRequestInvalid, "marshalling analyze request")
	}

	start := time.Now()

	var lastErr error
	interval := c.cfg.RetryInterval

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(interval):
			case <-ctx.Done():
				return nil, c.translate(ctx.Err(), s.ShopDomain)
			}
			interval *= 2
		}

		result, retryable, err := c.attempt(ctx, payload)
		if err == nil {
			result.ProcessingTimeMS = time.Since(start).Milliseconds()
			return result, nil
		}

		lastErr = err
		if !retryable {
			break
		}
		slog.Warn("analysis attempt failed, retrying",
			"shop", s.ShopDomain, "attempt", attempt+1, "error", err)
	}

	return nil, c.translate(lastErr, s.ShopDomain)
}

// attempt performs one request. The second return value reports whether
// the failure class (timeout or connection failure) is retryable.
func (c *Client) attempt(ctx context.Context, payload []byte) (*Result, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+analyzePath, bytes.NewReader(payload))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, true, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Error("analysis agent returned error response",
			"status", resp.StatusCode, "body_bytes", len(body))
		return nil, false, ssgerr.Errorf(ssgerr.CodeAgentUpstreamFailure,
			"analysis agent returned status %d", resp.StatusCode)
	}

	var parsed analyzeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, false, ssgerr.Wrap(err, ssgerr.CodeAgentResponseInvalid, "parsing analysis response")
	}

	return &Result{
		Answer:     parsed.Answer,
		Confidence: parsed.Confidence,
		QueryUsed:  parsed.QueryUsed,
		DataPoints: parsed.DataPoints,
	}, false, nil
}

// translate maps a transport failure onto the caller-facing taxonomy.
// Technical detail is logged here and not carried into the returned
// message.
func (c *Client) translate(err error, shop string) error {
	if err == nil {
		return ssgerr.New(ssgerr.CodeAgentUpstreamFailure, "failed to process question with analysis agent")
	}

	code := ssgerr.CodeOf(err)
	if code == ssgerr.CodeAgentUpstreamFailure || code == ssgerr.CodeAgentResponseInvalid {
		return err
	}

	if isTimeout(err) {
		slog.Error("analysis agent timed out after all retries", "shop", shop, "error", err)
		return ssgerr.New(ssgerr.CodeAgentUpstreamTimeout, "analysis agent timeout - question too complex")
	}

	slog.Error("analysis agent unreachable", "shop", shop, "error", err)
	return ssgerr.New(ssgerr.CodeAgentUpstreamFailure, "failed to process question with analysis agent")
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
