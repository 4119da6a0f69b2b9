// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package counting

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/reactbar/internal/config"
	"github.com/tomtom215/reactbar/internal/logging"
	"github.com/tomtom215/reactbar/internal/metrics"
	"github.com/tomtom215/reactbar/internal/models"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 4 << 20

// HTTPClient talks to a counting service over JSON/HTTP.
//
// Features:
//   - per-request timeout from config (default 10s)
//   - client-side rate limiting with a token bucket
//   - automatic retry on HTTP 429 with exponential backoff and Retry-After
//
// Thread Safety: safe for concurrent use.
type HTTPClient struct {
	baseURL        string
	auth           Auth
	client         *http.Client
	limiter        *rate.Limiter
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewHTTPClient creates a client from the counting configuration.
func NewHTTPClient(cfg *config.CountingConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &HTTPClient{
		baseURL:        strings.TrimRight(cfg.URL, "/"),
		auth:           Auth{UserID: cfg.UserID, Token: cfg.AuthToken},
		client:         &http.Client{Timeout: timeout},
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c
}

// envelope mirrors models.APIResponse with a deferred data payload.
type envelope struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data"`
	Error  *models.APIError `json:"error"`
}

// Fetch implements Service.
func (c *HTTPClient) Fetch(ctx context.Context, req FetchRequest) (map[int64]models.ItemState, error) {
	start := time.Now()
	body := FetchBody{Component: req.Component, ItemType: req.ItemType, Scope: req.Scope, IDs: req.IDs}

	var data models.FetchItemsData
	err := c.post(ctx, FetchPath, &body, req.Auth, &data)
	metrics.RecordServiceCall("fetch", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	out := make(map[int64]models.ItemState, len(data.Items))
	for _, item := range data.Items {
		if item.Counts == nil {
			item.Counts = models.Snapshot{}
		}
		out[item.ID] = item
	}
	return out, nil
}

// Toggle implements Service.
func (c *HTTPClient) Toggle(ctx context.Context, req ToggleRequest) (*models.ToggleResult, error) {
	start := time.Now()
	body := ToggleBody{Component: req.Component, ItemType: req.ItemType, ItemID: req.ItemID, Category: req.Category}

	var result models.ToggleResult
	err := c.post(ctx, TogglePath, &body, req.Auth, &result)
	metrics.RecordServiceCall("toggle", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if result.ItemID == 0 {
		result.ItemID = req.ItemID
	}
	return &result, nil
}

// post sends body to path and decodes the envelope's data into out.
func (c *HTTPClient) post(ctx context.Context, path string, body interface{}, auth Auth, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	if auth == (Auth{}) {
		auth = c.auth
	}

	resp, err := c.doRequestWithRateLimit(ctx, path, payload, auth)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &ServiceError{Status: resp.StatusCode, Code: http.StatusText(resp.StatusCode)}
		if decodeErr == nil && env.Error != nil {
			se.Code = env.Error.Code
			se.Message = env.Error.Message
		}
		return se
	}
	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("decode response: empty data")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// doRequestWithRateLimit performs a POST with automatic rate limit handling.
// HTTP 429 responses are retried with exponential backoff (base, 2x, 4x...)
// unless the server sends Retry-After in seconds.
func (c *HTTPClient) doRequestWithRateLimit(ctx context.Context, path string, payload []byte, auth Auth) (*http.Response, error) {
	requestID := logging.NewRequestID()
	logger := logging.CtxWith(ctx).Str("request_id", requestID).Str("path", path).Logger()

	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limiter: %w", err)
			}
		} else if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", requestID)
		if auth.UserID != 0 {
			req.Header.Set(UserHeader, strconv.FormatInt(auth.UserID, 10))
		}
		if auth.Token != "" {
			req.Header.Set("Authorization", "Bearer "+auth.Token)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		_ = resp.Body.Close()
		if attempt >= c.maxRetries {
			return nil, &ServiceError{
				Status:  http.StatusTooManyRequests,
				Code:    "rate_limited",
				Message: fmt.Sprintf("rate limit exceeded after %d retries", c.maxRetries),
			}
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds >= 0 {
				delay = time.Duration(seconds) * time.Second
			}
		}
		metrics.RateLimitRetries.Inc()
		logger.Debug().Int("attempt", attempt+1).Dur("delay", delay).Msg("Counting service rate limited, backing off")

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}
}
