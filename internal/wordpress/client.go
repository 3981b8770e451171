// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

// Package wordpress is the client for the headless WordPress CMS.
//
// All content writes go through a cached service credential; blog-post
// flows act with the caller's own WordPress token instead. Every call
// passes a circuit breaker and an outbound rate limiter so a slow or
// failing CMS cannot take the gateway down with it.
package wordpress

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/pusaka-id/pusaka/internal/apperrors"
	"github.com/pusaka-id/pusaka/internal/config"
	"github.com/pusaka-id/pusaka/internal/logging"
	"github.com/pusaka-id/pusaka/internal/metrics"
)

const breakerName = "wordpress-api"

// upstreamResponse is the raw outcome of one CMS call.
type upstreamResponse struct {
	status int
	header http.Header
	body   []byte
}

// Client talks to the WordPress REST API.
type Client struct {
	apiBase    string
	jwtBase    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[*upstreamResponse]
	tokens     *TokenCache

	serviceUsername string
	servicePassword string
}

// NewClient builds a Client from configuration. The service credential
// is exchanged lazily on first use, not at construction.
func NewClient(cfg config.WordPressConfig) *Client {
	c := &Client{
		apiBase: trimSlash(cfg.APIURL),
		jwtBase: trimSlash(cfg.JWTAuthURL),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker:         newBreaker(),
		serviceUsername: cfg.Username,
		servicePassword: cfg.Password,
	}
	if cfg.RateLimitRPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), int(cfg.RateLimitRPS))
	}
	c.tokens = NewTokenCache(cfg.TokenTTL, c.exchangeToken)
	return c
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

// newBreaker configures the circuit breaker: opens at a 60% failure
// rate over at least 10 requests, resets counts every minute, and
// probes again two minutes after opening.
func newBreaker() *gobreaker.CircuitBreaker[*upstreamResponse] {
	return gobreaker.NewCircuitBreaker[*upstreamResponse](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().
				Str("breaker", name).
				Str("from", fromStr).
				Str("to", toStr).
				Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// request describes one CMS call for do.
type request struct {
	method    string
	base      string // apiBase unless set
	path      string
	query     url.Values
	token     string
	payload   any
	operation string // metrics label
}

// do executes one CMS call through the limiter and breaker. Transport
// failures and 5xx responses count against the breaker; 4xx responses
// are the caller's problem and pass through as successes so an
// authorization hiccup cannot trip the circuit.
func (c *Client) do(ctx context.Context, req request) (*upstreamResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, apperrors.Network(err)
		}
	}

	var body io.Reader
	if req.payload != nil {
		data, err := json.Marshal(req.payload)
		if err != nil {
			return nil, apperrors.Internal(fmt.Errorf("marshaling request body: %w", err))
		}
		body = bytes.NewReader(data)
	}

	base := req.base
	if base == "" {
		base = c.apiBase
	}
	u := base + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	start := time.Now()
	resp, err := c.breaker.Execute(func() (*upstreamResponse, error) {
		httpResp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return nil, err
		}
		defer httpResp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(httpResp.Body, 10<<20))
		if err != nil {
			return nil, err
		}

		out := &upstreamResponse{
			status: httpResp.StatusCode,
			header: httpResp.Header,
			body:   data,
		}
		if httpResp.StatusCode >= 500 {
			return out, fmt.Errorf("wordpress returned HTTP %d", httpResp.StatusCode)
		}
		return out, nil
	})
	duration := time.Since(start)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.ObserveUpstreamRequest("wordpress", req.operation, "rejected", duration)
			return nil, apperrors.Network(err).WithContext("breaker", breakerName)
		}
		metrics.ObserveUpstreamRequest("wordpress", req.operation, "failure", duration)
		if resp != nil {
			// breaker counted the 5xx; map it for the caller
			return nil, apperrors.FromWordPressResponse(resp.status, string(resp.body))
		}
		return nil, apperrors.Network(err)
	}

	metrics.ObserveUpstreamRequest("wordpress", req.operation, "success", duration)
	return resp, nil
}

// Ping checks CMS reachability for health reporting.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, request{
		method:    http.MethodGet,
		path:      "/types",
		operation: "ping",
	})
	if err != nil {
		return err
	}
	if resp.status >= 400 && resp.status != http.StatusUnauthorized {
		return apperrors.FromWordPressResponse(resp.status, string(resp.body))
	}
	return nil
}
