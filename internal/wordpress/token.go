// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

package wordpress

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"

	"github.com/pusaka-id/pusaka/internal/apperrors"
	"github.com/pusaka-id/pusaka/internal/logging"
	"github.com/pusaka-id/pusaka/internal/metrics"
)

// exchangeFunc performs one credential exchange and returns the token.
type exchangeFunc func(ctx context.Context) (string, error)

// TokenCache holds the process-wide service credential. The token is
// exchanged lazily and reused until its conservative expiry. Concurrent
// callers share a single in-flight exchange instead of each hammering
// the issuer.
type TokenCache struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time

	ttl      time.Duration
	exchange exchangeFunc

	// inflight is non-nil while an exchange is running; waiters block
	// on its done channel and read the shared outcome.
	inflight *exchangeResult

	now func() time.Time
}

type exchangeResult struct {
	done  chan struct{}
	token string
	err   error
}

// NewTokenCache returns an empty cache. ttl should be set below the
// issuer's stated token lifetime.
func NewTokenCache(ttl time.Duration, exchange exchangeFunc) *TokenCache {
	return &TokenCache{
		ttl:      ttl,
		exchange: exchange,
		now:      time.Now,
	}
}

// Token returns the cached service token, exchanging credentials first
// when the cache is empty or expired. Exchange failures are returned
// as-is and nothing is cached; the next caller triggers a fresh
// exchange.
func (tc *TokenCache) Token(ctx context.Context) (string, error) {
	tc.mu.Lock()
	if tc.token != "" && tc.now().Before(tc.expiresAt) {
		token := tc.token
		tc.mu.Unlock()
		metrics.TokenCacheHits.Inc()
		return token, nil
	}

	if tc.inflight != nil {
		res := tc.inflight
		tc.mu.Unlock()
		select {
		case <-res.done:
			return res.token, res.err
		case <-ctx.Done():
			return "", apperrors.Network(ctx.Err())
		}
	}

	res := &exchangeResult{done: make(chan struct{})}
	tc.inflight = res
	tc.mu.Unlock()

	token, err := tc.exchange(ctx)

	tc.mu.Lock()
	tc.inflight = nil
	var expiresAt time.Time
	if err == nil {
		tc.token = token
		tc.expiresAt = tc.now().Add(tc.ttl)
		expiresAt = tc.expiresAt
	}
	tc.mu.Unlock()

	res.token = token
	res.err = err
	close(res.done)

	if err != nil {
		metrics.TokenRefreshes.WithLabelValues("failure").Inc()
		return "", err
	}
	metrics.TokenRefreshes.WithLabelValues("success").Inc()
	logging.Debug().Time("expires_at", expiresAt).Msg("service token refreshed")
	return token, nil
}

// Invalidate drops the cached token so the next caller re-exchanges.
// Used when the CMS rejects a token before its expected expiry.
func (tc *TokenCache) Invalidate() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.token = ""
	tc.expiresAt = time.Time{}
}

// exchangeToken trades the configured service-account credentials for a
// bearer token at the JWT auth endpoint. Transient failures are retried
// up to three attempts with exponential backoff; a rejected credential
// is permanent and fails immediately.
func (c *Client) exchangeToken(ctx context.Context) (string, error) {
	var token string
	operation := func() error {
		var err error
		token, err = c.requestToken(ctx)
		if err == nil {
			return nil
		}
		if apperrors.Normalize(err).Retryable {
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(newExchangeBackoff(), 2), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", err
	}
	return token, nil
}

func newExchangeBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	return b
}

func (c *Client) requestToken(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, request{
		method: http.MethodPost,
		base:   c.jwtBase,
		path:   "/token",
		payload: map[string]string{
			"username": c.serviceUsername,
			"password": c.servicePassword,
		},
		operation: "token_exchange",
	})
	if err != nil {
		return "", err
	}
	if resp.status != http.StatusOK {
		return "", apperrors.FromWordPressResponse(resp.status, string(resp.body))
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.body, &body); err != nil {
		return "", apperrors.Internal(err)
	}
	if body.Token == "" {
		return "", apperrors.FromWordPressResponse(resp.status, "token endpoint returned empty token")
	}
	return body.Token, nil
}
