// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

// Package supabase is the client for the Supabase GoTrue auth API.
// The gateway only consumes identity: password sign-in, sign-up,
// sign-out, and resolving a bearer token to a user.
package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/pusaka-id/pusaka/internal/apperrors"
	"github.com/pusaka-id/pusaka/internal/config"
	"github.com/pusaka-id/pusaka/internal/logging"
	"github.com/pusaka-id/pusaka/internal/metrics"
	"github.com/pusaka-id/pusaka/internal/models"
)

// Client talks to the Supabase auth endpoints.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

// NewClient builds a Client from configuration.
func NewClient(cfg config.SupabaseConfig) *Client {
	base := cfg.URL
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return &Client{
		baseURL: base,
		anonKey: cfg.AnonKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Session is the outcome of a successful sign-in or sign-up.
type Session struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	ExpiresIn    int             `json:"expires_in,omitempty"`
	User         models.Identity `json:"user"`
}

func (c *Client) do(ctx context.Context, method, path, bearer string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, apperrors.Internal(err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, apperrors.Internal(err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveUpstreamRequest("supabase", path, "failure", time.Since(start))
		return 0, nil, apperrors.Network(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		metrics.ObserveUpstreamRequest("supabase", path, "failure", time.Since(start))
		return 0, nil, apperrors.Network(err)
	}

	outcome := "success"
	if resp.StatusCode >= 400 {
		outcome = "failure"
	}
	metrics.ObserveUpstreamRequest("supabase", path, outcome, time.Since(start))
	return resp.StatusCode, data, nil
}

// SignInWithPassword authenticates an email/password pair and returns
// the session, including the access token the gateway stores in the
// auth cookie.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apperrors.FromSupabaseError(status, fmt.Errorf("sign-in failed: HTTP %d", status))
	}

	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, apperrors.Internal(err)
	}
	if session.AccessToken == "" {
		return nil, apperrors.FromSupabaseError(status, fmt.Errorf("sign-in returned no access token"))
	}
	logTokenClaims(session.AccessToken)
	return &session, nil
}

// SignUp registers a new email/password user. Depending on project
// settings the session may be empty until the email is confirmed.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/auth/v1/signup", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apperrors.FromSupabaseError(status, fmt.Errorf("sign-up failed: HTTP %d", status))
	}

	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, apperrors.Internal(err)
	}
	return &session, nil
}

// SignOut revokes the caller's token server-side.
func (c *Client) SignOut(ctx context.Context, token string) error {
	status, _, err := c.do(ctx, http.MethodPost, "/auth/v1/logout", token, nil)
	if err != nil {
		return err
	}
	// GoTrue answers 204; an already-invalid token is not an error for
	// logout purposes
	if status != http.StatusNoContent && status != http.StatusOK && status != http.StatusUnauthorized {
		return apperrors.FromSupabaseError(status, fmt.Errorf("sign-out failed: HTTP %d", status))
	}
	return nil
}

// GetUser resolves a bearer token to its identity. An invalid or
// expired token yields an authentication error.
func (c *Client) GetUser(ctx context.Context, token string) (*models.Identity, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/auth/v1/user", token, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apperrors.FromSupabaseError(status, fmt.Errorf("user lookup failed: HTTP %d", status))
	}

	var identity models.Identity
	if err := json.Unmarshal(body, &identity); err != nil {
		return nil, apperrors.Internal(err)
	}
	if identity.ID == "" {
		return nil, apperrors.Authentication("AUTH_INVALID_USER", "user lookup returned no id")
	}
	return &identity, nil
}

// Ping checks provider reachability for health reporting.
func (c *Client) Ping(ctx context.Context) error {
	status, _, err := c.do(ctx, http.MethodGet, "/auth/v1/health", "", nil)
	if err != nil {
		return err
	}
	if status >= 500 {
		return apperrors.FromSupabaseError(status, fmt.Errorf("health endpoint returned HTTP %d", status))
	}
	return nil
}

// logTokenClaims parses the access token without verifying it and logs
// subject and expiry at debug level. Verification belongs to the
// provider; this is diagnostics only.
func logTokenClaims(token string) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return
	}
	sub, _ := claims.GetSubject()
	exp, err := claims.GetExpirationTime()
	event := logging.Debug().Str("sub", sub)
	if err == nil && exp != nil {
		event = event.Time("exp", exp.Time)
	}
	event.Msg("issued access token")
}
