// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromWordPressResponse_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		wpStatus   int
		wantKind   Kind
		wantStatus int
		wantRetry  bool
	}{
		{"not found", 404, KindNotFound, http.StatusNotFound, false},
		{"credential rejected", 401, KindUpstreamContent, http.StatusBadGateway, false},
		{"forbidden", 403, KindUpstreamContent, http.StatusBadGateway, false},
		{"server error", 500, KindUpstreamContent, http.StatusBadGateway, true},
		{"bad gateway upstream", 502, KindUpstreamContent, http.StatusBadGateway, true},
		{"client error", 400, KindUpstreamContent, http.StatusBadGateway, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := FromWordPressResponse(tt.wpStatus, "body")
			assert.Equal(t, tt.wantKind, e.Kind)
			assert.Equal(t, tt.wantStatus, e.StatusCode)
			assert.Equal(t, tt.wantRetry, e.Retryable)
		})
	}
}

func TestFromSupabaseError(t *testing.T) {
	e := FromSupabaseError(401, errors.New("invalid token"))
	assert.Equal(t, KindAuthentication, e.Kind)
	assert.Equal(t, http.StatusUnauthorized, e.StatusCode)

	e = FromSupabaseError(503, errors.New("down"))
	assert.Equal(t, KindUpstreamAuth, e.Kind)
	assert.Equal(t, http.StatusBadGateway, e.StatusCode)
	assert.True(t, e.Retryable)
}

func TestNormalize(t *testing.T) {
	orig := Authorization("UNAUTHORIZED_UPDATE", "not the owner")
	assert.Same(t, orig, Normalize(orig))

	wrapped := fmt.Errorf("fetching item: %w", orig)
	assert.Same(t, orig, Normalize(wrapped))

	e := Normalize(context.DeadlineExceeded)
	assert.Equal(t, KindNetwork, e.Kind)
	assert.True(t, e.Retryable)

	e = Normalize(errors.New("boom"))
	assert.Equal(t, KindInternal, e.Kind)
	assert.Equal(t, http.StatusInternalServerError, e.StatusCode)

	assert.Nil(t, Normalize(nil))
}

func TestUserMessageNeverEchoesInternalDetail(t *testing.T) {
	e := FromWordPressResponse(500, `{"message":"secret stack trace"}`)
	assert.NotContains(t, e.UserMessage, "secret")

	e = Normalize(errors.New("pq: connection string user=admin"))
	assert.NotContains(t, e.UserMessage, "admin")
}

func TestRateLimitError(t *testing.T) {
	e := RateLimit(10, time.Minute)
	assert.Equal(t, http.StatusTooManyRequests, e.StatusCode)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", e.Code)
	assert.True(t, e.Retryable)
}

func TestValidationAggregatesFields(t *testing.T) {
	e := Validation("missing fields", "title", "cptSlug")
	assert.Equal(t, []string{"title", "cptSlug"}, e.Fields)
	assert.Equal(t, http.StatusBadRequest, e.StatusCode)
}
