// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

package ratelimit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pusaka-id/pusaka/internal/apperrors"
)

func newTestLimiter(t *testing.T, opts ...Option) *Limiter {
	t.Helper()
	l := NewLimiter(opts...)
	t.Cleanup(l.Stop)
	return l
}

func TestAllowUpToLimit(t *testing.T) {
	l := newTestLimiter(t)

	for i := 0; i < 10; i++ {
		require.NoError(t, l.Allow("user-1", ActionCreate), "request %d", i)
	}

	err := l.Allow("user-1", ActionCreate)
	require.Error(t, err)
	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.KindRateLimit, appErr.Kind)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", appErr.Code)
}

func TestBucketsAreIndependentPerIdentity(t *testing.T) {
	l := newTestLimiter(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Allow("user-1", ActionDelete))
	}
	assert.Error(t, l.Allow("user-1", ActionDelete))

	// a different caller is unaffected
	assert.NoError(t, l.Allow("user-2", ActionDelete))
}

func TestBucketsAreIndependentPerAction(t *testing.T) {
	l := newTestLimiter(t)

	for i := 0; i < 10; i++ {
		require.NoError(t, l.Allow("user-1", ActionCreate))
	}
	assert.Error(t, l.Allow("user-1", ActionCreate))
	assert.NoError(t, l.Allow("user-1", ActionUpdate))
}

func TestWindowSlides(t *testing.T) {
	l := newTestLimiter(t)
	clock := time.Now()
	l.now = func() time.Time { return clock }

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Allow("user-1", ActionDelete))
	}
	assert.Error(t, l.Allow("user-1", ActionDelete))

	clock = clock.Add(61 * time.Second)
	assert.NoError(t, l.Allow("user-1", ActionDelete))
}

func TestDeniedRequestsDoNotConsumeBudget(t *testing.T) {
	l := newTestLimiter(t)
	clock := time.Now()
	l.now = func() time.Time { return clock }

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Allow("user-1", ActionDelete))
	}
	for i := 0; i < 20; i++ {
		assert.Error(t, l.Allow("user-1", ActionDelete))
	}

	// once the original 5 age out the caller gets its full budget back
	clock = clock.Add(61 * time.Second)
	for i := 0; i < 5; i++ {
		assert.NoError(t, l.Allow("user-1", ActionDelete))
	}
}

func TestUnknownActionUsesDefaultRule(t *testing.T) {
	l := newTestLimiter(t)

	for i := 0; i < 60; i++ {
		require.NoError(t, l.Allow("user-1", Action("browse")))
	}
	assert.Error(t, l.Allow("user-1", Action("browse")))
}

func TestAuthActionUsesLongWindow(t *testing.T) {
	l := newTestLimiter(t)
	clock := time.Now()
	l.now = func() time.Time { return clock }

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Allow("203.0.113.7", ActionAuth))
	}
	assert.Error(t, l.Allow("203.0.113.7", ActionAuth))

	// one minute is not enough for the auth window
	clock = clock.Add(time.Minute)
	assert.Error(t, l.Allow("203.0.113.7", ActionAuth))

	clock = clock.Add(5 * time.Minute)
	assert.NoError(t, l.Allow("203.0.113.7", ActionAuth))
}

func TestRemaining(t *testing.T) {
	l := newTestLimiter(t)

	assert.Equal(t, 10, l.Remaining("user-1", ActionCreate))
	require.NoError(t, l.Allow("user-1", ActionCreate))
	assert.Equal(t, 9, l.Remaining("user-1", ActionCreate))
}

func TestDisabledAllowsEverything(t *testing.T) {
	l := newTestLimiter(t, Disabled())

	for i := 0; i < 1000; i++ {
		require.NoError(t, l.Allow("user-1", ActionDelete))
	}
}

func TestEvictStaleDropsIdleBuckets(t *testing.T) {
	l := newTestLimiter(t)
	clock := time.Now()
	l.now = func() time.Time { return clock }

	require.NoError(t, l.Allow("user-1", ActionCreate))
	clock = clock.Add(10 * time.Minute)
	l.evictStale()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.buckets)
}
