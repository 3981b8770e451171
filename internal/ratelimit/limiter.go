// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

// Package ratelimit implements a sliding-window rate limiter keyed by
// (identity, action). Write-heavy actions get tighter budgets than
// reads, and the auth action uses a long window to slow brute force.
package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/pusaka-id/pusaka/internal/apperrors"
)

// Action names a rate-limited operation class.
type Action string

const (
	ActionDefault Action = "default"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionAuth    Action = "auth"
	ActionComment Action = "comment"
	ActionLike    Action = "like"
)

// Rule is one action's budget: at most Limit requests per Window.
type Rule struct {
	Limit  int
	Window time.Duration
}

// DefaultRules returns the per-action budgets.
func DefaultRules() map[Action]Rule {
	return map[Action]Rule{
		ActionDefault: {Limit: 60, Window: time.Minute},
		ActionCreate:  {Limit: 10, Window: time.Minute},
		ActionUpdate:  {Limit: 20, Window: time.Minute},
		ActionDelete:  {Limit: 5, Window: time.Minute},
		ActionAuth:    {Limit: 5, Window: 5 * time.Minute},
		ActionComment: {Limit: 20, Window: time.Minute},
		ActionLike:    {Limit: 60, Window: time.Minute},
	}
}

// cleanupInterval is how often stale buckets are swept.
const cleanupInterval = 5 * time.Minute

// Limiter tracks request timestamps per (identity, action) bucket.
// All methods are safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	rules   map[Action]Rule
	buckets map[string][]time.Time

	disabled bool
	stop     chan struct{}
	stopOnce sync.Once

	now func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithRules replaces the default per-action budgets.
func WithRules(rules map[Action]Rule) Option {
	return func(l *Limiter) { l.rules = rules }
}

// Disabled turns the limiter into a no-op that allows everything.
func Disabled() Option {
	return func(l *Limiter) { l.disabled = true }
}

// NewLimiter returns a running limiter. Call Stop to release the
// background sweeper.
func NewLimiter(opts ...Option) *Limiter {
	l := &Limiter{
		rules:   DefaultRules(),
		buckets: make(map[string][]time.Time),
		stop:    make(chan struct{}),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	go l.sweep()
	return l
}

// Allow records one request for the identity and action, returning a
// rate-limit error when the budget is exhausted. Denied requests do not
// consume budget. Unknown actions fall back to the default rule.
func (l *Limiter) Allow(identity string, action Action) error {
	if l.disabled {
		return nil
	}
	rule, ok := l.rules[action]
	if !ok {
		rule = l.rules[ActionDefault]
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := fmt.Sprintf("%s:%s", identity, action)
	now := l.now()
	cutoff := now.Add(-rule.Window)

	kept := l.buckets[key][:0]
	for _, ts := range l.buckets[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= rule.Limit {
		l.buckets[key] = kept
		return apperrors.RateLimit(rule.Limit, rule.Window).
			WithContext("action", string(action))
	}

	l.buckets[key] = append(kept, now)
	return nil
}

// Remaining reports how many requests the bucket has left.
func (l *Limiter) Remaining(identity string, action Action) int {
	if l.disabled {
		return int(^uint(0) >> 1)
	}
	rule, ok := l.rules[action]
	if !ok {
		rule = l.rules[ActionDefault]
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := fmt.Sprintf("%s:%s", identity, action)
	cutoff := l.now().Add(-rule.Window)
	active := 0
	for _, ts := range l.buckets[key] {
		if ts.After(cutoff) {
			active++
		}
	}
	if active >= rule.Limit {
		return 0
	}
	return rule.Limit - active
}

// Stop terminates the background sweeper. Idempotent.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Limiter) sweep() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.evictStale()
		}
	}
}

// evictStale drops buckets whose every timestamp is older than the
// longest configured window, keeping memory bounded by active callers.
func (l *Limiter) evictStale() {
	l.mu.Lock()
	defer l.mu.Unlock()

	var maxWindow time.Duration
	for _, rule := range l.rules {
		if rule.Window > maxWindow {
			maxWindow = rule.Window
		}
	}
	cutoff := l.now().Add(-maxWindow)

	for key, stamps := range l.buckets {
		stale := true
		for _, ts := range stamps {
			if ts.After(cutoff) {
				stale = false
				break
			}
		}
		if stale {
			delete(l.buckets, key)
		}
	}
}
