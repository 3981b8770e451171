// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

// Package health tracks recent gateway errors in a bounded in-memory
// ring and derives an overall health verdict from the last hour.
package health

import (
	"sync"
	"time"

	"github.com/pusaka-id/pusaka/internal/apperrors"
	"github.com/pusaka-id/pusaka/internal/models"
)

// maxRecords bounds the ring. Once full, the oldest record is dropped.
const maxRecords = 1000

// statsWindow is the sliding window the health verdict looks at.
const statsWindow = time.Hour

// Thresholds for the health verdict over the stats window.
const (
	criticalThreshold = 10
	totalThreshold    = 100
)

type record struct {
	at        time.Time
	kind      apperrors.Kind
	code      string
	retryable bool
}

// Monitor records normalized errors and reports aggregate health.
// All methods are safe for concurrent use.
type Monitor struct {
	mu      sync.Mutex
	records []record
	next    int
	full    bool
	started time.Time

	now func() time.Time
}

// NewMonitor returns an empty monitor.
func NewMonitor() *Monitor {
	return &Monitor{
		records: make([]record, maxRecords),
		started: time.Now(),
		now:     time.Now,
	}
}

// Record stores one error occurrence. Nil errors are ignored.
func (m *Monitor) Record(err *apperrors.Error) {
	if err == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[m.next] = record{
		at:        m.now(),
		kind:      err.Kind,
		code:      err.Code,
		retryable: err.Retryable,
	}
	m.next++
	if m.next == maxRecords {
		m.next = 0
		m.full = true
	}
}

// isCritical reports whether a kind indicates a gateway or upstream
// fault rather than a caller mistake. Validation, auth and rate-limit
// errors are business as usual and never degrade health.
func isCritical(kind apperrors.Kind) bool {
	switch kind {
	case apperrors.KindInternal, apperrors.KindNetwork,
		apperrors.KindUpstreamContent, apperrors.KindUpstreamAuth:
		return true
	default:
		return false
	}
}

// Stats summarizes errors recorded within the last hour. Healthy means
// fewer than 10 critical errors and fewer than 100 errors in total.
func (m *Monitor) Stats() models.ErrorStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-statsWindow)
	stats := models.ErrorStats{ByKind: make(map[string]int)}

	n := m.next
	if m.full {
		n = maxRecords
	}
	for i := 0; i < n; i++ {
		r := m.records[i]
		if r.at.Before(cutoff) {
			continue
		}
		stats.Total++
		stats.ByKind[string(r.kind)]++
		if r.retryable {
			stats.Retryable++
		}
		if isCritical(r.kind) {
			stats.Critical++
		}
	}

	stats.Healthy = stats.Critical < criticalThreshold && stats.Total < totalThreshold
	return stats
}

// Uptime returns how long the monitor (and so the process) has been up.
func (m *Monitor) Uptime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now().Sub(m.started)
}
