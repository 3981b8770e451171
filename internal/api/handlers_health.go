// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/pusaka-id/pusaka/internal/models"
)

// upstreamCheckTimeout bounds each dependency probe so a hung upstream
// cannot stall the health endpoint.
const upstreamCheckTimeout = 5 * time.Second

// handleHealth reports overall gateway health: upstream reachability
// plus the error monitor's verdict. Unhealthy answers 503 so load
// balancers rotate the instance out.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	services := make(map[string]models.ServiceHealth, 2)
	var mu sync.Mutex
	var wg sync.WaitGroup

	checks := map[string]func(context.Context) error{
		"wordpress": h.content.Ping,
		"supabase":  h.identity.Ping,
	}
	for name, ping := range checks {
		wg.Add(1)
		go func(name string, ping func(context.Context) error) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(r.Context(), upstreamCheckTimeout)
			defer cancel()

			probeStart := time.Now()
			err := ping(ctx)
			sh := models.ServiceHealth{
				Status:       "up",
				ResponseTime: time.Since(probeStart).Milliseconds(),
			}
			if err != nil {
				sh.Status = "down"
				sh.Error = "unreachable"
			}
			mu.Lock()
			services[name] = sh
			mu.Unlock()
		}(name, ping)
	}
	wg.Wait()

	stats := h.monitor.Stats()
	healthy := stats.Healthy
	for _, sh := range services {
		if sh.Status != "up" {
			healthy = false
		}
	}

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	h.writeJSON(w, code, models.HealthStatus{
		Status:       status,
		Timestamp:    time.Now().UTC(),
		Uptime:       h.monitor.Uptime().Round(time.Second).String(),
		ResponseTime: time.Since(start).Milliseconds(),
		Services:     services,
		Errors:       stats,
		Environment:  h.cfg.Server.Environment,
	})
}

// handleLiveness is the bare process-up probe. No upstream calls.
func (h *Handler) handleLiveness(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, map[string]string{
		"status": "alive",
		"uptime": h.monitor.Uptime().Round(time.Second).String(),
	}, "OK")
}

// handleAdminMetrics reports the error monitor's window for operators.
// Authenticated; callers see aggregate counts only, never error detail.
func (h *Handler) handleAdminMetrics(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, map[string]any{
		"errors":      h.monitor.Stats(),
		"uptime":      h.monitor.Uptime().Round(time.Second).String(),
		"environment": h.cfg.Server.Environment,
	}, "OK")
}
