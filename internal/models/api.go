// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

// Package models defines the gateway's request/response envelope and
// domain types shared across handlers and upstream clients.
package models

import "time"

// APIResponse is the envelope every JSON response uses. Mutating
// operations always include Code; Errors lists per-field validation
// violations when present.
type APIResponse struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Message   string    `json:"message"`
	Code      string    `json:"code,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Errors    []string  `json:"errors,omitempty"`

	// Retryable is set on error responses whose cause is transient.
	Retryable bool `json:"retryable,omitempty"`
}

// HealthStatus is the /health response body.
type HealthStatus struct {
	Status       string                   `json:"status"`
	Timestamp    time.Time                `json:"timestamp"`
	Uptime       string                   `json:"uptime"`
	ResponseTime int64                    `json:"responseTimeMs"`
	Services     map[string]ServiceHealth `json:"services"`
	Errors       ErrorStats               `json:"errors"`
	Environment  string                   `json:"environment"`
}

// ServiceHealth reports one upstream dependency's reachability.
type ServiceHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"responseTimeMs"`
	Error        string `json:"error,omitempty"`
}

// ErrorStats summarizes the health monitor's window.
type ErrorStats struct {
	Total     int            `json:"total"`
	ByKind    map[string]int `json:"byKind"`
	Retryable int            `json:"retryable"`
	Critical  int            `json:"critical"`
	Healthy   bool           `json:"healthy"`
}
