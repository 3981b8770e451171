// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/pusaka-id/pusaka/internal/apperrors"
	"github.com/pusaka-id/pusaka/internal/logging"
	"github.com/pusaka-id/pusaka/internal/metrics"
	"github.com/pusaka-id/pusaka/internal/models"
)

// respond writes the success envelope.
func (h *Handler) respond(w http.ResponseWriter, status int, data any, message string) {
	h.writeJSON(w, status, models.APIResponse{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

// respondWithCode is respond with a machine-readable code, used by
// mutating operations (CREATE_SUCCESS and friends).
func (h *Handler) respondWithCode(w http.ResponseWriter, status int, data any, message, code string) {
	h.writeJSON(w, status, models.APIResponse{
		Success:   true,
		Data:      data,
		Message:   message,
		Code:      code,
		Timestamp: time.Now().UTC(),
	})
}

// handleError is the single error funnel: normalize, record for health,
// count, log, and answer with the generic user-facing message. Internal
// detail crosses the boundary only in development mode.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.Normalize(err)

	h.monitor.Record(appErr)
	metrics.ErrorsTotal.WithLabelValues(string(appErr.Kind)).Inc()

	event := logging.Ctx(r.Context()).Error().
		Str("kind", string(appErr.Kind)).
		Str("code", appErr.Code).
		Int("status", appErr.StatusCode).
		Str("path", r.URL.Path).
		Str("method", r.Method)
	for k, v := range appErr.Context {
		event = event.Interface(k, v)
	}
	if cause := appErr.Unwrap(); cause != nil {
		event = event.AnErr("cause", cause)
	}
	event.Msg(appErr.Message)

	message := appErr.UserMessage
	if h.cfg.IsDevelopment() {
		message = appErr.Message
	}

	h.writeJSON(w, appErr.StatusCode, models.APIResponse{
		Success:   false,
		Message:   message,
		Code:      appErr.Code,
		Timestamp: time.Now().UTC(),
		Errors:    appErr.Fields,
		Retryable: appErr.Retryable,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Err(err).Msg("writing response body")
	}
}

// decodeJSON reads a JSON request body into dst with a size cap.
func decodeJSON(r *http.Request, dst any) *apperrors.Error {
	body := http.MaxBytesReader(nil, r.Body, 1<<20)
	defer body.Close()

	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		return apperrors.ValidationCode("INVALID_JSON", "request body is not valid JSON")
	}
	return nil
}
