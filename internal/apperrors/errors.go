// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

// Package apperrors defines the gateway's error taxonomy and the
// normalization of heterogeneous upstream failures into one shape.
//
// Every failure that reaches the HTTP boundary is an *Error carrying a
// closed-set Kind, a machine-readable code, the HTTP status to respond
// with, a retryable flag and a generic user-facing message. Internal
// detail (upstream status, body, wrapped cause) stays server-side.
package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Kind classifies an error. The set is closed; handlers switch on it.
type Kind string

const (
	KindValidation      Kind = "VALIDATION_ERROR"
	KindAuthentication  Kind = "AUTHENTICATION_ERROR"
	KindAuthorization   Kind = "AUTHORIZATION_ERROR"
	KindNotFound        Kind = "NOT_FOUND_ERROR"
	KindRateLimit       Kind = "RATE_LIMIT_ERROR"
	KindUpstreamContent Kind = "WORDPRESS_API_ERROR"
	KindUpstreamAuth    Kind = "SUPABASE_ERROR"
	KindNetwork         Kind = "NETWORK_ERROR"
	KindInternal        Kind = "INTERNAL_ERROR"
)

// Error is the normalized error shape used throughout the gateway.
type Error struct {
	Kind       Kind
	Code       string
	StatusCode int
	Retryable  bool

	// Message is the internal message, logged server-side.
	Message string

	// UserMessage is what crosses the trust boundary.
	UserMessage string

	// Fields lists per-field validation violations, if any.
	Fields []string

	// Context carries structured detail for logging.
	Context map[string]any

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

// WithContext attaches a structured detail entry and returns e.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithCause attaches the underlying error and returns e.
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

// Validation builds a 400 validation error aggregating field violations.
func Validation(message string, fields ...string) *Error {
	return &Error{
		Kind:        KindValidation,
		Code:        "VALIDATION_FAILED",
		StatusCode:  http.StatusBadRequest,
		Message:     message,
		UserMessage: "Please check your input and try again.",
		Fields:      fields,
	}
}

// ValidationCode is Validation with an explicit machine code, used to
// distinguish cases like INVALID_JSON or UNSUPPORTED_CONTENT_TYPE.
func ValidationCode(code, message string, fields ...string) *Error {
	e := Validation(message, fields...)
	e.Code = code
	return e
}

// Authentication builds a 401 error.
func Authentication(code, message string) *Error {
	return &Error{
		Kind:        KindAuthentication,
		Code:        code,
		StatusCode:  http.StatusUnauthorized,
		Message:     message,
		UserMessage: "Please log in to continue.",
	}
}

// Authorization builds a 403 error. The user message is deliberately
// generic so ownership checks leak nothing about the item.
func Authorization(code, message string) *Error {
	return &Error{
		Kind:        KindAuthorization,
		Code:        code,
		StatusCode:  http.StatusForbidden,
		Message:     message,
		UserMessage: "You do not have permission to perform this action.",
	}
}

// NotFound builds a 404 error for the named resource.
func NotFound(resource, id string) *Error {
	msg := resource + " not found"
	if id != "" {
		msg = fmt.Sprintf("%s %q not found", resource, id)
	}
	return &Error{
		Kind:        KindNotFound,
		Code:        "NOT_FOUND",
		StatusCode:  http.StatusNotFound,
		Message:     msg,
		UserMessage: "The requested item could not be found.",
	}
}

// RateLimit builds a 429 error for the given action limits.
func RateLimit(limit int, window time.Duration) *Error {
	return &Error{
		Kind:        KindRateLimit,
		Code:        "RATE_LIMIT_EXCEEDED",
		StatusCode:  http.StatusTooManyRequests,
		Retryable:   true,
		Message:     fmt.Sprintf("rate limit exceeded: %d requests per %s", limit, window),
		UserMessage: "Too many requests. Please try again later.",
	}
}

// Internal builds a 500 error wrapping err.
func Internal(err error) *Error {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Kind:        KindInternal,
		Code:        "INTERNAL_ERROR",
		StatusCode:  http.StatusInternalServerError,
		Message:     msg,
		UserMessage: "An unexpected error occurred. Please try again.",
		cause:       err,
	}
}

// Network builds a retryable error for transport-level failures
// (connection refused, DNS, timeout).
func Network(err error) *Error {
	return &Error{
		Kind:        KindNetwork,
		Code:        "NETWORK_ERROR",
		StatusCode:  http.StatusBadGateway,
		Retryable:   true,
		Message:     fmt.Sprintf("upstream network failure: %v", err),
		UserMessage: "A service is temporarily unreachable. Please try again.",
		cause:       err,
	}
}

// FromWordPressResponse maps a non-2xx WordPress response to an Error.
// 404 means the item is gone; 401/403 mean the service credential was
// rejected, which is a gateway-side fault, not the caller's. 5xx is
// retryable; anything else is a non-retryable upstream content error.
func FromWordPressResponse(status int, body string) *Error {
	switch {
	case status == http.StatusNotFound:
		return NotFound("content item", "")
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return (&Error{
			Kind:        KindUpstreamContent,
			Code:        "WORDPRESS_AUTH_REJECTED",
			StatusCode:  http.StatusBadGateway,
			Message:     fmt.Sprintf("wordpress rejected service credential: HTTP %d", status),
			UserMessage: "There was an issue with the content management system. Please try again.",
		}).WithContext("wp_status", status).WithContext("wp_body", body)
	case status >= 500:
		return (&Error{
			Kind:        KindUpstreamContent,
			Code:        "WORDPRESS_API_ERROR",
			StatusCode:  http.StatusBadGateway,
			Retryable:   true,
			Message:     fmt.Sprintf("wordpress API failure: HTTP %d", status),
			UserMessage: "There was an issue with the content management system. Please try again.",
		}).WithContext("wp_status", status).WithContext("wp_body", body)
	default:
		return (&Error{
			Kind:        KindUpstreamContent,
			Code:        "WORDPRESS_API_ERROR",
			StatusCode:  http.StatusBadGateway,
			Message:     fmt.Sprintf("wordpress API error: HTTP %d", status),
			UserMessage: "There was an issue with the content management system. Please try again.",
		}).WithContext("wp_status", status).WithContext("wp_body", body)
	}
}

// FromSupabaseError maps an identity-provider failure to an Error.
// A 4xx from the provider means the caller's token or credentials were
// rejected; anything else is a retryable provider fault.
func FromSupabaseError(status int, err error) *Error {
	if status == http.StatusUnauthorized || status == http.StatusForbidden ||
		status == http.StatusBadRequest || status == http.StatusUnprocessableEntity {
		return Authentication("AUTH_INVALID_USER", fmt.Sprintf("identity provider rejected credentials: HTTP %d", status)).WithCause(err)
	}
	return (&Error{
		Kind:        KindUpstreamAuth,
		Code:        "SUPABASE_ERROR",
		StatusCode:  http.StatusBadGateway,
		Retryable:   true,
		Message:     fmt.Sprintf("identity provider failure: HTTP %d", status),
		UserMessage: "The sign-in service is temporarily unavailable. Please try again.",
		cause:       err,
	}).WithContext("supabase_status", status)
}

// Normalize converts any error into an *Error. Known *Error values pass
// through; context and transport failures become Network; everything
// else becomes Internal.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Network(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Network(err)
	}
	return Internal(err)
}
