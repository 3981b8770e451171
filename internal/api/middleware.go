// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"

	"github.com/pusaka-id/pusaka/internal/apperrors"
	"github.com/pusaka-id/pusaka/internal/logging"
	"github.com/pusaka-id/pusaka/internal/metrics"
	"github.com/pusaka-id/pusaka/internal/models"
	"github.com/pusaka-id/pusaka/internal/ratelimit"
)

type ctxKey int

const (
	identityKey ctxKey = iota
	tokenKey
	wpUserKey
)

// identityFrom returns the authenticated identity placed by
// requireAuth, or nil.
func identityFrom(ctx context.Context) *models.Identity {
	id, _ := ctx.Value(identityKey).(*models.Identity)
	return id
}

// tokenFrom returns the caller's raw bearer token placed by
// requireAuth or extractToken.
func tokenFrom(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey).(string)
	return t
}

// requestID tags every request with a UUID for log correlation.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logging.ContextWithRequestID(r.Context(), id)))
	})
}

// instrument records request metrics and an access log line.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		duration := time.Since(start)

		route := r.URL.Path
		metrics.ObserveHTTPRequest(r.Method, route, ww.Status(), duration)
		logging.Ctx(r.Context()).Info().
			Str("method", r.Method).
			Str("path", route).
			Int("status", ww.Status()).
			Dur("duration", duration).
			Int("bytes", ww.BytesWritten()).
			Msg("request")
	})
}

// corsHandler builds the CORS middleware from configured origins.
func corsHandler(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-WP-Total", "X-WP-TotalPages", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           86400,
	})
}

// authIPLimit is the coarse per-IP limiter on auth routes, applied
// before credentials are even read.
func (h *Handler) authIPLimit() func(http.Handler) http.Handler {
	if h.cfg.Security.RateLimitDisabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		h.cfg.Security.AuthIPLimit,
		h.cfg.Security.AuthIPWindow,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.RateLimitDenials.WithLabelValues(string(ratelimit.ActionAuth)).Inc()
			h.handleError(w, r, apperrors.RateLimit(h.cfg.Security.AuthIPLimit, h.cfg.Security.AuthIPWindow))
		}),
	)
}

// extractToken pulls the caller token from the Authorization header or
// the auth cookie. Empty means unauthenticated.
func (h *Handler) extractToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(h.cfg.Security.CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// requireAuth resolves the caller's token to an identity before the
// handler runs. A missing token fails immediately without touching any
// upstream; an invalid one fails after one identity-provider call.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.extractToken(r)
		if token == "" {
			h.handleError(w, r, apperrors.Authentication("AUTH_MISSING_TOKEN", "no bearer token or auth cookie"))
			return
		}

		identity, err := h.identity.GetUser(r.Context(), token)
		if err != nil {
			h.handleError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		ctx = context.WithValue(ctx, tokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// limit enforces the per-identity budget for one action class. Must
// run inside requireAuth.
func (h *Handler) limit(action ratelimit.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := identityFrom(r.Context())
			if identity == nil {
				h.handleError(w, r, apperrors.Authentication("AUTH_MISSING_TOKEN", "rate limit check without identity"))
				return
			}
			h.allowOrDeny(w, r, next, identity.ID, action)
		})
	}
}

// limitWP is limit for the blog-post routes, keyed by the WordPress
// account. Must run inside requireWPAuth.
func (h *Handler) limitWP(action ratelimit.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := wpUserFrom(r.Context())
			if user == nil {
				h.handleError(w, r, apperrors.Authentication("AUTH_MISSING_TOKEN", "rate limit check without identity"))
				return
			}
			h.allowOrDeny(w, r, next, "wp:"+strconv.Itoa(user.ID), action)
		})
	}
}

func (h *Handler) allowOrDeny(w http.ResponseWriter, r *http.Request, next http.Handler, key string, action ratelimit.Action) {
	if err := h.limiter.Allow(key, action); err != nil {
		metrics.RateLimitDenials.WithLabelValues(string(action)).Inc()
		h.handleError(w, r, err)
		return
	}
	next.ServeHTTP(w, r)
}
