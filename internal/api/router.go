// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pusaka-id/pusaka/internal/ratelimit"
)

// NewRouter assembles the gateway's full route tree.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(requestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(instrument)
	r.Use(corsHandler(h.cfg.Security.CORSOrigins))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(h.authIPLimit())
				r.Post("/login", h.handleLogin)
				r.Post("/register", h.handleRegister)
				r.Post("/wp-login", h.handleWPLogin)
			})
			r.Post("/logout", h.handleLogout)
			r.Post("/wp-validate", h.handleWPValidate)
			r.With(h.requireAuth).Get("/me", h.handleMe)
		})

		r.Route("/content", func(r chi.Router) {
			r.With(h.requireAuth).Get("/mine", h.handleMyContent)

			r.Route("/{slug}", func(r chi.Router) {
				r.Get("/", h.handleListContent)
				r.With(h.requireAuth, h.limit(ratelimit.ActionCreate)).Post("/", h.handleCreateContent)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.handleGetContent)
					r.With(h.requireAuth).Get("/edit", h.handleGetContentForEdit)
					r.With(h.requireAuth, h.limit(ratelimit.ActionUpdate)).Put("/", h.handleUpdateContent)
					r.With(h.requireAuth, h.limit(ratelimit.ActionDelete)).Delete("/", h.handleDeleteContent)
				})
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", h.handleListPosts)
			r.With(h.requireWPAuth, h.limitWP(ratelimit.ActionCreate)).Post("/", h.handleCreatePost)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.handleGetPost)
				r.With(h.requireWPAuth, h.limitWP(ratelimit.ActionUpdate)).Put("/", h.handleUpdatePost)
				r.With(h.requireWPAuth, h.limitWP(ratelimit.ActionDelete)).Delete("/", h.handleDeletePost)

				r.Get("/comments", h.handleListComments)
				r.With(h.requireAuth, h.limit(ratelimit.ActionComment)).Post("/comments", h.handleCreateComment)
				r.With(h.requireAuth, h.limit(ratelimit.ActionLike)).Post("/like", h.handleLikePost)
			})
		})

		r.Get("/categories", h.handleListCategories)
		r.Get("/tags", h.handleListTags)

		r.Get("/health", h.handleHealth)
		r.Get("/health/live", h.handleLiveness)

		r.With(h.requireAuth).Get("/admin/metrics", h.handleAdminMetrics)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
