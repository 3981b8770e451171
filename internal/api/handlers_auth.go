// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

package api

import (
	"context"
	"net/http"

	"github.com/pusaka-id/pusaka/internal/apperrors"
	"github.com/pusaka-id/pusaka/internal/logging"
	"github.com/pusaka-id/pusaka/internal/models"
	"github.com/pusaka-id/pusaka/internal/validation"
)

// setAuthCookie stores a token in the HttpOnly session cookie.
func (h *Handler) setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.Security.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.Security.CookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   !h.cfg.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
	})
}

// clearAuthCookie expires the session cookie.
func (h *Handler) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.Security.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !h.cfg.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
	})
}

// handleLogin signs the caller in at the identity provider and stores
// the access token in the session cookie.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.EmailLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		h.handleError(w, r, err)
		return
	}

	session, err := h.identity.SignInWithPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.setAuthCookie(w, session.AccessToken)
	h.respond(w, http.StatusOK, map[string]any{
		"user": session.User,
	}, "Login successful")
}

// handleRegister creates a new identity-provider account.
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		h.handleError(w, r, err)
		return
	}

	session, err := h.identity.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	// projects with email confirmation enabled return no token yet
	if session.AccessToken != "" {
		h.setAuthCookie(w, session.AccessToken)
	}
	h.respondWithCode(w, http.StatusCreated, map[string]any{
		"user": session.User,
	}, "Registration successful", "CREATE_SUCCESS")
}

// handleLogout revokes the session server-side and clears the cookie.
// Always succeeds from the caller's perspective.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := h.extractToken(r); token != "" {
		if err := h.identity.SignOut(r.Context(), token); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("sign-out call failed")
		}
	}
	h.clearAuthCookie(w)
	h.respond(w, http.StatusOK, nil, "Logged out")
}

// handleMe returns the authenticated caller's identity.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, identityFrom(r.Context()), "OK")
}

// handleWPLogin exchanges WordPress credentials for a token and stores
// it in the same session cookie. Blog-post routes ride this token.
func (h *Handler) handleWPLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		h.handleError(w, r, err)
		return
	}

	token, err := h.content.LoginUser(r.Context(), req.Username, req.Password)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	user, err := h.content.CurrentUser(r.Context(), token)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.setAuthCookie(w, token)
	h.respond(w, http.StatusOK, map[string]any{
		"user": user,
	}, "Login successful")
}

// handleWPValidate checks whether the caller's WordPress token is still
// accepted, without loading the profile. Clients poll this to decide
// when to re-login.
func (h *Handler) handleWPValidate(w http.ResponseWriter, r *http.Request) {
	token := h.extractToken(r)
	if token == "" {
		h.handleError(w, r, apperrors.Authentication("AUTH_MISSING_TOKEN", "no bearer token or auth cookie"))
		return
	}
	if err := h.content.ValidateUserToken(r.Context(), token); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, map[string]bool{"valid": true}, "Token is valid")
}

// wpUserFrom returns the WordPress profile placed by requireWPAuth.
func wpUserFrom(ctx context.Context) *models.WPUser {
	u, _ := ctx.Value(wpUserKey).(*models.WPUser)
	return u
}

// requireWPAuth resolves the caller's token against WordPress instead
// of the identity provider. Blog-post routes use this because the
// caller acts as their own WordPress account there.
func (h *Handler) requireWPAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.extractToken(r)
		if token == "" {
			h.handleError(w, r, apperrors.Authentication("AUTH_MISSING_TOKEN", "no bearer token or auth cookie"))
			return
		}

		user, err := h.content.CurrentUser(r.Context(), token)
		if err != nil {
			h.handleError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), wpUserKey, user)
		ctx = context.WithValue(ctx, tokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
