// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pusaka-id/pusaka/internal/apperrors"
	"github.com/pusaka-id/pusaka/internal/models"
	"github.com/pusaka-id/pusaka/internal/validation"
)

func postID(r *http.Request) (int, *apperrors.Error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, apperrors.Validation("post id must be a positive integer", "id")
	}
	return id, nil
}

// handleListPosts lists published blog posts, forwarding the caller's
// filter and sort parameters.
func (h *Handler) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, total, totalPages, err := h.content.ListPosts(r.Context(), listOptions(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if total != "" {
		w.Header().Set("X-WP-Total", total)
	}
	if totalPages != "" {
		w.Header().Set("X-WP-TotalPages", totalPages)
	}
	h.respond(w, http.StatusOK, posts, "OK")
}

// handleGetPost reads one blog post.
func (h *Handler) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, appErr := postID(r)
	if appErr != nil {
		h.handleError(w, r, appErr)
		return
	}
	post, err := h.content.GetPost(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, post, "OK")
}

// applyRoleRestrictions clamps a post request to what the caller's
// role permits. Contributors cannot publish, cannot assign categories,
// and cannot create new tags.
func applyRoleRestrictions(req *models.PostRequest, user *models.WPUser) (status string, categories []int, createTags bool) {
	status = req.Status
	categories = req.Categories
	createTags = true

	if user.IsContributor() {
		status = models.StatusDraft
		categories = nil
		createTags = false
	} else if status == "" {
		status = models.StatusDraft
	}
	return status, categories, createTags
}

// handleCreatePost writes a blog post with the caller's own token.
func (h *Handler) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req models.PostRequest
	if err := decodeJSON(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	req.Title = validation.SanitizeString(req.Title)
	if err := validation.ValidateStruct(&req); err != nil {
		h.handleError(w, r, err)
		return
	}

	user := wpUserFrom(r.Context())
	token := tokenFrom(r.Context())
	status, categories, createTags := applyRoleRestrictions(&req, user)

	tags, err := h.content.ResolveTags(r.Context(), token, req.Tags, createTags)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	post, err := h.content.CreatePost(r.Context(), token, req.Title, req.Content, req.Excerpt, status, categories, tags)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondWithCode(w, http.StatusCreated, post, "Post created", "CREATE_SUCCESS")
}

// handleUpdatePost rewrites a blog post. WordPress enforces post
// ownership for user tokens, so a foreign post comes back as a 401/403
// from the CMS.
func (h *Handler) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	id, appErr := postID(r)
	if appErr != nil {
		h.handleError(w, r, appErr)
		return
	}

	var req models.PostRequest
	if err := decodeJSON(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	req.Title = validation.SanitizeString(req.Title)
	if err := validation.ValidateStruct(&req); err != nil {
		h.handleError(w, r, err)
		return
	}

	user := wpUserFrom(r.Context())
	token := tokenFrom(r.Context())
	status, categories, createTags := applyRoleRestrictions(&req, user)

	tags, err := h.content.ResolveTags(r.Context(), token, req.Tags, createTags)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	post, err := h.content.UpdatePost(r.Context(), token, id, req.Title, req.Content, req.Excerpt, status, categories, tags)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondWithCode(w, http.StatusOK, post, "Post updated", "UPDATE_SUCCESS")
}

// handleDeletePost removes a blog post.
func (h *Handler) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, appErr := postID(r)
	if appErr != nil {
		h.handleError(w, r, appErr)
		return
	}
	if err := h.content.DeletePost(r.Context(), tokenFrom(r.Context()), id, false); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondWithCode(w, http.StatusOK, map[string]int{"id": id}, "Post deleted", "DELETE_SUCCESS")
}

// handleListComments lists a post's comments.
func (h *Handler) handleListComments(w http.ResponseWriter, r *http.Request) {
	id, appErr := postID(r)
	if appErr != nil {
		h.handleError(w, r, appErr)
		return
	}
	comments, err := h.content.ListComments(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, comments, "OK")
}

// handleCreateComment posts a comment as the authenticated caller.
func (h *Handler) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	id, appErr := postID(r)
	if appErr != nil {
		h.handleError(w, r, appErr)
		return
	}

	var req models.CommentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	req.Content = validation.SanitizeString(req.Content)
	req.Author = validation.SanitizeString(req.Author)
	if err := validation.ValidateStruct(&req); err != nil {
		h.handleError(w, r, err)
		return
	}

	author := req.Author
	if author == "" {
		if identity := identityFrom(r.Context()); identity != nil {
			author = identity.Email
		}
	}

	comment, err := h.content.CreateComment(r.Context(), id, author, req.Content)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondWithCode(w, http.StatusCreated, comment, "Comment created", "CREATE_SUCCESS")
}

// handleLikePost toggles the caller's like on a post.
func (h *Handler) handleLikePost(w http.ResponseWriter, r *http.Request) {
	id, appErr := postID(r)
	if appErr != nil {
		h.handleError(w, r, appErr)
		return
	}

	identity := identityFrom(r.Context())
	result, err := h.content.ToggleLike(r.Context(), id, identity.ID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, result, "OK")
}

// handleListCategories lists the category terms.
func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	terms, err := h.content.ListCategories(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, terms, "OK")
}

// handleListTags lists the tag terms.
func (h *Handler) handleListTags(w http.ResponseWriter, r *http.Request) {
	terms, err := h.content.ListTags(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, terms, "OK")
}
