// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/pusaka-id/pusaka/internal/apperrors"
	"github.com/pusaka-id/pusaka/internal/models"
	"github.com/pusaka-id/pusaka/internal/translate"
	"github.com/pusaka-id/pusaka/internal/validation"
	"github.com/pusaka-id/pusaka/internal/wordpress"
)

// reservedBodyKeys are submission body keys that are not custom fields.
var reservedBodyKeys = map[string]bool{
	"title":   true,
	"status":  true,
	"cptSlug": true,
	"postId":  true,
}

// decodeSubmission splits a submission body into title and the
// free-form field bag. Client-supplied status is read but the content
// state machine decides whether it is honored.
func decodeSubmission(r *http.Request) (title, status string, fields map[string]string, appErr *apperrors.Error) {
	var body map[string]json.RawMessage
	if err := decodeJSON(r, &body); err != nil {
		return "", "", nil, err
	}

	fields = make(map[string]string, len(body))
	for key, raw := range body {
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			// non-string values in the field bag are ignored rather
			// than rejected; the CMS only stores strings here
			continue
		}
		switch key {
		case "title":
			title = value
		case "status":
			status = value
		default:
			if !reservedBodyKeys[key] {
				fields[key] = value
			}
		}
	}
	return title, status, fields, nil
}

func contentSlug(r *http.Request) (string, *apperrors.Error) {
	slug := chi.URLParam(r, "slug")
	if !validation.IsContentType(slug) {
		return "", apperrors.ValidationCode("UNSUPPORTED_CONTENT_TYPE", "unsupported content type "+strconv.Quote(slug), "cptSlug")
	}
	return slug, nil
}

func contentID(r *http.Request) (int, *apperrors.Error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, apperrors.Validation("item id must be a positive integer", "id")
	}
	return id, nil
}

// listOptions reads the caller's pagination, filter and sort parameters
// so they pass through to the CMS.
func listOptions(r *http.Request) wordpress.ListOptions {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage > 100 {
		perPage = 100
	}

	embed := q.Get("_embed")
	if embed == "" && q.Has("_embed") {
		embed = "1"
	}

	return wordpress.ListOptions{
		Page:    page,
		PerPage: perPage,
		Search:  q.Get("search"),
		OrderBy: q.Get("orderby"),
		Order:   q.Get("order"),
		Fields:  q.Get("_fields"),
		Embed:   embed,
	}
}

// handleListContent lists published items of one content type. The
// upstream pagination headers are re-exposed verbatim.
func (h *Handler) handleListContent(w http.ResponseWriter, r *http.Request) {
	slug, appErr := contentSlug(r)
	if appErr != nil {
		h.handleError(w, r, appErr)
		return
	}

	result, err := h.content.ListItems(r.Context(), slug, listOptions(r))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if result.Total != "" {
		w.Header().Set("X-WP-Total", result.Total)
	}
	if result.TotalPages != "" {
		w.Header().Set("X-WP-TotalPages", result.TotalPages)
	}
	h.respond(w, http.StatusOK, result.Items, "OK")
}

// handleGetContent reads one item.
func (h *Handler) handleGetContent(w http.ResponseWriter, r *http.Request) {
	slug, appErr := contentSlug(r)
	if appErr != nil {
		h.handleError(w, r, appErr)
		return
	}
	id, appErr := contentID(r)
	if appErr != nil {
		h.handleError(w, r, appErr)
		return
	}

	item, err := h.content.GetItem(r.Context(), slug, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	// the service credential sees every status; the public read must not
	if item.Status != models.StatusPublished {
		h.handleError(w, r, apperrors.NotFound("content item", strconv.Itoa(id)))
		return
	}
	h.respond(w, http.StatusOK, item, "OK")
}

// handleGetContentForEdit reads one item for its owner, custom fields
// included. Foreign callers get a 403 with no item detail.
func (h *Handler) handleGetContentForEdit(w http.ResponseWriter, r *http.Request) {
	slug, appErr := contentSlug(r)
	if appErr != nil {
		h.handleError(w, r, appErr)
		return
	}
	id, appErr := contentID(r)
	if appErr != nil {
		h.handleError(w, r, appErr)
		return
	}

	item, err := h.fetchOwned(r, slug, id, "UNAUTHORIZED_UPDATE")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, item, "OK")
}

// fetchOwned loads an item and enforces that the caller owns it. The
// not-found case wins over the ownership case so probing callers learn
// nothing from the distinction.
func (h *Handler) fetchOwned(r *http.Request, slug string, id int, denialCode string) (*models.ContentItem, error) {
	item, err := h.content.GetItem(r.Context(), slug, id)
	if err != nil {
		return nil, err
	}

	identity := identityFrom(r.Context())
	if item.OwnerID == "" || item.OwnerID != identity.ID {
		return nil, apperrors.Authorization(denialCode, "item belongs to a different identity").
			WithContext("item_id", id).
			WithContext("owner", item.OwnerID)
	}
	return item, nil
}

// handleCreateContent submits a new item. Status is always forced to
// pending regardless of what the client sent; the owner identity is
// injected into the upstream fields and cannot be spoofed.
func (h *Handler) handleCreateContent(w http.ResponseWriter, r *http.Request) {
	slug, appErr := contentSlug(r)
	if appErr != nil {
		h.handleError(w, r, appErr)
		return
	}

	title, _, fields, appErr := decodeSubmission(r)
	if appErr != nil {
		h.handleError(w, r, appErr)
		return
	}

	title, fields, appErr = validation.ValidateContent(slug, title, fields)
	if appErr != nil {
		h.handleError(w, r, appErr)
		return
	}

	identity := identityFrom(r.Context())
	upstream := translate.ToUpstream(fields, identity.ID)

	item, err := h.content.CreateItem(r.Context(), slug, title, models.StatusPending, upstream)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondWithCode(w, http.StatusCreated, item, "Submission received and awaiting review", "CREATE_SUCCESS")
}

// handleUpdateContent rewrites an owned item. The stored status is
// preserved; clients cannot promote their own submissions.
func (h *Handler) handleUpdateContent(w http.ResponseWriter, r *http.Request) {
	slug, appErr := contentSlug(r)
	if appErr != nil {
		h.handleError(w, r, appErr)
		return
	}
	id, appErr := contentID(r)
	if appErr != nil {
		h.handleError(w, r, appErr)
		return
	}

	// ownership is settled before the payload is even looked at, so a
	// foreign caller gets the same 403 no matter what they send
	existing, err := h.fetchOwned(r, slug, id, "UNAUTHORIZED_UPDATE")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	title, _, fields, appErr := decodeSubmission(r)
	if appErr != nil {
		h.handleError(w, r, appErr)
		return
	}

	title, fields, appErr = validation.ValidateContent(slug, title, fields)
	if appErr != nil {
		h.handleError(w, r, appErr)
		return
	}

	identity := identityFrom(r.Context())
	upstream := translate.ToUpstream(fields, identity.ID)

	item, err := h.content.UpdateItem(r.Context(), slug, id, title, existing.Status, upstream)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondWithCode(w, http.StatusOK, item, "Item updated", "UPDATE_SUCCESS")
}

// handleDeleteContent removes an owned item permanently.
func (h *Handler) handleDeleteContent(w http.ResponseWriter, r *http.Request) {
	slug, appErr := contentSlug(r)
	if appErr != nil {
		h.handleError(w, r, appErr)
		return
	}
	id, appErr := contentID(r)
	if appErr != nil {
		h.handleError(w, r, appErr)
		return
	}

	if _, err := h.fetchOwned(r, slug, id, "UNAUTHORIZED_DELETE"); err != nil {
		h.handleError(w, r, err)
		return
	}

	if err := h.content.DeleteItem(r.Context(), slug, id, true); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondWithCode(w, http.StatusOK, map[string]int{"id": id}, "Item deleted", "DELETE_SUCCESS")
}

// handleMyContent aggregates the caller's items across every content
// type, whatever their status.
func (h *Handler) handleMyContent(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	mine := make([]models.ContentItem, 0)
	for _, slug := range validation.ContentTypeSlugs() {
		for page := 1; ; page++ {
			result, err := h.content.ListItems(r.Context(), slug, wordpress.ListOptions{
				Page:    page,
				PerPage: 100,
				Status:  "any",
			})
			if err != nil {
				h.handleError(w, r, err)
				return
			}
			for _, item := range result.Items {
				if item.OwnerID == identity.ID {
					mine = append(mine, item)
				}
			}

			totalPages, _ := strconv.Atoi(result.TotalPages)
			if page >= totalPages {
				break
			}
		}
	}
	h.respond(w, http.StatusOK, mine, "OK")
}
