// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

package wordpress

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/pusaka-id/pusaka/internal/apperrors"
	"github.com/pusaka-id/pusaka/internal/models"
	"github.com/pusaka-id/pusaka/internal/translate"
)

// wpItem is the wire shape of a CMS record. Custom fields arrive under
// "acf" (the field plugin's key) or "fields" depending on plugin
// version, so both are read.
type wpItem struct {
	ID       int                        `json:"id"`
	Slug     string                     `json:"slug"`
	Status   string                     `json:"status"`
	Modified string                     `json:"modified"`
	Title    json.RawMessage            `json:"title"`
	ACF      map[string]json.RawMessage `json:"acf"`
	Fields   map[string]json.RawMessage `json:"fields"`
}

// toContentItem converts a wire record to the gateway model.
func (w *wpItem) toContentItem(cptSlug string) models.ContentItem {
	raw := w.ACF
	if len(raw) == 0 {
		raw = w.Fields
	}

	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		fields[k] = decodeFieldValue(v)
	}

	return models.ContentItem{
		ID:       w.ID,
		Type:     cptSlug,
		Title:    translate.UnwrapText(w.Title),
		Slug:     w.Slug,
		Status:   w.Status,
		OwnerID:  fields[translate.OwnerFieldKey],
		Fields:   translate.FromUpstream(fields),
		Modified: w.Modified,
	}
}

// decodeFieldValue flattens a custom-field value to a string. Fields
// are string-valued in practice but the CMS will hand back numbers and
// booleans for some field types.
func decodeFieldValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}
	return ""
}

// writePayload is the canonical CMS write shape: wrapped title, status,
// and the translated custom-field bag under "fields".
type writePayload struct {
	Title  translate.RawText `json:"title"`
	Status string            `json:"status,omitempty"`
	Fields map[string]string `json:"fields"`
}

// GetItem fetches one item with edit context so custom fields,
// including the owner identity, are present.
func (c *Client) GetItem(ctx context.Context, cptSlug string, id int) (*models.ContentItem, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, request{
		method:    http.MethodGet,
		path:      fmt.Sprintf("/%s/%d", cptSlug, id),
		query:     url.Values{"context": {"edit"}},
		token:     token,
		operation: "get_item",
	})
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, apperrors.FromWordPressResponse(resp.status, string(resp.body))
	}

	var item wpItem
	if err := json.Unmarshal(resp.body, &item); err != nil {
		return nil, apperrors.Internal(err)
	}
	out := item.toContentItem(cptSlug)
	return &out, nil
}

// ListOptions narrows a list call. Caller-supplied filter and sort
// parameters pass through to the CMS untouched.
type ListOptions struct {
	Page    int
	PerPage int

	// Search, OrderBy and Order map to the CMS's search, orderby and
	// order query parameters.
	Search  string
	OrderBy string
	Order   string

	// Fields trims the upstream response to the named fields (_fields);
	// Embed expands linked resources (_embed).
	Fields string
	Embed  string

	// Status filters by item status. Requires the service credential;
	// empty means published only, which is the public view.
	Status string
}

// values renders the options as CMS query parameters.
func (o ListOptions) values() url.Values {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(o.PerPage))
	}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	if o.OrderBy != "" {
		q.Set("orderby", o.OrderBy)
	}
	if o.Order != "" {
		q.Set("order", o.Order)
	}
	if o.Fields != "" {
		q.Set("_fields", o.Fields)
	}
	if o.Embed != "" {
		q.Set("_embed", o.Embed)
	}
	return q
}

// ListItems fetches a page of items of one content type. When a status
// filter is set the call authenticates with the service credential and
// edit context so non-published items and custom fields are visible.
func (c *Client) ListItems(ctx context.Context, cptSlug string, opts ListOptions) (*models.ListResult, error) {
	q := opts.values()
	req := request{
		method:    http.MethodGet,
		path:      "/" + cptSlug,
		query:     q,
		operation: "list_items",
	}
	if opts.Status != "" {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		req.token = token
		q.Set("status", opts.Status)
		q.Set("context", "edit")
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, apperrors.FromWordPressResponse(resp.status, string(resp.body))
	}

	var items []wpItem
	if err := json.Unmarshal(resp.body, &items); err != nil {
		return nil, apperrors.Internal(err)
	}

	result := &models.ListResult{
		Items:      make([]models.ContentItem, len(items)),
		Total:      resp.header.Get("X-WP-Total"),
		TotalPages: resp.header.Get("X-WP-TotalPages"),
	}
	for i := range items {
		result.Items[i] = items[i].toContentItem(cptSlug)
	}
	return result, nil
}

// CreateItem writes a new item through the service credential. Fields
// must already be translated to upstream names with the owner injected.
func (c *Client) CreateItem(ctx context.Context, cptSlug, title, status string, fields map[string]string) (*models.ContentItem, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/" + cptSlug,
		token:  token,
		payload: writePayload{
			Title:  translate.WrapRaw(title),
			Status: status,
			Fields: fields,
		},
		operation: "create_item",
	})
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusCreated && resp.status != http.StatusOK {
		return nil, apperrors.FromWordPressResponse(resp.status, string(resp.body))
	}

	var item wpItem
	if err := json.Unmarshal(resp.body, &item); err != nil {
		return nil, apperrors.Internal(err)
	}
	out := item.toContentItem(cptSlug)
	return &out, nil
}

// UpdateItem rewrites an existing item. Ownership must be verified by
// the caller before this runs; the CMS itself has no such check.
func (c *Client) UpdateItem(ctx context.Context, cptSlug string, id int, title, status string, fields map[string]string) (*models.ContentItem, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   fmt.Sprintf("/%s/%d", cptSlug, id),
		token:  token,
		payload: writePayload{
			Title:  translate.WrapRaw(title),
			Status: status,
			Fields: fields,
		},
		operation: "update_item",
	})
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, apperrors.FromWordPressResponse(resp.status, string(resp.body))
	}

	var item wpItem
	if err := json.Unmarshal(resp.body, &item); err != nil {
		return nil, apperrors.Internal(err)
	}
	out := item.toContentItem(cptSlug)
	return &out, nil
}

// DeleteItem removes an item. force skips the CMS trash and deletes
// permanently.
func (c *Client) DeleteItem(ctx context.Context, cptSlug string, id int, force bool) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	q := url.Values{}
	if force {
		q.Set("force", "true")
	}
	resp, err := c.do(ctx, request{
		method:    http.MethodDelete,
		path:      fmt.Sprintf("/%s/%d", cptSlug, id),
		query:     q,
		token:     token,
		operation: "delete_item",
	})
	if err != nil {
		return err
	}
	if resp.status != http.StatusOK {
		return apperrors.FromWordPressResponse(resp.status, string(resp.body))
	}
	return nil
}
