// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

package models

// Content item status values as stored by WordPress. Submissions from
// non-privileged callers are always created as StatusPending.
const (
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusPublished = "publish"
	StatusPrivate   = "private"
)

// ContentItem is the gateway-side view of a WordPress custom-post-type
// record. OwnerID mirrors the supabase_user_id custom field, which is
// the only ownership mechanism the system has.
type ContentItem struct {
	ID       int               `json:"id"`
	Type     string            `json:"contentTypeSlug"`
	Title    string            `json:"title"`
	Slug     string            `json:"slug,omitempty"`
	Status   string            `json:"status"`
	OwnerID  string            `json:"ownerIdentity,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
	Modified string            `json:"modified,omitempty"`
}

// ListResult pairs a page of items with the upstream pagination totals
// (re-exposed verbatim as X-WP-Total / X-WP-TotalPages headers).
type ListResult struct {
	Items      []ContentItem `json:"items"`
	Total      string        `json:"-"`
	TotalPages string        `json:"-"`
}

// Identity is the authenticated caller resolved from the identity
// provider. ID is the Supabase user UUID.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// WPUser is the WordPress-side profile for blog-post flows, where the
// caller acts with their own WordPress account rather than through the
// service credential.
type WPUser struct {
	ID          int      `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email,omitempty"`
	DisplayName string   `json:"displayName"`
	FirstName   string   `json:"firstName,omitempty"`
	LastName    string   `json:"lastName,omitempty"`
	Avatar      string   `json:"avatar,omitempty"`
	Roles       []string `json:"roles"`
}

// IsContributor reports whether the user carries the restricted
// contributor role, which forces draft status and blocks category and
// tag management.
func (u *WPUser) IsContributor() bool {
	for _, r := range u.Roles {
		if r == "contributor" {
			return true
		}
	}
	return false
}

// LoginRequest carries WordPress credentials for the blog-post flow.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// EmailLoginRequest carries identity-provider credentials.
type EmailLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest carries a Supabase sign-up.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// CommentRequest is the body for creating a comment on a blog post.
type CommentRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
	Author  string `json:"author_name,omitempty" validate:"omitempty,max=100"`
}
