// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

// Package api exposes the gateway's HTTP surface: auth, content item
// CRUD with ownership enforcement, blog-post proxying, and health.
package api

import (
	"context"
	"time"

	"github.com/pusaka-id/pusaka/internal/config"
	"github.com/pusaka-id/pusaka/internal/health"
	"github.com/pusaka-id/pusaka/internal/models"
	"github.com/pusaka-id/pusaka/internal/ratelimit"
	"github.com/pusaka-id/pusaka/internal/supabase"
	"github.com/pusaka-id/pusaka/internal/wordpress"
)

// ContentStore is the CMS surface the handlers depend on, implemented
// by wordpress.Client.
type ContentStore interface {
	GetItem(ctx context.Context, cptSlug string, id int) (*models.ContentItem, error)
	ListItems(ctx context.Context, cptSlug string, opts wordpress.ListOptions) (*models.ListResult, error)
	CreateItem(ctx context.Context, cptSlug, title, status string, fields map[string]string) (*models.ContentItem, error)
	UpdateItem(ctx context.Context, cptSlug string, id int, title, status string, fields map[string]string) (*models.ContentItem, error)
	DeleteItem(ctx context.Context, cptSlug string, id int, force bool) error

	ListPosts(ctx context.Context, opts wordpress.ListOptions) ([]models.BlogPost, string, string, error)
	GetPost(ctx context.Context, id int) (*models.BlogPost, error)
	CreatePost(ctx context.Context, userToken, title, content, excerpt, status string, categories, tags []int) (*models.BlogPost, error)
	UpdatePost(ctx context.Context, userToken string, id int, title, content, excerpt, status string, categories, tags []int) (*models.BlogPost, error)
	DeletePost(ctx context.Context, userToken string, id int, force bool) error
	ToggleLike(ctx context.Context, postID int, identityID string) (*models.LikeResult, error)

	ListCategories(ctx context.Context) ([]models.Term, error)
	ListTags(ctx context.Context) ([]models.Term, error)
	ResolveTags(ctx context.Context, userToken string, names []string, createMissing bool) ([]int, error)
	ListComments(ctx context.Context, postID int) ([]models.Comment, error)
	CreateComment(ctx context.Context, postID int, authorName, content string) (*models.Comment, error)

	LoginUser(ctx context.Context, username, password string) (string, error)
	ValidateUserToken(ctx context.Context, userToken string) error
	CurrentUser(ctx context.Context, userToken string) (*models.WPUser, error)
	Ping(ctx context.Context) error
}

// IdentityProvider is the auth surface the handlers depend on,
// implemented by supabase.Client.
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*supabase.Session, error)
	SignUp(ctx context.Context, email, password string) (*supabase.Session, error)
	SignOut(ctx context.Context, token string) error
	GetUser(ctx context.Context, token string) (*models.Identity, error)
	Ping(ctx context.Context) error
}

// Handler carries the handlers' dependencies. No package-level state;
// everything is injected so tests can swap upstreams.
type Handler struct {
	cfg      *config.Config
	content  ContentStore
	identity IdentityProvider
	limiter  *ratelimit.Limiter
	monitor  *health.Monitor
	started  time.Time
}

// NewHandler wires a Handler.
func NewHandler(cfg *config.Config, content ContentStore, identity IdentityProvider, limiter *ratelimit.Limiter, monitor *health.Monitor) *Handler {
	return &Handler{
		cfg:      cfg,
		content:  content,
		identity: identity,
		limiter:  limiter,
		monitor:  monitor,
		started:  time.Now(),
	}
}
