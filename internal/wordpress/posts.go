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
	"strings"

	"github.com/goccy/go-json"

	"github.com/pusaka-id/pusaka/internal/apperrors"
	"github.com/pusaka-id/pusaka/internal/models"
	"github.com/pusaka-id/pusaka/internal/translate"
)

// likedByMetaKey and likeCountMetaKey are the post meta fields backing
// the like toggle. likedBy holds a comma-separated identity list.
const (
	likedByMetaKey   = "liked_by"
	likeCountMetaKey = "like_count"
)

// wpPost is the wire shape of a blog post.
type wpPost struct {
	ID         int                        `json:"id"`
	Slug       string                     `json:"slug"`
	Status     string                     `json:"status"`
	Author     int                        `json:"author"`
	Date       string                     `json:"date"`
	Modified   string                     `json:"modified"`
	Title      json.RawMessage            `json:"title"`
	Content    json.RawMessage            `json:"content"`
	Excerpt    json.RawMessage            `json:"excerpt"`
	Categories []int                      `json:"categories"`
	Tags       []int                      `json:"tags"`
	ACF        map[string]json.RawMessage `json:"acf"`
}

func (w *wpPost) toBlogPost() models.BlogPost {
	post := models.BlogPost{
		ID:         w.ID,
		Title:      translate.UnwrapText(w.Title),
		Content:    translate.UnwrapText(w.Content),
		Excerpt:    translate.UnwrapText(w.Excerpt),
		Slug:       w.Slug,
		Status:     w.Status,
		AuthorID:   w.Author,
		Categories: w.Categories,
		Tags:       w.Tags,
		Date:       w.Date,
		Modified:   w.Modified,
	}
	if raw, ok := w.ACF[likeCountMetaKey]; ok {
		if n, err := strconv.Atoi(decodeFieldValue(raw)); err == nil {
			post.LikeCount = n
		}
	}
	return post
}

// postPayload is the write shape for blog posts. Rich-text fields are
// wrapped in the raw envelope.
type postPayload struct {
	Title      translate.RawText  `json:"title"`
	Content    *translate.RawText `json:"content,omitempty"`
	Excerpt    *translate.RawText `json:"excerpt,omitempty"`
	Status     string             `json:"status,omitempty"`
	Categories []int              `json:"categories,omitempty"`
	Tags       []int              `json:"tags,omitempty"`
}

func buildPostPayload(title, content, excerpt, status string, categories, tags []int) postPayload {
	p := postPayload{
		Title:      translate.WrapRaw(title),
		Status:     status,
		Categories: categories,
		Tags:       tags,
	}
	if content != "" {
		c := translate.WrapRaw(content)
		p.Content = &c
	}
	if excerpt != "" {
		e := translate.WrapRaw(excerpt)
		p.Excerpt = &e
	}
	return p
}

// ListPosts fetches a page of published blog posts. Filter and sort
// options pass through to the CMS.
func (c *Client) ListPosts(ctx context.Context, opts ListOptions) ([]models.BlogPost, string, string, error) {
	resp, err := c.do(ctx, request{
		method:    http.MethodGet,
		path:      "/posts",
		query:     opts.values(),
		operation: "list_posts",
	})
	if err != nil {
		return nil, "", "", err
	}
	if resp.status != http.StatusOK {
		return nil, "", "", apperrors.FromWordPressResponse(resp.status, string(resp.body))
	}

	var raw []wpPost
	if err := json.Unmarshal(resp.body, &raw); err != nil {
		return nil, "", "", apperrors.Internal(err)
	}
	posts := make([]models.BlogPost, len(raw))
	for i := range raw {
		posts[i] = raw[i].toBlogPost()
	}
	return posts, resp.header.Get("X-WP-Total"), resp.header.Get("X-WP-TotalPages"), nil
}

// GetPost fetches one blog post.
func (c *Client) GetPost(ctx context.Context, id int) (*models.BlogPost, error) {
	resp, err := c.do(ctx, request{
		method:    http.MethodGet,
		path:      fmt.Sprintf("/posts/%d", id),
		operation: "get_post",
	})
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, apperrors.FromWordPressResponse(resp.status, string(resp.body))
	}

	var raw wpPost
	if err := json.Unmarshal(resp.body, &raw); err != nil {
		return nil, apperrors.Internal(err)
	}
	post := raw.toBlogPost()
	return &post, nil
}

// CreatePost writes a new blog post with the caller's own token.
func (c *Client) CreatePost(ctx context.Context, userToken, title, content, excerpt, status string, categories, tags []int) (*models.BlogPost, error) {
	resp, err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/posts",
		token:     userToken,
		payload:   buildPostPayload(title, content, excerpt, status, categories, tags),
		operation: "create_post",
	})
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusCreated && resp.status != http.StatusOK {
		return nil, apperrors.FromWordPressResponse(resp.status, string(resp.body))
	}

	var raw wpPost
	if err := json.Unmarshal(resp.body, &raw); err != nil {
		return nil, apperrors.Internal(err)
	}
	post := raw.toBlogPost()
	return &post, nil
}

// UpdatePost rewrites a blog post with the caller's own token. The CMS
// enforces post ownership for user tokens, unlike content items.
func (c *Client) UpdatePost(ctx context.Context, userToken string, id int, title, content, excerpt, status string, categories, tags []int) (*models.BlogPost, error) {
	resp, err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      fmt.Sprintf("/posts/%d", id),
		token:     userToken,
		payload:   buildPostPayload(title, content, excerpt, status, categories, tags),
		operation: "update_post",
	})
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, apperrors.FromWordPressResponse(resp.status, string(resp.body))
	}

	var raw wpPost
	if err := json.Unmarshal(resp.body, &raw); err != nil {
		return nil, apperrors.Internal(err)
	}
	post := raw.toBlogPost()
	return &post, nil
}

// DeletePost removes a blog post with the caller's own token.
func (c *Client) DeletePost(ctx context.Context, userToken string, id int, force bool) error {
	q := url.Values{}
	if force {
		q.Set("force", "true")
	}
	resp, err := c.do(ctx, request{
		method:    http.MethodDelete,
		path:      fmt.Sprintf("/posts/%d", id),
		query:     q,
		token:     userToken,
		operation: "delete_post",
	})
	if err != nil {
		return err
	}
	if resp.status != http.StatusOK {
		return apperrors.FromWordPressResponse(resp.status, string(resp.body))
	}
	return nil
}

// ToggleLike flips the caller's like on a post. Likes live in post meta
// maintained through the service credential; the CMS has no native
// like concept. Concurrent toggles on one post may interleave, matching
// the rest of the system's last-write-wins semantics.
func (c *Client) ToggleLike(ctx context.Context, postID int, identityID string) (*models.LikeResult, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, request{
		method:    http.MethodGet,
		path:      fmt.Sprintf("/posts/%d", postID),
		query:     url.Values{"context": {"edit"}},
		token:     token,
		operation: "get_post",
	})
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, apperrors.FromWordPressResponse(resp.status, string(resp.body))
	}

	var raw wpPost
	if err := json.Unmarshal(resp.body, &raw); err != nil {
		return nil, apperrors.Internal(err)
	}

	likedBy := splitIdentities(decodeFieldValue(raw.ACF[likedByMetaKey]))
	liked := false
	next := make([]string, 0, len(likedBy)+1)
	for _, id := range likedBy {
		if id == identityID {
			liked = true
			continue
		}
		next = append(next, id)
	}
	if !liked {
		next = append(next, identityID)
	}

	updateResp, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   fmt.Sprintf("/posts/%d", postID),
		token:  token,
		payload: map[string]any{
			"fields": map[string]string{
				likedByMetaKey:   strings.Join(next, ","),
				likeCountMetaKey: strconv.Itoa(len(next)),
			},
		},
		operation: "update_post",
	})
	if err != nil {
		return nil, err
	}
	if updateResp.status != http.StatusOK {
		return nil, apperrors.FromWordPressResponse(updateResp.status, string(updateResp.body))
	}

	return &models.LikeResult{
		PostID:    postID,
		Liked:     !liked,
		LikeCount: len(next),
	}, nil
}

func splitIdentities(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
