// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

package wordpress

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/pusaka-id/pusaka/internal/apperrors"
	"github.com/pusaka-id/pusaka/internal/models"
)

// ListCategories fetches the category terms.
func (c *Client) ListCategories(ctx context.Context) ([]models.Term, error) {
	return c.listTerms(ctx, "/categories", "list_categories")
}

// ListTags fetches the tag terms.
func (c *Client) ListTags(ctx context.Context) ([]models.Term, error) {
	return c.listTerms(ctx, "/tags", "list_tags")
}

func (c *Client) listTerms(ctx context.Context, path, operation string) ([]models.Term, error) {
	resp, err := c.do(ctx, request{
		method:    http.MethodGet,
		path:      path,
		query:     url.Values{"per_page": {"100"}},
		operation: operation,
	})
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, apperrors.FromWordPressResponse(resp.status, string(resp.body))
	}

	var terms []models.Term
	if err := json.Unmarshal(resp.body, &terms); err != nil {
		return nil, apperrors.Internal(err)
	}
	return terms, nil
}

// ResolveTags maps tag names to term IDs. Names with no existing term
// are created when createMissing is set; otherwise they are skipped,
// which is the restricted-role behavior.
func (c *Client) ResolveTags(ctx context.Context, userToken string, names []string, createMissing bool) ([]int, error) {
	var ids []int
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		id, found, err := c.findTag(ctx, name)
		if err != nil {
			return nil, err
		}
		if found {
			ids = append(ids, id)
			continue
		}
		if !createMissing {
			continue
		}

		id, err = c.createTag(ctx, userToken, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (c *Client) findTag(ctx context.Context, name string) (int, bool, error) {
	resp, err := c.do(ctx, request{
		method:    http.MethodGet,
		path:      "/tags",
		query:     url.Values{"search": {name}, "per_page": {"20"}},
		operation: "find_tag",
	})
	if err != nil {
		return 0, false, err
	}
	if resp.status != http.StatusOK {
		return 0, false, apperrors.FromWordPressResponse(resp.status, string(resp.body))
	}

	var terms []models.Term
	if err := json.Unmarshal(resp.body, &terms); err != nil {
		return 0, false, apperrors.Internal(err)
	}
	// search matches substrings; require an exact name
	for _, t := range terms {
		if strings.EqualFold(t.Name, name) {
			return t.ID, true, nil
		}
	}
	return 0, false, nil
}

func (c *Client) createTag(ctx context.Context, userToken, name string) (int, error) {
	resp, err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/tags",
		token:     userToken,
		payload:   map[string]string{"name": name},
		operation: "create_tag",
	})
	if err != nil {
		return 0, err
	}
	if resp.status != http.StatusCreated && resp.status != http.StatusOK {
		return 0, apperrors.FromWordPressResponse(resp.status, string(resp.body))
	}

	var term models.Term
	if err := json.Unmarshal(resp.body, &term); err != nil {
		return 0, apperrors.Internal(err)
	}
	return term.ID, nil
}

// wpComment is the wire shape of a comment.
type wpComment struct {
	ID         int             `json:"id"`
	Post       int             `json:"post"`
	AuthorName string          `json:"author_name"`
	Content    json.RawMessage `json:"content"`
	Date       string          `json:"date"`
	Status     string          `json:"status"`
	Parent     int             `json:"parent"`
}

// ListComments fetches the approved comments on one post.
func (c *Client) ListComments(ctx context.Context, postID int) ([]models.Comment, error) {
	resp, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/comments",
		query: url.Values{
			"post":     {strconv.Itoa(postID)},
			"per_page": {"100"},
		},
		operation: "list_comments",
	})
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, apperrors.FromWordPressResponse(resp.status, string(resp.body))
	}

	var raw []wpComment
	if err := json.Unmarshal(resp.body, &raw); err != nil {
		return nil, apperrors.Internal(err)
	}
	comments := make([]models.Comment, len(raw))
	for i, wc := range raw {
		comments[i] = wc.toComment()
	}
	return comments, nil
}

// CreateComment posts a comment through the service credential with the
// caller's display name attached.
func (c *Client) CreateComment(ctx context.Context, postID int, authorName, content string) (*models.Comment, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/comments",
		token:  token,
		payload: map[string]any{
			"post":        postID,
			"author_name": authorName,
			"content":     content,
		},
		operation: "create_comment",
	})
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusCreated && resp.status != http.StatusOK {
		return nil, apperrors.FromWordPressResponse(resp.status, string(resp.body))
	}

	var wc wpComment
	if err := json.Unmarshal(resp.body, &wc); err != nil {
		return nil, apperrors.Internal(err)
	}
	comment := wc.toComment()
	return &comment, nil
}

func (wc *wpComment) toComment() models.Comment {
	return models.Comment{
		ID:       wc.ID,
		PostID:   wc.Post,
		Author:   wc.AuthorName,
		Content:  decodeCommentContent(wc.Content),
		Date:     wc.Date,
		Status:   wc.Status,
		ParentID: wc.Parent,
	}
}

// decodeCommentContent handles both the {rendered} object and bare
// string shapes the comments endpoint produces.
func decodeCommentContent(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Raw      string `json:"raw"`
		Rendered string `json:"rendered"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	if obj.Raw != "" {
		return obj.Raw
	}
	return obj.Rendered
}
