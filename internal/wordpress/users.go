// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

package wordpress

import (
	"context"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/pusaka-id/pusaka/internal/apperrors"
	"github.com/pusaka-id/pusaka/internal/models"
)

// LoginUser exchanges a caller's WordPress credentials for a bearer
// token at the JWT auth endpoint. Used for blog-post flows where the
// caller acts as their own WordPress account.
func (c *Client) LoginUser(ctx context.Context, username, password string) (string, error) {
	resp, err := c.do(ctx, request{
		method: http.MethodPost,
		base:   c.jwtBase,
		path:   "/token",
		payload: map[string]string{
			"username": username,
			"password": password,
		},
		operation: "user_login",
	})
	if err != nil {
		return "", err
	}
	if resp.status == http.StatusForbidden || resp.status == http.StatusUnauthorized {
		return "", apperrors.Authentication("AUTH_INVALID_USER", "wordpress rejected credentials")
	}
	if resp.status != http.StatusOK {
		return "", apperrors.FromWordPressResponse(resp.status, string(resp.body))
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.body, &body); err != nil {
		return "", apperrors.Internal(err)
	}
	if body.Token == "" {
		return "", apperrors.Authentication("AUTH_INVALID_USER", "token endpoint returned empty token")
	}
	return body.Token, nil
}

// ValidateUserToken checks a caller token against the JWT validate
// endpoint. Returns nil when the token is accepted.
func (c *Client) ValidateUserToken(ctx context.Context, token string) error {
	resp, err := c.do(ctx, request{
		method:    http.MethodPost,
		base:      c.jwtBase,
		path:      "/token/validate",
		token:     token,
		operation: "validate_token",
	})
	if err != nil {
		return err
	}
	if resp.status != http.StatusOK {
		return apperrors.Authentication("AUTH_INVALID_USER", "wordpress token validation failed")
	}
	return nil
}

// wpUser is the wire shape of users/me.
type wpUser struct {
	ID        int               `json:"id"`
	Username  string            `json:"username"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	Roles     []string          `json:"roles"`
	AvatarURL map[string]string `json:"avatar_urls"`
}

// CurrentUser fetches the caller's own WordPress profile with edit
// context so the role list is included.
func (c *Client) CurrentUser(ctx context.Context, userToken string) (*models.WPUser, error) {
	resp, err := c.do(ctx, request{
		method:    http.MethodGet,
		path:      "/users/me",
		query:     url.Values{"context": {"edit"}},
		token:     userToken,
		operation: "current_user",
	})
	if err != nil {
		return nil, err
	}
	if resp.status == http.StatusUnauthorized || resp.status == http.StatusForbidden {
		return nil, apperrors.Authentication("AUTH_INVALID_USER", "wordpress rejected user token")
	}
	if resp.status != http.StatusOK {
		return nil, apperrors.FromWordPressResponse(resp.status, string(resp.body))
	}

	var raw wpUser
	if err := json.Unmarshal(resp.body, &raw); err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &models.WPUser{
		ID:          raw.ID,
		Username:    raw.Username,
		Email:       raw.Email,
		DisplayName: raw.Name,
		FirstName:   raw.FirstName,
		LastName:    raw.LastName,
		Roles:       raw.Roles,
	}
	// largest avatar size wins
	for _, size := range []string{"96", "48", "24"} {
		if u, ok := raw.AvatarURL[size]; ok {
			user.Avatar = u
			break
		}
	}
	return user, nil
}
