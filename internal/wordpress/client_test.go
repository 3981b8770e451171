// Pusaka - Cultural Heritage Content Gateway
// Copyright 2026 Pusaka Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pusaka-id/pusaka

package wordpress

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pusaka-id/pusaka/internal/apperrors"
	"github.com/pusaka-id/pusaka/internal/config"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.WordPressConfig{
		APIURL:     srv.URL + "/wp-json/wp/v2",
		JWTAuthURL: srv.URL + "/wp-json/jwt-auth/v1",
		Username:   "svc",
		Password:   "secret",
		Timeout:    5 * time.Second,
		TokenTTL:   55 * time.Minute,
	})
}

// tokenHandler answers the JWT endpoint and delegates everything else.
func tokenHandler(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/wp-json/jwt-auth/v1/token" {
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "svc-token"})
			return
		}
		next(w, r)
	}
}

func TestGetItemReadsACFFields(t *testing.T) {
	c := testClient(t, tokenHandler(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wp/v2/cagar_budaya/7", r.URL.Path)
		assert.Equal(t, "edit", r.URL.Query().Get("context"))
		assert.Equal(t, "Bearer svc-token", r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`{
			"id": 7,
			"status": "pending",
			"title": {"raw": "Benteng Oranje", "rendered": "Benteng Oranje"},
			"acf": {"lokasi": "Ternate Utara", "supabase_user_id": "u1"}
		}`))
	}))

	item, err := c.GetItem(context.Background(), "cagar_budaya", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, item.ID)
	assert.Equal(t, "Benteng Oranje", item.Title)
	assert.Equal(t, "pending", item.Status)
	assert.Equal(t, "u1", item.OwnerID)
	assert.Equal(t, "Ternate Utara", item.Fields["lokasi"])
	assert.NotContains(t, item.Fields, "supabaseUserId")
}

func TestGetItemToleratesFieldsKey(t *testing.T) {
	c := testClient(t, tokenHandler(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"id": 8,
			"status": "publish",
			"title": "Plain Title",
			"fields": {"daerah_asal": "Tidore"}
		}`))
	}))

	item, err := c.GetItem(context.Background(), "kesenian", 8)
	require.NoError(t, err)
	assert.Equal(t, "Plain Title", item.Title)
	assert.Equal(t, "Tidore", item.Fields["daerahAsal"])
}

func TestCreateItemPayloadShape(t *testing.T) {
	var captured map[string]any
	c := testClient(t, tokenHandler(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 11, "status": "pending", "title": {"raw": "Old Fort"}}`))
	}))

	item, err := c.CreateItem(context.Background(), "cagar_budaya", "Old Fort", "pending", map[string]string{
		"lokasi":           "North Ternate",
		"supabase_user_id": "U1",
	})
	require.NoError(t, err)
	assert.Equal(t, 11, item.ID)

	title := captured["title"].(map[string]any)
	assert.Equal(t, "Old Fort", title["raw"])
	assert.Equal(t, "pending", captured["status"])
	fields := captured["fields"].(map[string]any)
	assert.Equal(t, "North Ternate", fields["lokasi"])
	assert.Equal(t, "U1", fields["supabase_user_id"])
}

func TestListItemsExposesPaginationHeaders(t *testing.T) {
	c := testClient(t, tokenHandler(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-WP-Total", "42")
		w.Header().Set("X-WP-TotalPages", "5")
		_, _ = w.Write([]byte(`[{"id": 1, "status": "publish", "title": "A"}]`))
	}))

	result, err := c.ListItems(context.Background(), "tokoh", ListOptions{Page: 2, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, "42", result.Total)
	assert.Equal(t, "5", result.TotalPages)
	require.Len(t, result.Items, 1)
}

func TestListItemsForwardsFilterAndSort(t *testing.T) {
	var query url.Values
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = w.Write([]byte(`[]`))
	}))

	_, err := c.ListItems(context.Background(), "cagar_budaya", ListOptions{
		Page:    2,
		PerPage: 5,
		Search:  "benteng",
		OrderBy: "date",
		Order:   "desc",
		Fields:  "id,title,status",
		Embed:   "1",
	})
	require.NoError(t, err)
	assert.Equal(t, "2", query.Get("page"))
	assert.Equal(t, "5", query.Get("per_page"))
	assert.Equal(t, "benteng", query.Get("search"))
	assert.Equal(t, "date", query.Get("orderby"))
	assert.Equal(t, "desc", query.Get("order"))
	assert.Equal(t, "id,title,status", query.Get("_fields"))
	assert.Equal(t, "1", query.Get("_embed"))
}

func TestListPostsForwardsFilterAndSort(t *testing.T) {
	var query url.Values
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = w.Write([]byte(`[]`))
	}))

	_, _, _, err := c.ListPosts(context.Background(), ListOptions{
		Search:  "sejarah",
		OrderBy: "title",
		Order:   "asc",
	})
	require.NoError(t, err)
	assert.Equal(t, "sejarah", query.Get("search"))
	assert.Equal(t, "title", query.Get("orderby"))
	assert.Equal(t, "asc", query.Get("order"))
}

func TestValidateUserToken(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/jwt-auth/v1/token/validate", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`{"code": "jwt_auth_valid_token"}`))
	}))

	require.NoError(t, c.ValidateUserToken(context.Background(), "good"))

	err := c.ValidateUserToken(context.Background(), "stale")
	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.KindAuthentication, appErr.Kind)
}

func TestNotFoundMapsTo404(t *testing.T) {
	c := testClient(t, tokenHandler(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code": "rest_post_invalid_id"}`))
	}))

	_, err := c.GetItem(context.Background(), "tokoh", 999)
	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.KindNotFound, appErr.Kind)
	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
}

func TestServiceCredentialRejectionIsUpstreamFault(t *testing.T) {
	c := testClient(t, tokenHandler(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := c.GetItem(context.Background(), "tokoh", 1)
	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.KindUpstreamContent, appErr.Kind)
	assert.Equal(t, http.StatusBadGateway, appErr.StatusCode)
}

func TestTokenCacheSingleFlight(t *testing.T) {
	var exchanges atomic.Int32
	tc := NewTokenCache(55*time.Minute, func(ctx context.Context) (string, error) {
		exchanges.Add(1)
		time.Sleep(50 * time.Millisecond)
		return "tok", nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := tc.Token(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "tok", token)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), exchanges.Load())
}

func TestTokenCacheReusesUntilExpiry(t *testing.T) {
	var exchanges int
	tc := NewTokenCache(55*time.Minute, func(ctx context.Context) (string, error) {
		exchanges++
		return "tok", nil
	})
	clock := time.Now()
	tc.now = func() time.Time { return clock }

	for i := 0; i < 5; i++ {
		_, err := tc.Token(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 1, exchanges)

	clock = clock.Add(56 * time.Minute)
	_, err := tc.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, exchanges)
}

func TestTokenCacheFailureIsNotCached(t *testing.T) {
	var exchanges int
	tc := NewTokenCache(55*time.Minute, func(ctx context.Context) (string, error) {
		exchanges++
		if exchanges == 1 {
			return "", apperrors.Network(errors.New("refused"))
		}
		return "tok", nil
	})

	_, err := tc.Token(context.Background())
	require.Error(t, err)

	token, err := tc.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.Equal(t, 2, exchanges)
}

func TestLoginUserRejectedCredentials(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := c.LoginUser(context.Background(), "user", "wrong")
	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.KindAuthentication, appErr.Kind)
	assert.Equal(t, "AUTH_INVALID_USER", appErr.Code)
}

func TestCurrentUserRoles(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wp/v2/users/me", r.URL.Path)
		assert.Equal(t, "edit", r.URL.Query().Get("context"))
		_, _ = w.Write([]byte(`{
			"id": 3, "username": "penulis", "name": "Penulis",
			"roles": ["contributor"], "avatar_urls": {"96": "https://img/96"}
		}`))
	}))

	user, err := c.CurrentUser(context.Background(), "user-token")
	require.NoError(t, err)
	assert.True(t, user.IsContributor())
	assert.Equal(t, "https://img/96", user.Avatar)
}

func TestToggleLike(t *testing.T) {
	var updated map[string]any
	c := testClient(t, tokenHandler(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`{
				"id": 5, "status": "publish", "title": "T",
				"acf": {"liked_by": "u1,u2", "like_count": "2"}
			}`))
			return
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&updated))
		_, _ = w.Write([]byte(`{"id": 5, "status": "publish", "title": "T"}`))
	}))

	// u2 unlikes
	result, err := c.ToggleLike(context.Background(), 5, "u2")
	require.NoError(t, err)
	assert.False(t, result.Liked)
	assert.Equal(t, 1, result.LikeCount)
	fields := updated["fields"].(map[string]any)
	assert.Equal(t, "u1", fields["liked_by"])

	// u3 likes
	result, err = c.ToggleLike(context.Background(), 5, "u3")
	require.NoError(t, err)
	assert.True(t, result.Liked)
	assert.Equal(t, 3, result.LikeCount)
}

func TestResolveTagsSkipsCreationForRestrictedRole(t *testing.T) {
	var created int
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			created++
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id": 9, "name": "baru"}`))
			return
		}
		if r.URL.Query().Get("search") == "sejarah" {
			_, _ = w.Write([]byte(`[{"id": 4, "name": "Sejarah"}]`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))

	ids, err := c.ResolveTags(context.Background(), "tok", []string{"sejarah", "baru"}, false)
	require.NoError(t, err)
	assert.Equal(t, []int{4}, ids)
	assert.Zero(t, created)

	ids, err = c.ResolveTags(context.Background(), "tok", []string{"baru"}, true)
	require.NoError(t, err)
	assert.Equal(t, []int{9}, ids)
	assert.Equal(t, 1, created)
}
