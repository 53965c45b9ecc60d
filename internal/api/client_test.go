package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deephealth-lab/community/internal/feed"
	"github.com/deephealth-lab/community/internal/models"
)

func TestFetchFeedSendsPaginationParams(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/community/posts", r.URL.Path)
		gotQuery = map[string]string{
			"page":      r.URL.Query().Get("page"),
			"page_size": r.URL.Query().Get("page_size"),
			"sort":      r.URL.Query().Get("sort"),
			"filter":    r.URL.Query().Get("filter"),
		}
		json.NewEncoder(w).Encode(models.FeedPage{Page: 3, Pages: 7, Total: 61})
	}))
	defer srv.Close()

	c := New(srv.URL+"/api/v1", "tok")
	fp, err := c.FetchFeed(context.Background(), 3, 10, feed.SortPopular, feed.FilterMine)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"page": "3", "page_size": "10", "sort": "popular", "filter": "mine",
	}, gotQuery)
	assert.Equal(t, 3, fp.Page)
	assert.Equal(t, 7, fp.Pages)
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(models.Post{ID: "p1"})
	}))
	defer srv.Close()

	c := New(srv.URL, "secret-token")
	_, err := c.FetchPostDetail(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
}

func TestErrorResponseSurfacesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "Post not found"})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.FetchPostDetail(context.Background(), "nope")
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Post not found", apiErr.Message)
}

func TestAddCommentPostsParent(t *testing.T) {
	var got models.CreateCommentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/community/posts/p1/comments", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(models.Post{ID: "p1", CommentsCount: 2})
	}))
	defer srv.Close()

	parent := "c9"
	c := New(srv.URL, "tok")
	p, err := c.AddComment(context.Background(), "p1", "a reply", &parent)
	require.NoError(t, err)

	assert.Equal(t, "a reply", got.Content)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, "c9", *got.ParentID)
	assert.Equal(t, 2, p.CommentsCount)
}

func TestLoginInstallsToken(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		switch r.URL.Path {
		case "/auth/login":
			json.NewEncoder(w).Encode(models.AuthResponse{Token: "fresh"})
		default:
			assert.Equal(t, "Bearer fresh", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(models.Post{ID: "p1"})
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.Login(context.Background(), "a@lab.dev", "pw")
	require.NoError(t, err)

	_, err = c.FetchPostDetail(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
