// Package api is the HTTP client for the community service. It implements
// feed.Client so the feed engine never sees a transport.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/deephealth-lab/community/internal/feed"
	"github.com/deephealth-lab/community/internal/models"
)

// Error is a non-2xx API response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a client for the API rooted at baseURL (e.g.
// "http://localhost:8080/api/v1"). token is sent as a bearer credential on
// every request; pass "" for the public surface only.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken swaps the bearer credential, e.g. after Login.
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		msg := resp.Status
		if json.NewDecoder(resp.Body).Decode(&payload) == nil && payload.Error != "" {
			msg = payload.Error
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Login exchanges credentials for a bearer token and installs it on the
// client.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var auth models.AuthResponse
	req := models.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &auth); err != nil {
		return nil, err
	}
	c.token = auth.Token
	return &auth, nil
}

// Register creates an account and installs the returned token.
func (c *Client) Register(ctx context.Context, fullName, email, password string) (*models.AuthResponse, error) {
	var auth models.AuthResponse
	req := models.RegisterRequest{FullName: fullName, Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &auth); err != nil {
		return nil, err
	}
	c.token = auth.Token
	return &auth, nil
}

func (c *Client) FetchFeed(ctx context.Context, page, pageSize int, sort feed.SortMode, filter feed.FilterMode) (models.FeedPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	q.Set("sort", string(sort))
	q.Set("filter", string(filter))

	var fp models.FeedPage
	err := c.do(ctx, http.MethodGet, "/community/posts?"+q.Encode(), nil, &fp)
	return fp, err
}

func (c *Client) FetchPostDetail(ctx context.Context, postID string) (*models.Post, error) {
	var p models.Post
	if err := c.do(ctx, http.MethodGet, "/community/posts/"+url.PathEscape(postID), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreatePost(ctx context.Context, content string) (*models.Post, error) {
	var p models.Post
	req := models.CreatePostRequest{Content: content}
	if err := c.do(ctx, http.MethodPost, "/community/posts", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ToggleLike(ctx context.Context, postID string) (*models.Post, error) {
	return c.react(ctx, postID, "like")
}

func (c *Client) ToggleDislike(ctx context.Context, postID string) (*models.Post, error) {
	return c.react(ctx, postID, "dislike")
}

func (c *Client) react(ctx context.Context, postID, action string) (*models.Post, error) {
	var p models.Post
	path := "/community/posts/" + url.PathEscape(postID) + "/" + action
	if err := c.do(ctx, http.MethodPost, path, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) AddComment(ctx context.Context, postID, content string, parentID *string) (*models.Post, error) {
	var p models.Post
	req := models.CreateCommentRequest{Content: content, ParentID: parentID}
	path := "/community/posts/" + url.PathEscape(postID) + "/comments"
	if err := c.do(ctx, http.MethodPost, path, req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
