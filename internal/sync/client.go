// Package sync is the client-side state layer: a typed API client plus a
// cache store that keeps local state converging on the server's. Reads are
// served from cache and refreshed on demand; writes go through, invalidate
// what they touched, and optimistic toggles reconcile against the
// authoritative counts the server returns.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"writehub/internal/model"
)

// ErrInvalidID marks a request that was never sent because the entity id
// failed validation. Callers treat it as a no-op, not a server failure.
var ErrInvalidID = errors.New("invalid entity id")

// APIError carries the server's error envelope for non-2xx responses.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
}

// Client is a typed HTTP client for the publishing API. All responses use
// the {success, data, error} envelope.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
	}
}

// WithToken returns the client with a bearer token set for authenticated calls.
func (c *Client) WithToken(token string) *Client {
	c.token = token
	return c
}

// ValidID reports whether a string parses as a usable entity id. Route
// params and stored references are checked before any request goes out,
// so a malformed id can never produce a spurious server round-trip.
func ValidID(s string) bool {
	id, err := strconv.ParseInt(s, 10, 64)
	return err == nil && id > 0
}

// envelope mirrors the server's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if !env.Success {
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Error}
	}

	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

// GetPost fetches a single post by id.
func (c *Client) GetPost(ctx context.Context, postID int64) (*model.Post, error) {
	if postID <= 0 {
		return nil, ErrInvalidID
	}
	var post model.Post
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/posts/%d", postID), nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// GetPostBySlug fetches a published post by slug.
func (c *Client) GetPostBySlug(ctx context.Context, slug string) (*model.Post, error) {
	if slug == "" {
		return nil, ErrInvalidID
	}
	var post model.Post
	if err := c.do(ctx, http.MethodGet, "/posts/slug/"+url.PathEscape(slug), nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// ListPosts fetches a page of published posts.
func (c *Client) ListPosts(ctx context.Context, tag string, page, limit int) (*model.PostListResponse, error) {
	q := url.Values{}
	if tag != "" {
		q.Set("tag", tag)
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/posts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var list model.PostListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ListDrafts fetches the caller's drafts.
func (c *Client) ListDrafts(ctx context.Context) (*model.PostListResponse, error) {
	var list model.PostListResponse
	if err := c.do(ctx, http.MethodGet, "/posts/drafts", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// CreatePost creates a draft or published post.
func (c *Client) CreatePost(ctx context.Context, req model.CreatePostRequest) (*model.Post, error) {
	var post model.Post
	if err := c.do(ctx, http.MethodPost, "/posts", req, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost patches an owned post.
func (c *Client) UpdatePost(ctx context.Context, postID int64, req model.UpdatePostRequest) (*model.Post, error) {
	if postID <= 0 {
		return nil, ErrInvalidID
	}
	var post model.Post
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/posts/%d", postID), req, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost soft-deletes an owned post.
func (c *Client) DeletePost(ctx context.Context, postID int64) error {
	if postID <= 0 {
		return ErrInvalidID
	}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d", postID), nil, nil)
}

// ListComments fetches the flat comment list for a post.
func (c *Client) ListComments(ctx context.Context, postID int64) ([]model.Comment, error) {
	if postID <= 0 {
		return nil, ErrInvalidID
	}
	var resp model.CommentListResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/posts/%d/comments", postID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Comments, nil
}

// CreateComment adds a comment or reply to a post.
func (c *Client) CreateComment(ctx context.Context, postID int64, req model.CreateCommentRequest) (*model.Comment, error) {
	if postID <= 0 {
		return nil, ErrInvalidID
	}
	var comment model.Comment
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/posts/%d/comments", postID), req, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes an owned comment.
func (c *Client) DeleteComment(ctx context.Context, commentID int64) error {
	if commentID <= 0 {
		return ErrInvalidID
	}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/comments/%d", commentID), nil, nil)
}

// TogglePostLike flips the caller's like and returns the server's state.
func (c *Client) TogglePostLike(ctx context.Context, postID int64) (*model.LikeResult, error) {
	if postID <= 0 {
		return nil, ErrInvalidID
	}
	var result model.LikeResult
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/posts/%d/like", postID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PostLikeStatus reads the caller's like state without changing it.
func (c *Client) PostLikeStatus(ctx context.Context, postID int64) (*model.LikeResult, error) {
	if postID <= 0 {
		return nil, ErrInvalidID
	}
	var result model.LikeResult
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/posts/%d/like", postID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ToggleFollow flips the follow edge toward a user.
func (c *Client) ToggleFollow(ctx context.Context, userID int64) (*model.FollowResult, error) {
	if userID <= 0 {
		return nil, ErrInvalidID
	}
	var result model.FollowResult
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/users/%d/follow", userID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FollowStatus reads the follow edge and counts without changing them.
func (c *Client) FollowStatus(ctx context.Context, userID int64) (*model.FollowResult, error) {
	if userID <= 0 {
		return nil, ErrInvalidID
	}
	var result model.FollowResult
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d/follow", userID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UploadImage posts a multipart image and returns its public URL.
func (c *Client) UploadImage(ctx context.Context, filename string, data []byte) (*model.UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/media/upload", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		return nil, &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Error}
	}

	var result model.UploadResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	return &result, nil
}
