package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"writehub/internal/httputil"
	"writehub/internal/model"
	"writehub/internal/service"
	"writehub/internal/transport/http/middleware"
)

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{
		postService: postService,
	}
}

// Create handles POST /posts
// Creates a new draft or published post for the authenticated user.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.postService.Create(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrTitleRequired):
			httputil.WriteBadRequest(w, "Title is required")
		case errors.Is(err, model.ErrBodyRequired):
			httputil.WriteBadRequest(w, "Content is required")
		case errors.Is(err, model.ErrTitleTooLong):
			httputil.WriteBadRequest(w, "Title too long (max 300 characters)")
		case errors.Is(err, model.ErrSlugConflict):
			httputil.WriteConflict(w, "Could not allocate a unique slug for this title")
		default:
			log.Printf("[ERROR] Create post handler: user=%d err=%v", userID, err)
			httputil.WriteInternalError(w, "Failed to create post")
		}
		return
	}

	httputil.WriteSuccess(w, http.StatusCreated, post)
}

// GetByID handles GET /posts/:id
// Returns a single post with full details. Drafts resolve only for their author.
func (h *PostHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	viewerID := viewerFromContext(r)

	post, err := h.postService.GetByID(r.Context(), postID, viewerID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Printf("[ERROR] Get post handler: post=%d err=%v", postID, err)
		httputil.WriteInternalError(w, "Failed to get post")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, post)
}

// GetBySlug handles GET /posts/slug/:slug
// Returns a published post by slug and counts the view.
func (h *PostHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		httputil.WriteBadRequest(w, "Invalid slug")
		return
	}

	viewerID := viewerFromContext(r)

	post, err := h.postService.GetBySlug(r.Context(), slug, viewerID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Printf("[ERROR] Get post by slug handler: slug=%s err=%v", slug, err)
		httputil.WriteInternalError(w, "Failed to get post")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, post)
}

// Update handles PUT /posts/:id
// Applies a partial patch; only the owner may edit.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	var req model.UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.postService.Update(r.Context(), postID, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrNotPostOwner):
			httputil.WriteForbidden(w, "You can only edit your own posts")
		case errors.Is(err, model.ErrTitleRequired):
			httputil.WriteBadRequest(w, "Title is required")
		case errors.Is(err, model.ErrBodyRequired):
			httputil.WriteBadRequest(w, "Content is required")
		case errors.Is(err, model.ErrTitleTooLong):
			httputil.WriteBadRequest(w, "Title too long (max 300 characters)")
		case errors.Is(err, model.ErrSlugConflict):
			httputil.WriteConflict(w, "Could not allocate a unique slug for this title")
		default:
			log.Printf("[ERROR] Update post handler: user=%d post=%d err=%v", userID, postID, err)
			httputil.WriteInternalError(w, "Failed to update post")
		}
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, post)
}

// Delete handles DELETE /posts/:id
// Soft-deletes a post (only owner can delete).
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	err = h.postService.Delete(r.Context(), postID, userID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrNotPostOwner):
			httputil.WriteForbidden(w, "You can only delete your own posts")
		default:
			log.Printf("[ERROR] Delete post handler: user=%d post=%d err=%v", userID, postID, err)
			httputil.WriteInternalError(w, "Failed to delete post")
		}
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, map[string]string{
		"message": "Post deleted successfully",
	})
}

// List handles GET /posts
// Returns a page of published posts, optionally filtered by tag or author.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	viewerID := viewerFromContext(r)

	filter := model.PostFilter{
		Tag:   r.URL.Query().Get("tag"),
		Page:  parseIntParam(r, "page", 1),
		Limit: parseIntParam(r, "limit", 10),
	}
	if a := r.URL.Query().Get("author"); a != "" {
		authorID, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid author parameter")
			return
		}
		filter.AuthorID = authorID
	}

	posts, err := h.postService.List(r.Context(), filter, viewerID)
	if err != nil {
		log.Printf("[ERROR] List posts handler: err=%v", err)
		httputil.WriteInternalError(w, "Failed to list posts")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, posts)
}

// ListDrafts handles GET /posts/drafts
// Returns the authenticated user's drafts.
func (h *PostHandler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	page := parseIntParam(r, "page", 1)
	limit := parseIntParam(r, "limit", 10)

	posts, err := h.postService.ListDrafts(r.Context(), userID, page, limit)
	if err != nil {
		log.Printf("[ERROR] List drafts handler: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to list drafts")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, posts)
}

// ListFeed handles GET /posts/feed
// Returns published posts from followed authors.
func (h *PostHandler) ListFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	page := parseIntParam(r, "page", 1)
	limit := parseIntParam(r, "limit", 10)

	posts, err := h.postService.ListFeed(r.Context(), userID, page, limit)
	if err != nil {
		log.Printf("[ERROR] List feed handler: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to list feed")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, posts)
}

// Search handles GET /posts/search?q=...
func (h *PostHandler) Search(w http.ResponseWriter, r *http.Request) {
	viewerID := viewerFromContext(r)

	query := r.URL.Query().Get("q")
	page := parseIntParam(r, "page", 1)
	limit := parseIntParam(r, "limit", 10)

	posts, err := h.postService.Search(r.Context(), query, page, limit, viewerID)
	if err != nil {
		log.Printf("[ERROR] Search posts handler: q=%q err=%v", query, err)
		httputil.WriteInternalError(w, "Failed to search posts")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, posts)
}

// viewerFromContext returns the authenticated user's ID as a nullable viewer.
func viewerFromContext(r *http.Request) *int64 {
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		return &id
	}
	return nil
}

// parseIntParam reads a positive integer query parameter with a default.
func parseIntParam(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
