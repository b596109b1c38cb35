package handler

import (
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

type SocialHandler struct {
	socialService *service.SocialService
}

func NewSocialHandler(socialService *service.SocialService) *SocialHandler {
	return &SocialHandler{
		socialService: socialService,
	}
}

// TogglePostLike handles POST /posts/:id/like
// Flips the caller's like and returns the authoritative {liked, count}.
func (h *SocialHandler) TogglePostLike(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.socialService.TogglePostLike(r.Context(), postID, userID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Printf("[ERROR] Toggle post like handler: user=%d post=%d err=%v", userID, postID, err)
		httputil.WriteInternalError(w, "Failed to toggle like")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, result)
}

// PostLikeStatus handles GET /posts/:id/like
func (h *SocialHandler) PostLikeStatus(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.socialService.PostLikeStatus(r.Context(), postID, userID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Printf("[ERROR] Post like status handler: user=%d post=%d err=%v", userID, postID, err)
		httputil.WriteInternalError(w, "Failed to get like status")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, result)
}

// ToggleFollow handles POST /users/:id/follow
// Flips the follow edge and returns {following, followers_count, following_count}.
func (h *SocialHandler) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	followeeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	result, err := h.socialService.ToggleFollow(r.Context(), followerID, followeeID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrSelfFollow):
			httputil.WriteBadRequest(w, "You cannot follow yourself")
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		default:
			log.Printf("[ERROR] Toggle follow handler: follower=%d followee=%d err=%v", followerID, followeeID, err)
			httputil.WriteInternalError(w, "Failed to toggle follow")
		}
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, result)
}

// FollowStatus handles GET /users/:id/follow
func (h *SocialHandler) FollowStatus(w http.ResponseWriter, r *http.Request) {
	followerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	followeeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	result, err := h.socialService.FollowStatus(r.Context(), followerID, followeeID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] Follow status handler: follower=%d followee=%d err=%v", followerID, followeeID, err)
		httputil.WriteInternalError(w, "Failed to get follow status")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, result)
}

// ListFollowers handles GET /users/:id/followers
func (h *SocialHandler) ListFollowers(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	page := parseIntParam(r, "page", 1)
	limit := parseIntParam(r, "limit", 10)

	result, err := h.socialService.ListFollowers(r.Context(), userID, viewerFromContext(r), page, limit)
	if err != nil {
		log.Printf("[ERROR] List followers handler: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to list followers")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, result)
}

// ListFollowing handles GET /users/:id/following
func (h *SocialHandler) ListFollowing(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	page := parseIntParam(r, "page", 1)
	limit := parseIntParam(r, "limit", 10)

	result, err := h.socialService.ListFollowing(r.Context(), userID, viewerFromContext(r), page, limit)
	if err != nil {
		log.Printf("[ERROR] List following handler: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to list following")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, result)
}
