package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"writehub/internal/config"
	"writehub/internal/httputil"
	"writehub/internal/model"
	"writehub/internal/service"
	"writehub/internal/transport/http/middleware"
)

// AuthHandler groups auth-related HTTP endpoints and their dependencies.
type AuthHandler struct {
	userService *service.UserService
	authService *service.AuthService
	config      *config.Config
}

// NewAuthHandler wires dependencies for authentication endpoints.
func NewAuthHandler(userService *service.UserService, authService *service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
		config:      cfg,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrEmailExists) {
			httputil.WriteConflict(w, "Email already registered")
			return
		}
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	token, err := h.authService.IssueToken(user.ID, user.Email)
	if err != nil {
		httputil.WriteInternalError(w, "Failed to issue token")
		return
	}
	h.setSessionCookie(w, token)

	httputil.WriteSuccess(w, http.StatusCreated, model.LoginResponse{
		User:      user,
		Token:     token,
		ExpiresIn: h.config.TokenMaxAge,
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if req.Email == "" {
		httputil.WriteBadRequest(w, "Email is required")
		return
	}
	if req.Password == "" {
		httputil.WriteBadRequest(w, "Password is required")
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			httputil.WriteUnauthorized(w, "Invalid email or password")
			return
		}
		httputil.WriteInternalError(w, "Failed to login")
		return
	}

	token, err := h.authService.IssueToken(user.ID, user.Email)
	if err != nil {
		httputil.WriteInternalError(w, "Failed to issue token")
		return
	}
	h.setSessionCookie(w, token)

	httputil.WriteSuccess(w, http.StatusOK, model.LoginResponse{
		User:      user,
		Token:     token,
		ExpiresIn: h.config.TokenMaxAge,
	})
}

// Me returns the currently authenticated user
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to get user")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, user)
}

// Logout handles POST /auth/logout
// Stateless tokens can't be revoked server-side; clearing the cookie ends
// the browser session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	httputil.WriteSuccess(w, http.StatusOK, map[string]string{
		"message": "Logged out successfully",
	})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(time.Duration(h.config.TokenMaxAge) * time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
