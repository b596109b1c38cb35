package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"writehub/internal/handler"
	"writehub/internal/httputil"
	authmw "writehub/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	PostHandler    *handler.PostHandler
	CommentHandler *handler.CommentHandler
	SocialHandler  *handler.SocialHandler
	MediaHandler   *handler.MediaHandler
	JWTSecret      string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	optional := authmw.OptionalAuthMiddleware(cfg.JWTSecret)

	// Public routes - no authentication required
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/logout", cfg.AuthHandler.Logout)
	})

	// Public user endpoints with optional authentication
	r.Route("/users", func(r chi.Router) {
		r.With(optional).Get("/search", cfg.UserHandler.Search)
		r.With(optional).Get("/{id}", cfg.UserHandler.GetProfile)
		r.With(optional).Get("/{id}/followers", cfg.SocialHandler.ListFollowers)
		r.With(optional).Get("/{id}/following", cfg.SocialHandler.ListFollowing)
	})

	// Public post endpoints with optional authentication. Drafts and like
	// state resolve from the viewer when a token is present.
	r.Group(func(r chi.Router) {
		r.Use(optional)
		r.Get("/posts", cfg.PostHandler.List)
		r.Get("/posts/search", cfg.PostHandler.Search)
		r.Get("/posts/slug/{slug}", cfg.PostHandler.GetBySlug)
		r.Get("/posts/{id}", cfg.PostHandler.GetByID)
		r.Get("/posts/{id}/comments", cfg.CommentHandler.List)
	})

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		// Current user endpoints
		r.Get("/me", cfg.AuthHandler.Me)
		r.Put("/users/me", cfg.UserHandler.UpdateProfile)

		// Follow actions
		r.Post("/users/{id}/follow", cfg.SocialHandler.ToggleFollow)
		r.Get("/users/{id}/follow", cfg.SocialHandler.FollowStatus)

		// Post endpoints
		r.Post("/posts", cfg.PostHandler.Create)
		r.Get("/posts/drafts", cfg.PostHandler.ListDrafts)
		r.Get("/posts/feed", cfg.PostHandler.ListFeed)
		r.Put("/posts/{id}", cfg.PostHandler.Update)
		r.Delete("/posts/{id}", cfg.PostHandler.Delete)
		r.Post("/posts/{id}/like", cfg.SocialHandler.TogglePostLike)
		r.Get("/posts/{id}/like", cfg.SocialHandler.PostLikeStatus)

		// Comment endpoints
		r.Post("/posts/{id}/comments", cfg.CommentHandler.Create)
		r.Delete("/comments/{id}", cfg.CommentHandler.Delete)
		r.Post("/comments/{id}/like", cfg.CommentHandler.ToggleLike)

		// Media endpoints
		if cfg.MediaHandler != nil {
			r.Post("/media/upload", cfg.MediaHandler.Upload)
		}
	})

	return r
}
