package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"

	"writehub/internal/config"
	"writehub/internal/database"
	"writehub/internal/handler"
	"writehub/internal/notify"
	"writehub/internal/redis"
	"writehub/internal/repository"
	"writehub/internal/service"
)

func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// 3. Connect to Redis (optional). Without it the change stream is off
	// and clients rely on polling alone.
	var publisher notify.Publisher
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()
		publisher = notify.NewPublisher(redisClient.Client)
	} else {
		log.Println("REDIS_URL not set, change notifications disabled")
	}

	// 4. Build Repositories
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)

	// 5. Build Services
	userService := service.NewUserService(userRepo, followRepo, postRepo)
	authService := service.NewAuthService(cfg)
	postService := service.NewPostService(postRepo, userRepo, publisher)
	commentService := service.NewCommentService(commentRepo, postRepo, userRepo, publisher)
	socialService := service.NewSocialService(postRepo, followRepo, userRepo, publisher)

	// Media upload is optional; without R2 config clients inline images.
	var mediaHandler *handler.MediaHandler
	mediaService, err := service.NewMediaService(context.Background(), cfg)
	if err != nil {
		log.Printf("Media uploads disabled: %v", err)
	} else {
		mediaHandler = handler.NewMediaHandler(mediaService)
	}

	// 6. Build Handlers and Router
	router := NewRouter(RouterConfig{
		AuthHandler:    handler.NewAuthHandler(userService, authService, cfg),
		UserHandler:    handler.NewUserHandler(userService),
		PostHandler:    handler.NewPostHandler(postService),
		CommentHandler: handler.NewCommentHandler(commentService),
		SocialHandler:  handler.NewSocialHandler(socialService),
		MediaHandler:   mediaHandler,
		JWTSecret:      cfg.JWTSecret,
	})

	// 7. Serve
	addr := ":" + cfg.ServerPort
	log.Printf("Starting server on %s", addr)
	return stdhttp.ListenAndServe(addr, router)
}
