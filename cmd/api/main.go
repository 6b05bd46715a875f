package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tastebook/backend/config"
	"github.com/tastebook/backend/internal/api"
	"github.com/tastebook/backend/internal/database"
	"github.com/tastebook/backend/internal/middleware"
	"github.com/tastebook/backend/internal/router"
	"github.com/tastebook/backend/internal/server"
	"github.com/tastebook/backend/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := database.New(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}

	s3Config, err := config.NewS3Config(context.Background(), cfg)
	if err != nil {
		logger.Fatal("failed to initialize S3", zap.Error(err))
	}
	if s3Config == nil {
		logger.Info("S3 not configured, image uploads disabled")
	}

	emailService := service.NewEmailService(cfg, logger)
	tokenStore := service.NewRedisTokenStore(redisClient)
	authService := service.NewAuthService(db, tokenStore, emailService, cfg.JWTSecret, cfg.BaseURL)
	recipeService := service.NewRecipeService(db)
	tagService := service.NewTagService(db)
	profileService := service.NewProfileService(db)

	var imageService *service.ImageService
	if s3Config != nil {
		imageService = service.NewImageService(s3Config)
	}

	handlers := router.Handlers{
		Auth:    api.NewAuthHandler(authService, middleware.NewMagicLinkRateLimiter(redisClient)),
		Recipe:  api.NewRecipeHandler(recipeService),
		Tag:     api.NewTagHandler(tagService),
		Profile: api.NewProfileHandler(profileService),
		Image:   api.NewImageHandler(imageService),
		Health:  api.NewHealthHandler(db),
	}

	engine := router.SetupRouter(handlers, authService, db, logger)
	srv := server.New(engine, cfg.ServerHost, cfg.ServerPort, logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		logger.Info("received signal", zap.String("signal", sig.String()))
	}

	logger.Info("shutting down server")
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Fatal("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}
