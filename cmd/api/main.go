package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open database")
	}
	if err := database.RunMigrations(db); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Redis is optional: without it rate limiting and the tag cache are off.
	var redisClient *redis.Client
	if client, err := database.NewRedisClient(cfg); err != nil {
		logging.Warn().Err(err).Msg("redis unavailable, continuing without rate limiting")
	} else {
		redisClient = client
		defer redisClient.Close()
	}

	var images service.ImageStore
	if cfg.S3Bucket != "" {
		s3Config, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to configure S3")
		}
		images = service.NewS3ImageStore(s3Config)
		logging.Info().Str("bucket", s3Config.BucketName).Msg("storing recipe images in S3")
	} else {
		images = service.NewLocalImageStore(cfg.MediaDir, cfg.MediaBaseURL)
		logging.Info().Str("dir", cfg.MediaDir).Msg("storing recipe images on local disk")
	}

	srv := server.New(cfg, db, redisClient, images)
	if err := srv.Start(ctx); err != nil {
		logging.Fatal().Err(err).Msg("server error")
	}
	logging.Info().Msg("server stopped")
}
