package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
}

// New wires the services and handlers. redisClient may be nil, which
// disables rate limiting and the tag cache.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, images service.ImageStore) *Server {
	auth := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL)
	recipes := service.NewRecipeService(db, images)
	ledger := service.NewLedgerService(db)
	shopping := service.NewShoppingListService(db, cfg.PDFFontPath)

	recipeHandler := api.NewRecipeHandler(recipes, ledger, shopping,
		middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RecipeCreationLimit),
		middleware.NewRecipeModificationRateLimiter(redisClient),
	)
	catalogHandler := api.NewCatalogHandler(service.NewIngredientService(db), service.NewTagService(db, redisClient))
	userHandler := api.NewUserHandler(auth, service.NewSubscriptionService(db))

	checks := map[string]router.HealthCheck{
		"database": func(ctx context.Context) error { return database.HealthCheck(ctx, db) },
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	engine := router.SetupRouter(router.Dependencies{
		Recipes:      recipeHandler,
		Catalog:      catalogHandler,
		Users:        userHandler,
		Auth:         auth,
		CORSOrigins:  cfg.CORSOrigins,
		HealthChecks: checks,
	})
	if cfg.MediaDir != "" && cfg.S3Bucket == "" {
		engine.Static(cfg.MediaBaseURL, cfg.MediaDir)
	}

	return &Server{
		router: engine,
		db:     db,
		http: &http.Server{
			Addr:              cfg.ServerAddr(),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.http.Addr).Msg("starting HTTP server")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logging.Info().Msg("shutting down HTTP server")
	return s.Stop(shutdownCtx)
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}
