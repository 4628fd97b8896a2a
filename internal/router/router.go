package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/middleware"
)

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Dependencies are the handlers and hooks the router mounts.
type Dependencies struct {
	Recipes     *api.RecipeHandler
	Catalog     *api.CatalogHandler
	Users       *api.UserHandler
	Auth        middleware.TokenValidator
	CORSOrigins []string
	// HealthChecks are probed by GET /health, keyed by dependency name.
	HealthChecks map[string]HealthCheck
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(),
		metrics.Middleware(),
		middleware.CORS(deps.CORSOrigins),
		middleware.ErrorHandler(),
	)

	router.GET("/health", healthHandler(deps.HealthChecks))
	router.GET("/metrics", metrics.Handler())

	v1 := router.Group("/api")
	deps.Catalog.RegisterRoutes(v1)
	deps.Recipes.RegisterRoutes(v1, deps.Auth)
	deps.Users.RegisterRoutes(v1)

	return router
}

func healthHandler(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				results[name] = err.Error()
				continue
			}
			results[name] = "ok"
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{"status": state, "checks": results})
	}
}
