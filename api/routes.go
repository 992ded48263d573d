package api

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/killallgit/guidepack/api/guidepacks"
	"github.com/killallgit/guidepack/api/health"
	"github.com/killallgit/guidepack/api/jobs"
	"github.com/killallgit/guidepack/api/types"
	"github.com/killallgit/guidepack/api/version"
	_ "github.com/killallgit/guidepack/docs/swagger"
)

// RegisterRoutes registers all API routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies, rateLimiters *sync.Map, cleanupStop chan struct{}, cleanupInitialized *sync.Once) error {
	if deps == nil || deps.Orchestrator == nil {
		return errors.New("pipeline orchestrator is required")
	}

	// Register public routes (no rate limiting)
	health.RegisterRoutes(engine, deps)
	version.RegisterRoutes(engine, deps)

	// Register Swagger documentation route
	engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
	})
	docsGroup := engine.Group("/docs")
	docsGroup.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Setup 404 handler
	engine.NoRoute(NotFoundHandler())

	// API v1 routes
	v1 := engine.Group("/api/v1")

	// Stage endpoints spawn renderers; reads stay unthrottled so readiness
	// probes can poll freely.
	var stageLimit gin.HandlerFunc
	if deps.Config != nil && deps.Config.RateLimiting.Enabled {
		rl := deps.Config.RateLimiting
		stageLimit = PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, rl.RPS, rl.Burst)
	}
	guidepacks.RegisterRoutes(v1.Group("/guidepacks"), deps, stageLimit)

	if deps.JobService != nil {
		jobs.RegisterRoutes(v1.Group("/jobs"), deps)
	}

	return nil
}

// NotFoundHandler handles 404 errors
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "error",
			"message": "The requested endpoint was not found",
			"path":    c.Request.URL.Path,
		})
	}
}
