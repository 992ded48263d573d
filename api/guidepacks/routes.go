package guidepacks

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/guidepack/api/types"
	"github.com/killallgit/guidepack/internal/pipeline"
)

// RegisterRoutes registers guidepack routes. stageLimit guards the
// endpoints that spawn renderers.
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies, stageLimit gin.HandlerFunc) {
	// GET /api/v1/guidepacks - List guidepacks on disk
	router.GET("", List(deps))

	// GET /api/v1/guidepacks/:id/status - Per-stage state and artifact presence
	router.GET("/:id/status", GetStatus(deps))

	// GET|HEAD /api/v1/guidepacks/:id/artifacts/:name - Serve or probe one artifact
	router.GET("/:id/artifacts/:name", GetArtifact(deps))
	router.HEAD("/:id/artifacts/:name", GetArtifact(deps))

	stages := router.Group("")
	if stageLimit != nil {
		stages.Use(stageLimit)
	}

	// POST /api/v1/guidepacks - Normalize a source file into a new guidepack
	stages.POST("", Create(deps))

	// POST /api/v1/guidepacks/:id/<stage> - Run one stage synchronously
	for _, st := range []pipeline.Stage{
		pipeline.StageFeatures,
		pipeline.StageGuide,
		pipeline.StageMask,
		pipeline.StageBackground,
		pipeline.StageComposite,
		pipeline.StageMux,
	} {
		stages.POST("/:id/"+string(st), PostStage(deps, st))
	}
	stages.POST("/:id/validate", PostValidate(deps))

	// POST /api/v1/guidepacks/:id/render - Queue the full chain
	stages.POST("/:id/render", PostRender(deps))
}
