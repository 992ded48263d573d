package jobs

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/guidepack/api/types"
)

// RegisterRoutes registers job routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	// GET /api/v1/jobs/:id - Render job state and result
	router.GET("/:id", GetByID(deps))
}
