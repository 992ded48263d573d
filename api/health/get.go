package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/guidepack/api/types"
)

// Get handles health check requests
// @Summary      Health check
// @Description  Reports service, job store and worker pool health
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		response := gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}

		db := getDatabaseStatus(deps)
		if db["status"] == "unhealthy" {
			status = http.StatusServiceUnavailable
			response["status"] = "unhealthy"
		}
		response["database"] = db
		response["workers"] = getWorkerStatus(deps)

		c.JSON(status, response)
	}
}

// getDatabaseStatus returns the database connection status
func getDatabaseStatus(deps *types.Dependencies) gin.H {
	if deps == nil || deps.DB == nil || deps.DB.DB == nil {
		return gin.H{"status": "not configured"}
	}

	if err := deps.DB.HealthCheck(); err != nil {
		return gin.H{"status": "unhealthy", "error": err.Error()}
	}

	return gin.H{"status": "healthy"}
}

func getWorkerStatus(deps *types.Dependencies) gin.H {
	if deps == nil || deps.WorkerPool == nil {
		return gin.H{"status": "not configured"}
	}
	return gin.H{"status": "running", "count": deps.WorkerPool.Size()}
}
