package version

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Version is the API version reported by the root endpoint
const Version = "1.0.0"

// Get handles version requests
// @Summary      Service information
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       / [get]
func Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "Guidepack API",
			"version":     Version,
			"description": "Audio to guidepack video rendering pipeline",
			"status":      "running",
		})
	}
}
