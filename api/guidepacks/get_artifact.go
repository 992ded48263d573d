package guidepacks

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/guidepack/api/types"
	"github.com/killallgit/guidepack/internal/guidepack"
	apperrors "github.com/killallgit/guidepack/pkg/errors"
)

// GetArtifact serves one artifact. HEAD answers the same headers without a
// body and is what readiness probes poll. Empty files are not ready.
// @Summary Fetch or probe an artifact
// @Tags guidepacks
// @Produce octet-stream
// @Param id path string true "Guidepack ID"
// @Param name path string true "Artifact name" Enums(audio.wav, meta.json, features.json, guide.mp4, mask.mp4, bg_blender.mp4, composited.mp4, final.mp4)
// @Success 200 {file} file
// @Failure 400 {object} types.ErrorResponse "Unknown artifact or malformed ID"
// @Failure 404 {object} types.ErrorResponse "Artifact not ready"
// @Router /api/v1/guidepacks/{id}/artifacts/{name} [get]
// @Router /api/v1/guidepacks/{id}/artifacts/{name} [head]
func GetArtifact(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		info, err := deps.Orchestrator.Store().Probe(c.Param("id"), name)
		if err != nil {
			types.SendError(c, err)
			return
		}

		c.Header("Cache-Control", "no-store")
		if !info.Present || info.Size == 0 {
			types.SendError(c, apperrors.NotFound("artifact", name))
			return
		}

		c.Header("Content-Type", guidepack.ContentType(name))
		c.Header("Content-Length", strconv.FormatInt(info.Size, 10))
		c.File(info.Path)
	}
}
