package guidepacks

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/guidepack/api/types"
	apperrors "github.com/killallgit/guidepack/pkg/errors"
)

// GetStatus reports the per-stage state of one guidepack
// @Summary Guidepack status
// @Description Per-stage state, artifact presence and the latest render job. Stage state lives in memory; after a restart it is derived from artifacts on disk.
// @Tags guidepacks
// @Produce json
// @Param id path string true "Guidepack ID"
// @Success 200 {object} types.StatusResponse
// @Failure 400 {object} types.ErrorResponse "Malformed ID"
// @Failure 404 {object} types.ErrorResponse "Guidepack not found"
// @Router /api/v1/guidepacks/{id}/status [get]
func GetStatus(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		status, err := deps.Orchestrator.Status(id)
		if err != nil {
			types.SendError(c, err)
			return
		}
		artifacts, err := deps.Orchestrator.Store().Inventory(id)
		if err != nil {
			types.SendError(c, err)
			return
		}

		resp := types.StatusResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK, Message: "Status retrieved"},
			ID:           status.ID,
			Phase:        status.Phase,
			Stages:       status.Stages,
			Artifacts:    artifacts,
		}

		if deps.JobService != nil {
			job, err := deps.JobService.GetJobForGuidepack(c.Request.Context(), id)
			switch {
			case err == nil:
				view := types.NewJobResponse(job, "")
				resp.Job = &view
			case !apperrors.Is(err, apperrors.ErrCodeNotFound):
				types.SendError(c, err)
				return
			}
		}

		types.SendSuccess(c, resp)
	}
}
