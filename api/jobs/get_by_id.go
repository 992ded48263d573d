package jobs

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/guidepack/api/types"
)

// GetByID returns the state of one render job
// @Summary Get job
// @Description Reports queue state, current stage, progress and, once completed, the render result
// @Tags jobs
// @Produce json
// @Param id path int true "Job ID"
// @Success 200 {object} types.JobResponse
// @Failure 400 {object} types.ErrorResponse "Invalid job ID"
// @Failure 404 {object} types.ErrorResponse "Job not found"
// @Router /api/v1/jobs/{id} [get]
func GetByID(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		job, err := deps.JobService.GetJob(c.Request.Context(), jobID)
		if err != nil {
			types.SendError(c, err)
			return
		}

		types.SendSuccess(c, types.NewJobResponse(job, "Job retrieved"))
	}
}
