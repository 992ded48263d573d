package guidepacks

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/guidepack/api/types"
	"github.com/killallgit/guidepack/internal/models"
	"github.com/killallgit/guidepack/internal/pipeline"
	"github.com/killallgit/guidepack/internal/services/jobs"
	apperrors "github.com/killallgit/guidepack/pkg/errors"
)

// PostRender queues the full chain for one guidepack
// @Summary Render a guidepack
// @Description Queues features through mux as a background job. A live job for the same guidepack is returned instead of queueing a second one.
// @Tags guidepacks
// @Accept json
// @Produce json
// @Param id path string true "Guidepack ID"
// @Param request body pipeline.Request false "Render settings"
// @Success 202 {object} types.JobResponse "Render queued"
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse "Guidepack not found"
// @Failure 503 {object} types.ErrorResponse "Job queue not configured"
// @Router /api/v1/guidepacks/{id}/render [post]
func PostRender(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.JobService == nil {
			err := apperrors.New(apperrors.ErrCodeInternal, "render queue not configured")
			err.HTTPCode = http.StatusServiceUnavailable
			types.SendError(c, err)
			return
		}

		var req pipeline.Request
		if !types.BindOptionalJSON(c, &req) {
			return
		}

		id := c.Param("id")
		if _, err := deps.Orchestrator.Store().Dir(id); err != nil {
			types.SendError(c, err)
			return
		}

		var opts []jobs.JobOption
		if deps.Config != nil {
			opts = append(opts, jobs.WithMaxRetries(deps.Config.Processing.RetryAttempts))
		}
		job, err := deps.JobService.EnqueueUniqueJob(c.Request.Context(), models.JobTypeRender, models.JobPayload{
			models.PayloadGuidepackID: id,
			models.PayloadRequest:     req,
		}, models.PayloadGuidepackID, append(opts, jobs.WithCreatedBy("api"))...)
		if err != nil {
			types.SendError(c, err)
			return
		}

		types.SendAccepted(c, types.NewJobResponse(job, "Render queued"))
	}
}
