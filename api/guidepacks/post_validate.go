package guidepacks

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/guidepack/api/types"
)

// PostValidate checks mask.mp4 against guide.mp4
// @Summary Validate mask against guide
// @Description Probes both videos for matching geometry and frame rate and samples the mask for non-binary frames
// @Tags stages
// @Produce json
// @Param id path string true "Guidepack ID"
// @Success 200 {object} types.ValidationResponse
// @Failure 400 {object} types.ErrorResponse "Guide or mask missing"
// @Failure 404 {object} types.ErrorResponse "Guidepack not found"
// @Failure 422 {object} types.ErrorResponse "Mask does not match guide"
// @Router /api/v1/guidepacks/{id}/validate [post]
func PostValidate(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		report, err := deps.Orchestrator.Validate(c.Request.Context(), id, nil)
		if err != nil {
			types.SendError(c, err)
			return
		}
		types.SendSuccess(c, types.ValidationResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK, Message: "Mask is consistent with guide"},
			ID:           id,
			Report:       report,
		})
	}
}
