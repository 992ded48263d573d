package guidepacks

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/guidepack/api/types"
)

// List returns every guidepack found under the storage root
// @Summary List guidepacks
// @Description Lists guidepack directories, newest first, with the artifacts each one holds
// @Tags guidepacks
// @Produce json
// @Success 200 {object} types.GuidepackListResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /api/v1/guidepacks [get]
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		summaries, err := deps.Orchestrator.Store().List()
		if err != nil {
			types.SendError(c, err)
			return
		}
		types.SendSuccess(c, types.GuidepackListResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK, Message: "Guidepacks retrieved"},
			Guidepacks:   summaries,
			Count:        len(summaries),
		})
	}
}
