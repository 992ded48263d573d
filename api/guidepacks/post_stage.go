package guidepacks

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/guidepack/api/types"
	"github.com/killallgit/guidepack/internal/pipeline"
)

// PostStage runs one stage synchronously and returns once its artifact is
// on disk. The optional JSON body overrides render settings.
// @Summary Run a stage
// @Description Runs features, guide, mask, background, composite or mux for one guidepack. Render settings are decided from the body, the features record and configured defaults.
// @Tags stages
// @Accept json
// @Produce json
// @Param id path string true "Guidepack ID"
// @Param stage path string true "Stage name" Enums(features, guide, mask, background, composite, mux)
// @Param request body pipeline.Request false "Render settings"
// @Success 200 {object} types.StageResponse
// @Failure 400 {object} types.ErrorResponse "Missing input artifact or bad body"
// @Failure 404 {object} types.ErrorResponse "Guidepack not found"
// @Failure 409 {object} types.ErrorResponse "Stage already running"
// @Failure 422 {object} types.ErrorResponse "Artifacts disagree"
// @Failure 502 {object} types.ErrorResponse "Renderer failed"
// @Failure 504 {object} types.ErrorResponse "Stage timed out"
// @Router /api/v1/guidepacks/{id}/{stage} [post]
func PostStage(deps *types.Dependencies, st pipeline.Stage) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req pipeline.Request
		if !types.BindOptionalJSON(c, &req) {
			return
		}

		id := c.Param("id")
		params, err := runStage(c.Request.Context(), deps.Orchestrator, id, st, req)
		if err != nil {
			types.SendError(c, err)
			return
		}

		types.SendSuccess(c, types.StageResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK, Message: fmt.Sprintf("Stage %s completed", st)},
			ID:           id,
			Stage:        string(st),
			Artifact:     st.Output(),
			Params:       params,
		})
	}
}

// runStage dispatches to the orchestrator. Params are returned for the
// stages that consume them.
func runStage(ctx context.Context, o *pipeline.Orchestrator, id string, st pipeline.Stage, req pipeline.Request) (*pipeline.Params, error) {
	switch st {
	case pipeline.StageFeatures:
		_, err := o.Features(ctx, id, req.FPS, nil)
		return nil, err
	case pipeline.StageComposite:
		return nil, o.Composite(ctx, id, nil)
	}

	params, err := o.Params(id, req)
	if err != nil {
		return nil, err
	}
	switch st {
	case pipeline.StageGuide:
		err = o.Guide(ctx, id, params, nil)
	case pipeline.StageMask:
		err = o.Mask(ctx, id, params, nil)
	case pipeline.StageBackground:
		err = o.Background(ctx, id, params, nil)
	case pipeline.StageMux:
		err = o.Mux(ctx, id, params, nil)
	default:
		err = fmt.Errorf("stage %s cannot be run on its own", st)
	}
	if err != nil {
		return nil, err
	}
	return &params, nil
}
