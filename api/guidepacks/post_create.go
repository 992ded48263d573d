package guidepacks

import (
	"github.com/gin-gonic/gin"

	"github.com/killallgit/guidepack/api/types"
	"github.com/killallgit/guidepack/internal/logging"
	"github.com/killallgit/guidepack/internal/services/cleanup"
	apperrors "github.com/killallgit/guidepack/pkg/errors"
)

// Create normalizes a source audio file into a new guidepack
// @Summary Create a guidepack
// @Description Normalizes a source audio file to 48 kHz stereo PCM and records its metadata. Send the file as multipart field "file", or a JSON body naming a file already on the server or a URL to download.
// @Tags guidepacks
// @Accept json,mpfd
// @Produce json
// @Param file formData file false "Source audio file"
// @Param request body types.CreateGuidepackRequest false "Server-side source path or URL"
// @Success 201 {object} types.GuidepackResponse "Guidepack created"
// @Failure 400 {object} types.ErrorResponse "Missing or unreadable source"
// @Failure 502 {object} types.ErrorResponse "ffmpeg or source download failed"
// @Failure 503 {object} types.ErrorResponse "ffmpeg not available"
// @Router /api/v1/guidepacks [post]
func Create(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		source, release, ok := resolveSource(c, deps)
		if !ok {
			return
		}
		defer release()

		meta, err := deps.Orchestrator.Normalize(c.Request.Context(), source, nil)
		if err != nil {
			types.SendError(c, err)
			return
		}

		types.SendCreated(c, types.GuidepackResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK, Message: "Guidepack created"},
			ID:           meta.ID,
			Meta:         meta,
		})
	}
}

// resolveSource returns the path to normalize. Uploads and downloads are
// staged under the guidepack root and removed once normalization finished.
func resolveSource(c *gin.Context, deps *types.Dependencies) (string, func(), bool) {
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		var req types.CreateGuidepackRequest
		if !types.BindJSONOrError(c, &req) {
			return "", nil, false
		}
		switch {
		case (req.FilePath == "") == (req.URL == ""):
			types.SendError(c, apperrors.ValidationError("filePath", "exactly one of filePath or url is required"))
			return "", nil, false
		case req.URL != "":
			return fetchSource(c, deps, req.URL)
		}
		return req.FilePath, func() {}, true
	}

	header, err := c.FormFile("file")
	if err != nil {
		types.SendError(c, apperrors.InputError("upload field \"file\"").WithCause(err))
		return "", nil, false
	}
	f, err := header.Open()
	if err != nil {
		types.SendError(c, apperrors.InputError("upload field \"file\"").WithCause(err))
		return "", nil, false
	}
	defer f.Close()

	store := deps.Orchestrator.Store()
	staged, err := store.StageUpload(header.Filename, f)
	if err != nil {
		types.SendError(c, err)
		return "", nil, false
	}
	return staged, func() {
		cleanup.RemoveStaged(store.StagingDir(), staged, logging.NewComponentLogger(deps.Logger, "api"))
	}, true
}

func fetchSource(c *gin.Context, deps *types.Dependencies, url string) (string, func(), bool) {
	if deps.Downloader == nil {
		types.SendError(c, apperrors.ValidationError("url", "remote sources are not enabled"))
		return "", nil, false
	}
	result, err := deps.Downloader.Fetch(c.Request.Context(), url)
	if err != nil {
		types.SendError(c, err)
		return "", nil, false
	}
	stagingDir := deps.Orchestrator.Store().StagingDir()
	return result.FilePath, func() {
		cleanup.RemoveStaged(stagingDir, result.FilePath, logging.NewComponentLogger(deps.Logger, "api"))
	}, true
}
