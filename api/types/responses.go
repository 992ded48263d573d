package types

import (
	"github.com/killallgit/guidepack/internal/guidepack"
	"github.com/killallgit/guidepack/internal/models"
	"github.com/killallgit/guidepack/internal/pipeline"
	"github.com/killallgit/guidepack/internal/validator"
)

// Status constants for API responses
const (
	StatusOK         = "ok"
	StatusError      = "error"
	StatusProcessing = "processing"
	StatusFailed     = "failed"
	StatusQueued     = "queued"
)

// BaseResponse contains fields common to all API responses
type BaseResponse struct {
	Status  string `json:"status"`  // One of the Status constants above
	Message string `json:"message"` // Human-readable message
}

// ErrorResponse for detailed error information
type ErrorResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`   // Error code/type
	Details interface{} `json:"details,omitempty"` // Additional error details
}

// CreateGuidepackRequest names a source file already on the server's disk
// or a URL to download it from. Exactly one must be set. Uploads use
// multipart form field "file" instead.
type CreateGuidepackRequest struct {
	FilePath string `json:"filePath,omitempty" example:"/data/in/song.mp3"`
	URL      string `json:"url,omitempty" example:"https://example.com/song.mp3"`
}

// GuidepackResponse for the normalize endpoint
type GuidepackResponse struct {
	BaseResponse
	ID   string          `json:"id"`
	Meta *guidepack.Meta `json:"meta"`
}

// GuidepackListResponse for the list endpoint
type GuidepackListResponse struct {
	BaseResponse
	Guidepacks []guidepack.Summary `json:"guidepacks"`
	Count      int                 `json:"count"`
}

// StatusResponse reports per-stage state and artifact presence
type StatusResponse struct {
	BaseResponse
	ID        string                   `json:"id"`
	Phase     string                   `json:"phase"`
	Stages    []pipeline.StageView     `json:"stages"`
	Artifacts []guidepack.ArtifactInfo `json:"artifacts"`
	Job       *JobResponse             `json:"job,omitempty"`
}

// StageResponse for a single stage invocation
type StageResponse struct {
	BaseResponse
	ID       string           `json:"id"`
	Stage    string           `json:"stage"`
	Artifact string           `json:"artifact,omitempty"`
	Params   *pipeline.Params `json:"params,omitempty"`
}

// ValidationResponse for the validate endpoint
type ValidationResponse struct {
	BaseResponse
	ID     string           `json:"id"`
	Report validator.Report `json:"report"`
}

// JobResponse for async job status
type JobResponse struct {
	BaseResponse
	JobID    uint        `json:"jobId"`
	Type     string      `json:"type"`
	State    string      `json:"state"`
	Stage    string      `json:"stage,omitempty"`
	Progress int         `json:"progress"` // 0-100
	Result   interface{} `json:"result,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// NewJobResponse maps a queued job to its API view
func NewJobResponse(job *models.Job, message string) JobResponse {
	resp := JobResponse{
		BaseResponse: BaseResponse{Status: StatusOK, Message: message},
		JobID:        job.ID,
		Type:         string(job.Type),
		State:        string(job.Status),
		Stage:        job.Stage,
		Progress:     job.Progress,
		Error:        job.Error,
	}
	if len(job.Result) > 0 {
		resp.Result = job.Result
	}
	switch job.Status {
	case models.JobStatusPending:
		resp.Status = StatusQueued
	case models.JobStatusProcessing:
		resp.Status = StatusProcessing
	case models.JobStatusFailed, models.JobStatusPermanentlyFailed:
		resp.Status = StatusFailed
	}
	return resp
}
