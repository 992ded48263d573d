package workers

import (
	"context"
	"log/slog"
	"sync"

	"github.com/killallgit/guidepack/internal/logging"
	"github.com/killallgit/guidepack/internal/models"
	"github.com/killallgit/guidepack/internal/pipeline"
	"github.com/killallgit/guidepack/internal/services/jobs"
	apperrors "github.com/killallgit/guidepack/pkg/errors"
)

// Renderer runs the full pipeline for one guidepack
type Renderer interface {
	Run(ctx context.Context, id string, req pipeline.Request, obs pipeline.Observer) (*pipeline.Result, error)
	Forget(id string)
}

// RenderProcessor handles render jobs
type RenderProcessor struct {
	renderer   Renderer
	jobService jobs.Service
	logger     *slog.Logger
}

// NewRenderProcessor creates a render job processor
func NewRenderProcessor(renderer Renderer, jobService jobs.Service, logger *slog.Logger) *RenderProcessor {
	return &RenderProcessor{
		renderer:   renderer,
		jobService: jobService,
		logger:     logging.NewComponentLogger(logger, "render_processor"),
	}
}

// CanProcess returns true for render jobs
func (p *RenderProcessor) CanProcess(jobType models.JobType) bool {
	return jobType == models.JobTypeRender
}

// ProcessJob runs the pipeline named by the job payload and records its result
func (p *RenderProcessor) ProcessJob(ctx context.Context, job *models.Job) error {
	id, req, err := parseRenderPayload(job)
	if err != nil {
		return err
	}

	progress := newStageProgress(func(percent int, stage pipeline.Stage) {
		if err := p.jobService.UpdateProgress(ctx, job.ID, percent, string(stage)); err != nil {
			p.logger.Debug("progress update failed",
				slog.Uint64(logging.FieldJobID, uint64(job.ID)),
				slog.String("error", err.Error()))
		}
	})

	result, err := p.renderer.Run(ctx, id, req, progress.observe)
	if err != nil {
		return err
	}
	// the artifacts now carry the status
	p.renderer.Forget(id)

	jobResult := models.JobResult{
		models.PayloadGuidepackID: result.ID,
		"final":                   result.Final,
		"params":                  result.Params,
	}
	if result.Report != nil {
		jobResult["validation"] = result.Report
	}
	return p.jobService.CompleteJob(ctx, job.ID, jobResult)
}

func parseRenderPayload(job *models.Job) (string, pipeline.Request, error) {
	var req pipeline.Request
	id, ok := job.GetPayloadString(models.PayloadGuidepackID)
	if !ok || id == "" {
		return "", req, apperrors.ValidationError(models.PayloadGuidepackID, "missing from job payload")
	}
	if err := job.DecodePayload(models.PayloadRequest, &req); err != nil {
		return "", req, apperrors.ValidationError(models.PayloadRequest, err.Error())
	}
	return id, req, nil
}

// runStages are the stages a render job reports progress over
var runStages = []pipeline.Stage{
	pipeline.StageFeatures,
	pipeline.StageGuide,
	pipeline.StageMask,
	pipeline.StageValidate,
	pipeline.StageBackground,
	pipeline.StageComposite,
	pipeline.StageMux,
}

// stageProgress turns stage events into a percentage. Events arrive from
// concurrent stages.
type stageProgress struct {
	mu     sync.Mutex
	done   map[pipeline.Stage]bool
	report func(percent int, stage pipeline.Stage)
}

func newStageProgress(report func(int, pipeline.Stage)) *stageProgress {
	return &stageProgress{done: make(map[pipeline.Stage]bool), report: report}
}

func (s *stageProgress) observe(e pipeline.Event) {
	s.mu.Lock()
	if e.State == (pipeline.Succeeded{}).Name() {
		s.done[e.Stage] = true
	}
	percent := len(s.done) * 100 / (len(runStages) + 1)
	s.mu.Unlock()

	s.report(percent, e.Stage)
}
