package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/killallgit/guidepack/internal/guidepack"
	"github.com/killallgit/guidepack/internal/logging"
	"github.com/killallgit/guidepack/internal/stage"
	"github.com/killallgit/guidepack/internal/validator"
	apperrors "github.com/killallgit/guidepack/pkg/errors"
	"github.com/killallgit/guidepack/pkg/ffmpeg"
)

// MetadataProber reads audio stream metadata and tags
type MetadataProber interface {
	GetMetadata(ctx context.Context, path string) (*ffmpeg.AudioMetadata, error)
}

// Tools holds the configured external executables. Empty values resolve
// to the default binary name on PATH.
type Tools struct {
	FFmpeg        string
	Blender       string
	BlenderScript string
}

// Config controls an Orchestrator
type Config struct {
	Tools          Tools
	Defaults       Defaults
	StageTimeout   time.Duration
	Readiness      Backoff
	ParallelRender bool
}

// Orchestrator sequences stages over one guidepack store. Runs for
// different guidepacks share nothing but the tracker, which is keyed by id.
type Orchestrator struct {
	store     *guidepack.Store
	runner    stage.Runner
	prober    MetadataProber
	validator *validator.Validator
	tracker   *Tracker
	cfg       Config
	logger    *slog.Logger
}

// Option customizes an Orchestrator
type Option func(*Orchestrator)

// WithLogger sets the orchestrator's logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logging.NewComponentLogger(logger, "pipeline")
	}
}

// WithTracker shares a status tracker between orchestrators
func WithTracker(t *Tracker) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.tracker = t
		}
	}
}

// New creates an Orchestrator
func New(store *guidepack.Store, runner stage.Runner, prober MetadataProber, v *validator.Validator, cfg Config, opts ...Option) *Orchestrator {
	if cfg.Defaults == (Defaults{}) {
		cfg.Defaults = StandardDefaults()
	}
	if cfg.Readiness == (Backoff{}) {
		cfg.Readiness = DefaultBackoff()
	}
	o := &Orchestrator{
		store:     store,
		runner:    runner,
		prober:    prober,
		validator: v,
		tracker:   NewTracker(),
		cfg:       cfg,
		logger:    logging.NewComponentLogger(nil, "pipeline"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Store returns the guidepack store
func (o *Orchestrator) Store() *guidepack.Store { return o.store }

// Tracker returns the status tracker
func (o *Orchestrator) Tracker() *Tracker { return o.tracker }

// Forget releases the tracked stage states of guidepack id. Its status
// falls back to the artifacts on disk.
func (o *Orchestrator) Forget(id string) {
	if !o.tracker.Forget(id) {
		o.logger.Debug("stage still running, keeping tracked state", slog.String(logging.FieldGuidepack, id))
	}
}

// Readiness returns the configured polling bounds
func (o *Orchestrator) Readiness() Backoff { return o.cfg.Readiness }

// Status snapshots the per-stage state of guidepack id
func (o *Orchestrator) Status(id string) (Status, error) {
	dir, err := o.store.Dir(id)
	if err != nil {
		return Status{}, err
	}
	return o.tracker.Snapshot(id, func(artifact string) bool {
		return guidepack.Exists(filepath.Join(dir, artifact))
	}), nil
}

// track runs fn as stage of guidepack id, recording its state transitions.
func (o *Orchestrator) track(ctx context.Context, id string, st Stage, obs Observer, fn func(ctx context.Context) (string, error)) error {
	if err := o.tracker.Begin(id, st); err != nil {
		return err
	}
	logger := o.logger.With(slog.String(logging.FieldGuidepack, id), slog.String(logging.FieldStage, string(st)))
	logger.Info("stage started")
	obs.emit(Event{GuidepackID: id, Stage: st, State: Running{}.Name()})

	start := time.Now()
	artifact, err := fn(ctx)
	elapsed := time.Since(start)

	if err != nil {
		o.tracker.Fail(id, st, err)
		logger.Warn("stage failed",
			slog.Duration(logging.FieldDuration, elapsed),
			slog.String("code", string(apperrors.GetCode(err))),
			slog.String("error", err.Error()))
		obs.emit(Event{GuidepackID: id, Stage: st, State: Failed{}.Name(), Err: err, Elapsed: elapsed})
		return err
	}

	o.tracker.Succeed(id, st, artifact)
	logger.Info("stage finished", slog.Duration(logging.FieldDuration, elapsed), slog.String("artifact", artifact))
	obs.emit(Event{GuidepackID: id, Stage: st, State: Succeeded{}.Name(), Artifact: artifact, Elapsed: elapsed})
	return nil
}

// requireInputs fails with an input error naming the first missing artifact
func requireInputs(st Stage, dir string, artifacts ...string) error {
	for _, name := range artifacts {
		path := filepath.Join(dir, name)
		if !guidepack.Exists(path) {
			return apperrors.MissingInputFile(string(st), path)
		}
	}
	return nil
}

// invocation describes one external process run by a stage
type invocation struct {
	stage  Stage
	tool   string
	config string
	args   []string
	dir    string
	output string
}

// invoke resolves the tool, runs it under the stage timeout and verifies
// its declared output.
func (o *Orchestrator) invoke(ctx context.Context, inv invocation) error {
	exe, err := ffmpeg.ResolveTool(inv.tool, inv.config)
	if err != nil {
		return apperrors.ToolResolutionError(inv.tool, err)
	}

	stageCtx, cancel := o.stageContext(ctx)
	defer cancel()

	result := o.runner.Run(stageCtx, exe, inv.args, inv.dir)
	if result.Interrupted {
		return o.interrupted(ctx, stageCtx, inv.stage, result)
	}
	return stage.Verify(string(inv.stage), result, inv.output)
}

func (o *Orchestrator) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.cfg.StageTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.cfg.StageTimeout)
}

// interrupted classifies a process killed because its context ended. The
// runner has already drained its output by the time it returns.
func (o *Orchestrator) interrupted(parent, stageCtx context.Context, st Stage, result stage.Result) error {
	if parent.Err() != nil {
		return apperrors.Wrapf(parent.Err(), apperrors.ErrCodeTimeout, "%s cancelled", st).
			WithDetail("stage", string(st)).
			WithDetail("output", stage.Tail(result.Output, 4096))
	}
	if errors.Is(stageCtx.Err(), context.DeadlineExceeded) {
		return apperrors.TimeoutError(string(st), o.cfg.StageTimeout.String()).
			WithDetail("stage", string(st)).
			WithDetail("output", stage.Tail(result.Output, 4096))
	}
	return stage.Verify(string(st), result, "")
}

// awaitReady polls an artifact and converts "never became ready" into a
// missing-output failure for the stage that declared it.
func (o *Orchestrator) awaitReady(ctx context.Context, st Stage, path string) error {
	ready, err := WaitReady(ctx, path, o.cfg.Readiness)
	if err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeTimeout, "waiting for %s cancelled", filepath.Base(path))
	}
	if !ready {
		return apperrors.MissingOutputError(string(st), path).
			WithDetail("readiness_timeout", o.cfg.Readiness.Timeout.String())
	}
	return nil
}

func sourceExists(path string) error {
	if path == "" {
		return apperrors.InputError("source audio file")
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return apperrors.InputError(fmt.Sprintf("source audio file %s", path))
	}
	return nil
}
