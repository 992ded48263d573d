package cmd

import (
	"log/slog"

	"github.com/killallgit/guidepack/internal/guidepack"
	"github.com/killallgit/guidepack/internal/pipeline"
	"github.com/killallgit/guidepack/internal/stage"
	"github.com/killallgit/guidepack/internal/validator"
	"github.com/killallgit/guidepack/pkg/config"
	"github.com/killallgit/guidepack/pkg/download"
	"github.com/killallgit/guidepack/pkg/ffmpeg"
)

// readinessMultiplier grows the polling interval when max_interval allows it
const readinessMultiplier = 1.5

// newOrchestrator wires the pipeline from configuration. Missing ffmpeg or
// ffprobe binaries are not fatal here; the stages that need them fail with
// a tool resolution error instead.
func newOrchestrator(cfg *config.Config, logger *slog.Logger) (*pipeline.Orchestrator, error) {
	store, err := guidepack.NewStore(cfg.Storage.GuidepackDir)
	if err != nil {
		return nil, err
	}

	probe, err := ffmpeg.Resolve(cfg.Tools.FFmpegPath, cfg.Tools.FFprobePath, cfg.Render.StageTimeout)
	if err != nil {
		logger.Warn("ffmpeg tools not resolved", slog.String("error", err.Error()))
		probe = ffmpeg.New(orDefault(cfg.Tools.FFmpegPath, "ffmpeg"), orDefault(cfg.Tools.FFprobePath, "ffprobe"), cfg.Render.StageTimeout)
	}

	v := validator.New(probe, probe, validator.WithLogger(logger))
	return pipeline.New(store, stage.NewExecRunner(), probe, v, pipelineConfig(cfg), pipeline.WithLogger(logger)), nil
}

// newDownloader fetches remote sources into the staging area of store,
// where the cleanup service sweeps anything left behind
func newDownloader(cfg *config.Config, store *guidepack.Store) *download.Downloader {
	opts := download.DefaultOptions()
	opts.Dir = store.StagingDir()
	opts.MaxSize = cfg.Server.MaxUploadBytes
	if cfg.Storage.DownloadTimeout > 0 {
		opts.Timeout = cfg.Storage.DownloadTimeout
	}
	return download.NewDownloader(opts)
}

func pipelineConfig(cfg *config.Config) pipeline.Config {
	readiness := pipeline.Backoff{
		Interval:    cfg.Readiness.Interval,
		Timeout:     cfg.Readiness.Timeout,
		MaxInterval: cfg.Readiness.MaxInterval,
	}
	if readiness.MaxInterval > readiness.Interval {
		readiness.Multiplier = readinessMultiplier
	}

	return pipeline.Config{
		Tools: pipeline.Tools{
			FFmpeg:        cfg.Tools.FFmpegPath,
			Blender:       cfg.Tools.BlenderPath,
			BlenderScript: cfg.Tools.BlenderScriptPath,
		},
		Defaults: pipeline.Defaults{
			FPS:          cfg.Render.FPS,
			Width:        cfg.Render.Width,
			Height:       cfg.Render.Height,
			GuideCRF:     cfg.Render.GuideCRF,
			GuidePreset:  cfg.Render.GuidePreset,
			Style:        cfg.Render.Style,
			ValidateMask: cfg.Render.ValidateMask,
		},
		StageTimeout:   cfg.Render.StageTimeout,
		Readiness:      readiness,
		ParallelRender: cfg.Render.ParallelRender,
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
