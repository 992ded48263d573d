package pipeline

import (
	"context"
	"log/slog"
	"math"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/killallgit/guidepack/internal/envelope"
	"github.com/killallgit/guidepack/internal/guidepack"
	"github.com/killallgit/guidepack/internal/logging"
	"github.com/killallgit/guidepack/internal/validator"
	apperrors "github.com/killallgit/guidepack/pkg/errors"
	"github.com/killallgit/guidepack/pkg/ffmpeg"
)

// Result summarizes a full pipeline run
type Result struct {
	ID     string            `json:"id"`
	Params Params            `json:"params"`
	Report *validator.Report `json:"validation,omitempty"`
	Final  string            `json:"final"`
}

// Normalize creates a guidepack from a source audio file: the source is
// converted to 48 kHz stereo PCM and meta.json records its properties.
func (o *Orchestrator) Normalize(ctx context.Context, source string, obs Observer) (*guidepack.Meta, error) {
	if err := sourceExists(source); err != nil {
		return nil, err
	}
	id, dir, err := o.store.Create()
	if err != nil {
		return nil, err
	}

	var meta *guidepack.Meta
	err = o.track(ctx, id, StageNormalize, obs, func(ctx context.Context) (string, error) {
		wav := filepath.Join(dir, guidepack.AudioFile)
		if err := o.invoke(ctx, invocation{
			stage:  StageNormalize,
			tool:   "ffmpeg",
			config: o.cfg.Tools.FFmpeg,
			args:   ffmpeg.NormalizeArgs(source, wav),
			dir:    dir,
			output: wav,
		}); err != nil {
			return "", err
		}

		meta = o.describe(ctx, id, dir, source, wav)
		if err := guidepack.WriteMeta(dir, meta); err != nil {
			return "", err
		}
		return guidepack.AudioFile, nil
	})
	if err != nil {
		return nil, err
	}
	return meta, nil
}

// describe builds meta.json. Tag extraction is best effort; only the
// normalized stream properties fall back to the normalize settings.
func (o *Orchestrator) describe(ctx context.Context, id, dir, source, wav string) *guidepack.Meta {
	meta := &guidepack.Meta{
		SampleRate:   ffmpeg.NormalizedSampleRate,
		Channels:     ffmpeg.NormalizedChannels,
		PathAudioWAV: wav,
		ID:           id,
		Dir:          dir,
	}
	if o.prober == nil {
		return meta
	}

	if src, err := o.prober.GetMetadata(ctx, source); err == nil {
		meta.Title = guidepack.StringOrNil(src.Title)
		meta.Artist = guidepack.StringOrNil(src.Artist)
		meta.Album = guidepack.StringOrNil(src.Album)
		meta.Encoder = guidepack.StringOrNil(src.Encoder)
		meta.HasID3 = src.Title != "" || src.Artist != "" || src.Album != ""
		if src.Bitrate > 0 {
			kbps := int(math.Round(float64(src.Bitrate) / 1000))
			meta.BitrateKbps = &kbps
		}
	} else {
		o.logger.Debug("source tags unavailable", slog.String(logging.FieldGuidepack, id), slog.String("error", err.Error()))
	}

	if out, err := o.prober.GetMetadata(ctx, wav); err == nil {
		if out.SampleRate > 0 {
			meta.SampleRate = out.SampleRate
		}
		if out.Channels > 0 {
			meta.Channels = out.Channels
		}
		if out.Duration > 0 {
			d := out.Duration
			meta.DurationS = &d
		}
	}
	return meta
}

// Features extracts the envelope record from audio.wav at fps. A
// non-positive fps selects the configured default.
func (o *Orchestrator) Features(ctx context.Context, id string, fps int, obs Observer) (*envelope.Features, error) {
	dir, err := o.store.Dir(id)
	if err != nil {
		return nil, err
	}
	if fps <= 0 {
		fps = firstPositive(o.cfg.Defaults.FPS, envelope.DefaultFPS)
	}

	var features *envelope.Features
	err = o.track(ctx, id, StageFeatures, obs, func(ctx context.Context) (string, error) {
		if err := requireInputs(StageFeatures, dir, StageFeatures.Inputs()...); err != nil {
			return "", err
		}
		f, err := envelope.ExtractFile(filepath.Join(dir, guidepack.AudioFile), fps)
		if err != nil {
			return "", err
		}
		if err := envelope.Write(filepath.Join(dir, guidepack.FeaturesFile), f); err != nil {
			return "", err
		}
		features = f
		return guidepack.FeaturesFile, nil
	})
	if err != nil {
		return nil, err
	}
	return features, nil
}

// Params decides the shared render settings for guidepack id, taking the
// frame rate from its features record when present.
func (o *Orchestrator) Params(id string, req Request) (Params, error) {
	dir, err := o.store.Dir(id)
	if err != nil {
		return Params{}, err
	}
	var features *envelope.Features
	if path := filepath.Join(dir, guidepack.FeaturesFile); guidepack.Exists(path) {
		features, err = envelope.Read(path)
		if err != nil {
			return Params{}, err
		}
	}
	return DecideParams(req, features, o.cfg.Defaults), nil
}

// Guide renders guide.mp4 on the features timeline
func (o *Orchestrator) Guide(ctx context.Context, id string, p Params, obs Observer) error {
	return o.renderChecked(ctx, id, StageGuide, obs, featuresTimeline(&p), func(dir string) invocation {
		return invocation{
			tool:   "ffmpeg",
			config: o.cfg.Tools.FFmpeg,
			args: ffmpeg.GuideArgs(filepath.Join(dir, guidepack.AudioFile), filepath.Join(dir, guidepack.GuideFile), ffmpeg.GuideOptions{
				Width: p.Width, Height: p.Height, FPS: p.FPS, CRF: p.GuideCRF, Preset: p.GuidePreset,
			}),
		}
	})
}

// Mask renders mask.mp4 on the features timeline
func (o *Orchestrator) Mask(ctx context.Context, id string, p Params, obs Observer) error {
	return o.renderChecked(ctx, id, StageMask, obs, featuresTimeline(&p), func(dir string) invocation {
		return invocation{
			tool:   "ffmpeg",
			config: o.cfg.Tools.FFmpeg,
			args: ffmpeg.MaskArgs(filepath.Join(dir, guidepack.AudioFile), filepath.Join(dir, guidepack.MaskFile), ffmpeg.MaskOptions{
				Width: p.Width, Height: p.Height, FPS: p.FPS, InflatePx: p.InflatePx,
			}),
		}
	})
}

// featuresTimeline makes a stage render at the frame rate recorded in
// features.json, whatever the caller asked for.
func featuresTimeline(p *Params) func(ctx context.Context, dir string) error {
	return func(_ context.Context, dir string) error {
		features, err := envelope.Read(filepath.Join(dir, guidepack.FeaturesFile))
		if err != nil {
			return err
		}
		if features.FPS > 0 {
			p.FPS = features.FPS
		}
		return nil
	}
}

// Composite merges guide onto background through the mask. All three
// inputs must share dimensions and frame rate.
func (o *Orchestrator) Composite(ctx context.Context, id string, obs Observer) error {
	return o.renderChecked(ctx, id, StageComposite, obs, func(ctx context.Context, dir string) error {
		if o.validator == nil {
			return nil
		}
		return o.validator.CheckSiblings(ctx,
			filepath.Join(dir, guidepack.BackgroundFile),
			filepath.Join(dir, guidepack.GuideFile),
			filepath.Join(dir, guidepack.MaskFile))
	}, func(dir string) invocation {
		return invocation{
			tool:   "ffmpeg",
			config: o.cfg.Tools.FFmpeg,
			args: ffmpeg.CompositeArgs(
				filepath.Join(dir, guidepack.BackgroundFile),
				filepath.Join(dir, guidepack.GuideFile),
				filepath.Join(dir, guidepack.MaskFile),
				filepath.Join(dir, guidepack.CompositeFile)),
		}
	})
}

// Mux joins the chosen video with the normalized audio into final.mp4
func (o *Orchestrator) Mux(ctx context.Context, id string, p Params, obs Observer) error {
	source := pickMuxSource(p.MuxSource)
	return o.renderChecked(ctx, id, StageMux, obs, func(_ context.Context, dir string) error {
		return requireInputs(StageMux, dir, source)
	}, func(dir string) invocation {
		return invocation{
			tool:   "ffmpeg",
			config: o.cfg.Tools.FFmpeg,
			args: ffmpeg.MuxArgs(
				filepath.Join(dir, guidepack.AudioFile),
				filepath.Join(dir, source),
				filepath.Join(dir, guidepack.FinalFile),
				ffmpeg.MuxOptions{AudioOffsetMs: p.AudioOffsetMs}),
		}
	})
}

// Background renders bg_blender.mp4 with blender and checks its frame
// count against the features record.
func (o *Orchestrator) Background(ctx context.Context, id string, p Params, obs Observer) error {
	dir, err := o.store.Dir(id)
	if err != nil {
		return err
	}
	return o.track(ctx, id, StageBackground, obs, func(ctx context.Context) (string, error) {
		if err := requireInputs(StageBackground, dir, StageBackground.Inputs()...); err != nil {
			return "", err
		}
		features, err := envelope.Read(filepath.Join(dir, guidepack.FeaturesFile))
		if err != nil {
			return "", err
		}

		script, cleanup, err := blenderScriptPath(o.cfg.Tools.BlenderScript, dir)
		if err != nil {
			return "", apperrors.ToolResolutionError("blender script", err)
		}
		defer cleanup()

		output := filepath.Join(dir, guidepack.BackgroundFile)
		if err := o.invoke(ctx, invocation{
			stage:  StageBackground,
			tool:   "blender",
			config: o.cfg.Tools.Blender,
			args:   BlenderArgs(script, dir, p),
			dir:    dir,
			output: output,
		}); err != nil {
			return "", err
		}

		if o.validator != nil {
			if err := o.validator.CheckFrameCount(ctx, output, features.NFrames); err != nil {
				return "", err
			}
		}
		return guidepack.BackgroundFile, nil
	})
}

// Validate checks mask.mp4 against guide.mp4
func (o *Orchestrator) Validate(ctx context.Context, id string, obs Observer) (validator.Report, error) {
	dir, err := o.store.Dir(id)
	if err != nil {
		return validator.Report{}, err
	}
	if o.validator == nil {
		return validator.Report{}, apperrors.New(apperrors.ErrCodeInternal, "validator not configured")
	}

	var report validator.Report
	err = o.track(ctx, id, StageValidate, obs, func(ctx context.Context) (string, error) {
		if err := requireInputs(StageValidate, dir, StageValidate.Inputs()...); err != nil {
			return "", err
		}
		var verr error
		report, verr = o.validator.Validate(ctx,
			filepath.Join(dir, guidepack.MaskFile),
			filepath.Join(dir, guidepack.GuideFile))
		return "", verr
	})
	return report, err
}

// renderChecked runs an external stage once its declared inputs exist and
// precheck, when set, has passed.
func (o *Orchestrator) renderChecked(ctx context.Context, id string, st Stage, obs Observer, precheck func(ctx context.Context, dir string) error, build func(dir string) invocation) error {
	dir, err := o.store.Dir(id)
	if err != nil {
		return err
	}
	return o.track(ctx, id, st, obs, func(ctx context.Context) (string, error) {
		if err := requireInputs(st, dir, st.Inputs()...); err != nil {
			return "", err
		}
		if precheck != nil {
			if err := precheck(ctx, dir); err != nil {
				return "", err
			}
		}
		inv := build(dir)
		inv.stage = st
		inv.dir = dir
		inv.output = filepath.Join(dir, st.Output())
		if err := o.invoke(ctx, inv); err != nil {
			return "", err
		}
		return st.Output(), nil
	})
}

// Run executes features through mux for guidepack id. Guide and mask
// render concurrently when configured; both must be ready (and validated,
// unless skipped) before the background and composite stages start.
func (o *Orchestrator) Run(ctx context.Context, id string, req Request, obs Observer) (*Result, error) {
	dir, err := o.store.Dir(id)
	if err != nil {
		return nil, err
	}
	ctx = logging.WithGuidepack(ctx, id)
	start := time.Now()

	features, err := o.Features(ctx, id, req.FPS, obs)
	if err != nil {
		return nil, err
	}
	params := DecideParams(req, features, o.cfg.Defaults)
	result := &Result{ID: id, Params: params}

	if err := o.renderGuideAndMask(ctx, id, params, obs); err != nil {
		return result, err
	}
	if err := o.awaitReady(ctx, StageGuide, filepath.Join(dir, guidepack.GuideFile)); err != nil {
		return result, err
	}
	if err := o.awaitReady(ctx, StageMask, filepath.Join(dir, guidepack.MaskFile)); err != nil {
		return result, err
	}

	if params.ValidateMask {
		report, err := o.Validate(ctx, id, obs)
		result.Report = &report
		if err != nil {
			return result, err
		}
	}

	if err := o.Background(ctx, id, params, obs); err != nil {
		return result, err
	}
	if err := o.Composite(ctx, id, obs); err != nil {
		return result, err
	}
	if err := o.Mux(ctx, id, params, obs); err != nil {
		return result, err
	}

	final := filepath.Join(dir, guidepack.FinalFile)
	if err := o.awaitReady(ctx, StageMux, final); err != nil {
		return result, err
	}
	result.Final = final

	logging.FromContext(ctx, o.logger).Info("pipeline finished",
		slog.Duration(logging.FieldDuration, time.Since(start)),
		slog.Int("fps", params.FPS),
		slog.Int("width", params.Width),
		slog.Int("height", params.Height))
	return result, nil
}

func (o *Orchestrator) renderGuideAndMask(ctx context.Context, id string, p Params, obs Observer) error {
	if !o.cfg.ParallelRender {
		if err := o.Guide(ctx, id, p, obs); err != nil {
			return err
		}
		return o.Mask(ctx, id, p, obs)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return o.Guide(gctx, id, p, obs) })
	g.Go(func() error { return o.Mask(gctx, id, p, obs) })
	return g.Wait()
}
