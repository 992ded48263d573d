package validator

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"path/filepath"

	"github.com/killallgit/guidepack/internal/logging"
	apperrors "github.com/killallgit/guidepack/pkg/errors"
	"github.com/killallgit/guidepack/pkg/ffmpeg"
)

const (
	// DefaultSampleRate is how many mask frames per second are inspected
	DefaultSampleRate = 2.0
	// DefaultFPSTolerance is the largest accepted frame-rate difference
	DefaultFPSTolerance = 0.01
	// A binary frame must reach both ends of the luminance range.
	blackCeiling = 1
	whiteFloor   = 254
)

var errNoSamples = errors.New("no frames were sampled")

// Prober reads stream geometry from a video file
type Prober interface {
	ProbeVideo(ctx context.Context, path string) (*ffmpeg.VideoInfo, error)
}

// Sampler reports per-frame luminance ranges of a video sampled at rate fps
type Sampler interface {
	SampleLuminance(ctx context.Context, path string, rate float64) ([]ffmpeg.FrameStats, error)
}

// Dims is a frame size
type Dims struct {
	W int `json:"w"`
	H int `json:"h"`
}

// Report is the outcome of a mask/guide validation. NonBinaryFrames is
// always populated once sampling ran, zero on success.
type Report struct {
	OK              bool    `json:"ok"`
	Dims            Dims    `json:"dims"`
	FPS             float64 `json:"fps"`
	SampledFrames   int     `json:"sampled_frames"`
	NonBinaryFrames int     `json:"sampled_non_binary_frames"`
}

// Validator cross-checks rendered artifacts by probing them directly.
type Validator struct {
	prober       Prober
	sampler      Sampler
	sampleRate   float64
	fpsTolerance float64
	logger       *slog.Logger
}

// Option customizes a Validator
type Option func(*Validator)

// WithSampleRate overrides how many frames per second are sampled
func WithSampleRate(rate float64) Option {
	return func(v *Validator) {
		if rate > 0 {
			v.sampleRate = rate
		}
	}
}

// WithLogger sets the validator's logger
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logging.NewComponentLogger(logger, "validator")
	}
}

// New creates a Validator. *ffmpeg.FFmpeg satisfies both interfaces.
func New(prober Prober, sampler Sampler, opts ...Option) *Validator {
	v := &Validator{
		prober:       prober,
		sampler:      sampler,
		sampleRate:   DefaultSampleRate,
		fpsTolerance: DefaultFPSTolerance,
		logger:       logging.NewComponentLogger(nil, "validator"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks that mask and guide share dimensions and frame rate and
// that the mask is two-level. Checks run in that order and the first
// failure is returned alongside the partial report.
func (v *Validator) Validate(ctx context.Context, maskPath, guidePath string) (Report, error) {
	var report Report

	mask, err := v.probe(ctx, maskPath)
	if err != nil {
		return report, err
	}
	guide, err := v.probe(ctx, guidePath)
	if err != nil {
		return report, err
	}
	report.Dims = Dims{W: mask.Width, H: mask.Height}
	report.FPS = mask.FrameRate

	if err := sameGeometry(maskPath, mask, guidePath, guide, v.fpsTolerance); err != nil {
		return report, err
	}

	frames, err := v.sampler.SampleLuminance(ctx, maskPath, v.sampleRate)
	if err != nil {
		return report, apperrors.ProbeError(maskPath, err)
	}
	if len(frames) == 0 {
		return report, apperrors.ProbeError(maskPath, errNoSamples)
	}

	report.SampledFrames = len(frames)
	for _, f := range frames {
		if !IsBinaryFrame(f) {
			report.NonBinaryFrames++
		}
	}
	report.OK = report.NonBinaryFrames == 0

	v.logger.Debug("mask validated",
		slog.String("mask", maskPath),
		slog.Int("sampled", report.SampledFrames),
		slog.Int("non_binary", report.NonBinaryFrames))

	if !report.OK {
		return report, apperrors.NonBinaryMask(report.NonBinaryFrames, report.SampledFrames)
	}
	return report, nil
}

// IsBinaryFrame reports whether a frame spans from near-black to near-white
func IsBinaryFrame(f ffmpeg.FrameStats) bool {
	return f.YMin <= blackCeiling && f.YMax >= whiteFloor
}

// CheckSiblings verifies every path shares the first path's dimensions
// and frame rate.
func (v *Validator) CheckSiblings(ctx context.Context, paths ...string) error {
	if len(paths) < 2 {
		return nil
	}
	ref, err := v.probe(ctx, paths[0])
	if err != nil {
		return err
	}
	for _, path := range paths[1:] {
		info, err := v.probe(ctx, path)
		if err != nil {
			return err
		}
		if err := sameGeometry(paths[0], ref, path, info, v.fpsTolerance); err != nil {
			return err
		}
	}
	return nil
}

// CheckFrameCount verifies a video holds nFrames frames. When the container
// does not report a frame count it is estimated from duration and rate,
// allowing one frame of rounding.
func (v *Validator) CheckFrameCount(ctx context.Context, path string, nFrames int) error {
	info, err := v.probe(ctx, path)
	if err != nil {
		return err
	}
	name := filepath.Base(path)
	if info.NbFrames > 0 {
		if info.NbFrames != nFrames {
			return apperrors.FrameCountMismatch(name, nFrames, info.NbFrames)
		}
		return nil
	}
	estimated := int(math.Round(info.Duration * info.FrameRate))
	if abs(estimated-nFrames) > 1 {
		return apperrors.FrameCountMismatch(name, nFrames, estimated)
	}
	return nil
}

func (v *Validator) probe(ctx context.Context, path string) (*ffmpeg.VideoInfo, error) {
	info, err := v.prober.ProbeVideo(ctx, path)
	if err != nil {
		return nil, apperrors.ProbeError(path, err)
	}
	if info == nil {
		return nil, apperrors.ProbeError(path, ffmpeg.ErrNoVideoStream)
	}
	return info, nil
}

func sameGeometry(aPath string, a *ffmpeg.VideoInfo, bPath string, b *ffmpeg.VideoInfo, tolerance float64) error {
	aName, bName := filepath.Base(aPath), filepath.Base(bPath)
	if a.Width != b.Width || a.Height != b.Height {
		return apperrors.DimensionMismatch(aName, bName, a.Width, a.Height, b.Width, b.Height)
	}
	if math.Abs(a.FrameRate-b.FrameRate) > tolerance {
		return apperrors.FrameRateMismatch(aName, bName, a.FrameRate, b.FrameRate)
	}
	return nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
