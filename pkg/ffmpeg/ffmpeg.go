package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// FFmpeg wraps ffmpeg and ffprobe for probing and frame sampling.
// Rendering stages do not go through this type; they build argument
// lists with the *Args helpers and hand them to a stage runner.
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
}

// New creates a new FFmpeg instance. A zero timeout means probes are
// bounded only by the caller's context.
func New(ffmpegPath, ffprobePath string, timeout time.Duration) *FFmpeg {
	return &FFmpeg{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		timeout:     timeout,
	}
}

// Resolve builds an FFmpeg whose binaries were found via ResolveTool
func Resolve(ffmpegConfigured, ffprobeConfigured string, timeout time.Duration) (*FFmpeg, error) {
	ffmpegPath, err := ResolveTool("ffmpeg", ffmpegConfigured)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFFmpegNotFound, err)
	}
	ffprobePath, err := ResolveTool("ffprobe", ffprobeConfigured)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFFprobeNotFound, err)
	}
	return New(ffmpegPath, ffprobePath, timeout), nil
}

// FFmpegPath returns the ffmpeg executable in use
func (f *FFmpeg) FFmpegPath() string { return f.ffmpegPath }

// FFprobePath returns the ffprobe executable in use
func (f *FFmpeg) FFprobePath() string { return f.ffprobePath }

// ValidateBinaries checks if ffmpeg and ffprobe are available
func (f *FFmpeg) ValidateBinaries() error {
	if _, err := lookupExecutable(f.ffmpegPath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFmpegNotFound, f.ffmpegPath)
	}
	if _, err := lookupExecutable(f.ffprobePath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFprobeNotFound, f.ffprobePath)
	}
	return nil
}

// SampleLuminance decodes path at rate frames per second, converts each
// sampled frame to gray and reports its luminance range.
func (f *FFmpeg) SampleLuminance(ctx context.Context, path string, rate float64) ([]FrameStats, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, f.ffmpegPath, SignalStatsArgs(path, rate)...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		return nil, NewProcessingError("signalstats", path, err, tail(output.String(), 2048))
	}
	return ParseSignalStats(output.String()), nil
}

func (f *FFmpeg) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.timeout)
}

// tail keeps the last n bytes of noisy tool output for error messages
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
