package ffmpeg

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrFFmpegNotFound    = errors.New("ffmpeg binary not found")
	ErrFFprobeNotFound   = errors.New("ffprobe binary not found")
	ErrToolNotFound      = errors.New("external tool not found")
	ErrNoStreams         = errors.New("ffprobe returned no streams")
	ErrInvalidRational   = errors.New("invalid rational number")
	ErrNoVideoStream     = errors.New("no video stream found")
	ErrNoAudioStream     = errors.New("no audio stream found")
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
)

// ProcessingError represents an error during probing or sampling
type ProcessingError struct {
	Operation string // The operation that failed (e.g., "probe_video", "signalstats")
	File      string // The file being processed
	Err       error  // The underlying error
	Stderr    string // stderr output from ffmpeg/ffprobe
}

func (e *ProcessingError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("ffmpeg %s failed for %s: %v (stderr: %s)", e.Operation, e.File, e.Err, e.Stderr)
	}
	return fmt.Sprintf("ffmpeg %s failed for %s: %v", e.Operation, e.File, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// NewProcessingError creates a new ProcessingError
func NewProcessingError(operation, file string, err error, stderr string) *ProcessingError {
	return &ProcessingError{
		Operation: operation,
		File:      file,
		Err:       err,
		Stderr:    stderr,
	}
}
