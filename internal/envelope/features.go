package envelope

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/killallgit/guidepack/pkg/errors"
)

// FromBuffer mixes buf down to mono and extracts its envelopes.
func FromBuffer(buf *Buffer, fps int) (*Features, error) {
	if buf == nil {
		return nil, apperrors.DecodeError("audio buffer has no channels", nil)
	}
	mono, err := MixDown(buf.Channels)
	if err != nil {
		return nil, err
	}
	return Extract(mono, buf.SampleRate, fps)
}

// ExtractFile decodes the WAV at audioPath and extracts envelopes at fps.
// A non-positive fps falls back to DefaultFPS.
func ExtractFile(audioPath string, fps int) (*Features, error) {
	if fps <= 0 {
		fps = DefaultFPS
	}
	buf, err := DecodeWAVFile(audioPath)
	if err != nil {
		return nil, err
	}
	return FromBuffer(buf, fps)
}

// Write serializes features to path with two-space indentation. The file
// is written next to its destination and renamed into place.
func Write(path string, features *Features) error {
	data, err := json.MarshalIndent(features, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal features: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".features-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write features: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close features: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to chmod features: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move features into place: %w", err)
	}
	return nil
}

// Read parses a features record from path.
func Read(path string) (*Features, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.InputError(path)
		}
		return nil, fmt.Errorf("failed to read features: %w", err)
	}
	var features Features
	if err := json.Unmarshal(data, &features); err != nil {
		return nil, apperrors.DecodeError("malformed features record", err)
	}
	if features.NFrames != len(features.EnvRMS) || features.NFrames != len(features.EnvPeak) {
		return nil, apperrors.DecodeError("features record arrays do not match n_frames", nil).
			WithDetail("n_frames", features.NFrames)
	}
	return &features, nil
}
