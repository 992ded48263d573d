package guidepack

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/killallgit/guidepack/pkg/errors"
)

// Meta is the normalization record (meta.json). Source tags are best
// effort and stay nil when the source carried none.
type Meta struct {
	HasID3       bool     `json:"has_id3"`
	Title        *string  `json:"title"`
	Artist       *string  `json:"artist"`
	Album        *string  `json:"album"`
	Encoder      *string  `json:"encoder"`
	BitrateKbps  *int     `json:"bitrate_kbps"`
	DurationS    *float64 `json:"duration_s"`
	SampleRate   int      `json:"sample_rate"`
	Channels     int      `json:"channels"`
	PathAudioWAV string   `json:"path_audio_wav"`
	ID           string   `json:"id"`
	Dir          string   `json:"dir"`
}

// WriteMeta writes meta.json into dir.
func WriteMeta(dir string, meta *Meta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal meta: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, MetaFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write meta: %w", err)
	}
	return nil
}

// ReadMeta loads meta.json from dir.
func ReadMeta(dir string) (*Meta, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetaFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.InputError(MetaFile)
		}
		return nil, fmt.Errorf("failed to read meta: %w", err)
	}
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, apperrors.DecodeError("malformed meta record", err)
	}
	return &meta, nil
}

// StringOrNil returns nil for empty strings so absent tags serialize as null.
func StringOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
