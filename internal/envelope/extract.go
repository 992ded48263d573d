package envelope

import (
	"math"

	"gonum.org/v1/gonum/floats"

	apperrors "github.com/killallgit/guidepack/pkg/errors"
)

const (
	// DefaultFPS is used when no frame rate is supplied
	DefaultFPS = 30
	// ReferencePercentile is the percentile envelopes are normalized by
	ReferencePercentile = 99.0
	// Precision is the number of decimals kept in serialized envelopes
	Precision = 6
)

// Features is the serialized per-frame envelope record (features.json)
type Features struct {
	FPS            int       `json:"fps"`
	HopS           float64   `json:"hop_s"`
	NFrames        int       `json:"n_frames"`
	DurationS      float64   `json:"duration_s"`
	TimecodeStartS float64   `json:"timecode_start_s"`
	EnvRMS         []float64 `json:"env_rms"`
	EnvPeak        []float64 `json:"env_peak"`
}

// Grid describes how a mono sequence is partitioned into frames
type Grid struct {
	SamplesPerFrame int
	NFrames         int
	Total           int
}

// NewGrid derives the frame grid for total samples at sampleRate and fps.
func NewGrid(total, sampleRate, fps int) (Grid, error) {
	if sampleRate <= 0 {
		return Grid{}, apperrors.Newf(apperrors.ErrCodeInput, "sample rate must be positive, got %d", sampleRate)
	}
	if fps <= 0 {
		return Grid{}, apperrors.Newf(apperrors.ErrCodeInput, "fps must be positive, got %d", fps)
	}
	spf := int(math.Round(float64(sampleRate) / float64(fps)))
	if spf < 1 {
		spf = 1
	}
	return Grid{
		SamplesPerFrame: spf,
		NFrames:         (total + spf - 1) / spf,
		Total:           total,
	}, nil
}

// Window returns the clamped [start, end) sample range of frame i.
// The range always holds at least one sample when i is on the grid.
func (g Grid) Window(i int) (start, end int) {
	half := g.SamplesPerFrame / 2
	center := i*g.SamplesPerFrame + half
	start = max(0, center-half)
	end = min(g.Total, center+half)
	if end <= start {
		end = min(g.Total, start+1)
	}
	return start, end
}

// Extract computes normalized RMS and peak envelopes for a mono sequence.
func Extract(mono []float64, sampleRate, fps int) (*Features, error) {
	grid, err := NewGrid(len(mono), sampleRate, fps)
	if err != nil {
		return nil, err
	}

	rms := make([]float64, grid.NFrames)
	peak := make([]float64, grid.NFrames)
	for i := range grid.NFrames {
		start, end := grid.Window(i)
		window := mono[start:end]
		rms[i] = math.Sqrt(floats.Dot(window, window) / float64(len(window)))
		peak[i] = math.Max(math.Abs(floats.Max(window)), math.Abs(floats.Min(window)))
	}

	Normalize(rms, ReferencePercentile)
	Normalize(peak, ReferencePercentile)
	roundAll(rms, Precision)
	roundAll(peak, Precision)

	return &Features{
		FPS:            fps,
		HopS:           1 / float64(fps),
		NFrames:        grid.NFrames,
		DurationS:      float64(len(mono)) / float64(sampleRate),
		TimecodeStartS: 0,
		EnvRMS:         rms,
		EnvPeak:        peak,
	}, nil
}

// MixDown averages channels sample by sample into one mono sequence.
func MixDown(channels [][]float64) ([]float64, error) {
	if len(channels) == 0 {
		return nil, apperrors.DecodeError("audio buffer has no channels", nil)
	}
	n := len(channels[0])
	for c, ch := range channels[1:] {
		if len(ch) != n {
			return nil, apperrors.DecodeError("channel lengths differ", nil).
				WithDetail("channel", c+1).
				WithDetail("expected", n).
				WithDetail("got", len(ch))
		}
	}
	if len(channels) == 1 {
		mono := make([]float64, n)
		copy(mono, channels[0])
		return mono, nil
	}

	mono := make([]float64, n)
	for _, ch := range channels {
		floats.Add(mono, ch)
	}
	floats.Scale(1/float64(len(channels)), mono)
	return mono, nil
}

func roundAll(values []float64, decimals int) {
	scale := math.Pow(10, float64(decimals))
	for i, v := range values {
		values[i] = math.Round(v*scale) / scale
	}
}
