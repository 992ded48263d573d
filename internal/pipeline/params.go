package pipeline

import (
	"math"
	"strings"

	"github.com/killallgit/guidepack/internal/envelope"
	"github.com/killallgit/guidepack/internal/guidepack"
)

const (
	MinWidth  = 640
	MinHeight = 360
	MinCRF    = 18
	MaxCRF    = 35

	StyleNeon = "neon"
	StyleMono = "mono"
)

// x264 presets accepted for the guide render
var presets = map[string]bool{
	"ultrafast": true, "superfast": true, "veryfast": true, "faster": true, "fast": true,
	"medium": true, "slow": true, "slower": true, "veryslow": true,
}

// Defaults are the configured fallbacks for caller-supplied render settings
type Defaults struct {
	FPS          int
	Width        int
	Height       int
	GuideCRF     int
	GuidePreset  string
	Style        string
	ValidateMask bool
}

// StandardDefaults returns the built-in render defaults
func StandardDefaults() Defaults {
	return Defaults{
		FPS:          envelope.DefaultFPS,
		Width:        1280,
		Height:       720,
		GuideCRF:     28,
		GuidePreset:  "veryfast",
		Style:        StyleNeon,
		ValidateMask: true,
	}
}

// Request carries caller-supplied render settings. Zero values select defaults.
type Request struct {
	FPS           int    `json:"fps,omitempty"`
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
	InflatePx     int    `json:"inflate_px,omitempty"`
	CRF           int    `json:"crf,omitempty"`
	Preset        string `json:"preset,omitempty"`
	Style         string `json:"style,omitempty"`
	AudioOffsetMs int    `json:"audio_offset_ms,omitempty"`
	MuxSource     string `json:"mux_source,omitempty"`
	SkipValidate  bool   `json:"skip_validate,omitempty"`
}

// Params are the settings every stage of one pipeline run shares. They are
// decided once and never re-derived by individual stages.
type Params struct {
	FPS           int    `json:"fps"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	InflatePx     int    `json:"inflate_px"`
	GuideCRF      int    `json:"guide_crf"`
	GuidePreset   string `json:"guide_preset"`
	Style         string `json:"style"`
	AudioOffsetMs int    `json:"audio_offset_ms"`
	MuxSource     string `json:"mux_source"`
	ValidateMask  bool   `json:"validate_mask"`
}

// DecideParams fixes the shared settings. The frame rate comes from the
// features record when one exists so every artifact shares its timeline.
func DecideParams(req Request, features *envelope.Features, d Defaults) Params {
	p := Params{
		FPS:           firstPositive(req.FPS, d.FPS, envelope.DefaultFPS),
		Width:         max(MinWidth, firstPositive(req.Width, d.Width, 1280)),
		Height:        max(MinHeight, firstPositive(req.Height, d.Height, 720)),
		GuideCRF:      clamp(firstPositive(req.CRF, d.GuideCRF, 28), MinCRF, MaxCRF),
		GuidePreset:   pickPreset(req.Preset, d.GuidePreset),
		Style:         pickStyle(req.Style, d.Style),
		AudioOffsetMs: req.AudioOffsetMs,
		MuxSource:     pickMuxSource(req.MuxSource),
		ValidateMask:  d.ValidateMask && !req.SkipValidate,
	}
	if features != nil && features.FPS > 0 {
		p.FPS = features.FPS
	}

	p.InflatePx = req.InflatePx
	if p.InflatePx <= 0 {
		p.InflatePx = int(math.Round(float64(p.Height) * 0.02))
	}
	p.InflatePx = max(1, p.InflatePx)
	return p
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func clamp(v, lo, hi int) int {
	return min(hi, max(lo, v))
}

func pickPreset(values ...string) string {
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if presets[v] {
			return v
		}
	}
	return "veryfast"
}

func pickStyle(values ...string) string {
	for _, v := range values {
		switch v = strings.ToLower(strings.TrimSpace(v)); v {
		case StyleNeon, StyleMono:
			return v
		}
	}
	return StyleNeon
}

// Only rendered videos can be muxed with the audio.
func pickMuxSource(name string) string {
	switch name {
	case guidepack.GuideFile, guidepack.BackgroundFile, guidepack.CompositeFile:
		return name
	default:
		return guidepack.CompositeFile
	}
}
