package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/guidepack/internal/guidepack"
	"github.com/killallgit/guidepack/internal/pipeline"
	"github.com/killallgit/guidepack/pkg/config"
)

func TestPipelineConfig(t *testing.T) {
	base := config.Config{
		Tools: config.ToolsConfig{FFmpegPath: "/opt/ffmpeg", BlenderPath: "/opt/blender"},
		Render: config.RenderConfig{
			FPS:            24,
			Width:          640,
			Height:         360,
			GuideCRF:       23,
			GuidePreset:    "fast",
			Style:          "calm",
			StageTimeout:   time.Minute,
			ValidateMask:   true,
			ParallelRender: true,
		},
	}

	tests := []struct {
		name       string
		readiness  config.ReadinessConfig
		multiplier float64
	}{
		{
			name:       "fixed interval",
			readiness:  config.ReadinessConfig{Interval: time.Second, Timeout: 10 * time.Second, MaxInterval: time.Second},
			multiplier: 0,
		},
		{
			name:       "growing interval",
			readiness:  config.ReadinessConfig{Interval: time.Second, Timeout: 10 * time.Second, MaxInterval: 4 * time.Second},
			multiplier: readinessMultiplier,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.Readiness = tt.readiness
			got := pipelineConfig(&cfg)

			assert.Equal(t, tt.multiplier, got.Readiness.Multiplier)
			assert.Equal(t, tt.readiness.Interval, got.Readiness.Interval)
			assert.Equal(t, tt.readiness.Timeout, got.Readiness.Timeout)
			assert.Equal(t, "/opt/ffmpeg", got.Tools.FFmpeg)
			assert.Equal(t, "/opt/blender", got.Tools.Blender)
			assert.Equal(t, pipeline.Defaults{
				FPS:          24,
				Width:        640,
				Height:       360,
				GuideCRF:     23,
				GuidePreset:  "fast",
				Style:        "calm",
				ValidateMask: true,
			}, got.Defaults)
			assert.Equal(t, time.Minute, got.StageTimeout)
			assert.True(t, got.ParallelRender)
		})
	}
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, "ffmpeg", orDefault("", "ffmpeg"))
	assert.Equal(t, "/usr/bin/ffmpeg", orDefault("/usr/bin/ffmpeg", "ffmpeg"))
}

func TestNewDownloaderUsesStagingArea(t *testing.T) {
	store, err := guidepack.NewStore(t.TempDir())
	require.NoError(t, err)

	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write([]byte("RIFF"))
	}))
	defer remote.Close()

	cfg := &config.Config{Server: config.ServerConfig{MaxUploadBytes: 1024}}
	result, err := newDownloader(cfg, store).Fetch(context.Background(), remote.URL+"/a.wav")
	require.NoError(t, err)
	assert.Equal(t, store.StagingDir(), filepath.Dir(result.FilePath))
}
