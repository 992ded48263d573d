package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		wantErr bool
		check   func(t *testing.T)
	}{
		{
			name: "load from settings file",
			content: `
server:
  host: "127.0.0.1"
  port: 9000
render:
  fps: 25
storage:
  guidepack_dir: "/srv/guidepacks"
`,
			check: func(t *testing.T) {
				assert.Equal(t, 9000, GetInt("server.port"))
				assert.Equal(t, 25, GetInt("render.fps"))
				assert.Equal(t, "/srv/guidepacks", GetString("storage.guidepack_dir"))
			},
		},
		{
			name: "environment variable override",
			content: `
server:
  port: 8080
`,
			env: map[string]string{"GUIDEPACK_SERVER_PORT": "9090"},
			check: func(t *testing.T) {
				assert.Equal(t, 9090, GetInt("server.port"))
			},
		},
		{
			name: "missing config file with defaults",
			check: func(t *testing.T) {
				assert.Equal(t, 8080, GetInt("server.port"))
				assert.Equal(t, 30, GetInt("render.fps"))
				assert.Equal(t, 500*time.Millisecond, GetDuration("readiness.interval"))
				assert.Equal(t, 30*time.Second, GetDuration("readiness.timeout"))
				assert.Equal(t, 35*time.Minute, GetDuration("server.write_timeout"))
			},
		},
		{
			name: "write timeout raised above stage timeout",
			content: `
server:
  write_timeout: 15m
render:
  stage_timeout: 30m
`,
			check: func(t *testing.T) {
				assert.Equal(t, 35*time.Minute, GetDuration("server.write_timeout"))
			},
		},
		{
			name: "longer write timeout kept",
			content: `
server:
  write_timeout: 2h
render:
  stage_timeout: 30m
`,
			check: func(t *testing.T) {
				assert.Equal(t, 2*time.Hour, GetDuration("server.write_timeout"))
			},
		},
		{
			name: "disabled write timeout kept",
			content: `
server:
  write_timeout: 0s
`,
			check: func(t *testing.T) {
				assert.Equal(t, time.Duration(0), GetDuration("server.write_timeout"))
			},
		},
		{
			name: "invalid port",
			content: `
server:
  port: 70000
`,
			wantErr: true,
		},
		{
			name: "non-positive fps auto-corrected",
			content: `
render:
  fps: 0
`,
			check: func(t *testing.T) {
				assert.Equal(t, 30, GetInt("render.fps"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			defer viper.Reset()

			path := filepath.Join(t.TempDir(), "settings.yaml")
			if tt.content != "" {
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t)
			}
		})
	}
}

func TestGetConfig(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	require.NoError(t, Load(""))
	cfg, err := GetConfig()
	require.NoError(t, err)

	assert.Equal(t, 1280, cfg.Render.Width)
	assert.Equal(t, 720, cfg.Render.Height)
	assert.Equal(t, "veryfast", cfg.Render.GuidePreset)
	assert.True(t, cfg.Render.ValidateMask)
	assert.Equal(t, "./storage/guidepacks", cfg.Storage.GuidepackDir)
	assert.Equal(t, time.Hour, cfg.Storage.StagingMaxAge)
	assert.Equal(t, 15*time.Minute, cfg.Storage.CleanupInterval)
	assert.Equal(t, 5*time.Minute, cfg.Storage.DownloadTimeout)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: &Config{
				Server:  ServerConfig{Host: "localhost", Port: 8080},
				Storage: StorageConfig{GuidepackDir: "./storage"},
			},
		},
		{
			name: "invalid port",
			config: &Config{
				Server:  ServerConfig{Host: "localhost", Port: 0},
				Storage: StorageConfig{GuidepackDir: "./storage"},
			},
			wantErr: true,
		},
		{
			name: "empty guidepack dir",
			config: &Config{
				Server: ServerConfig{Host: "localhost", Port: 8080},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, 30, tt.config.Render.FPS)
			assert.Equal(t, 1, tt.config.Processing.Workers)
		})
	}
}
