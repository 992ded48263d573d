package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	once    sync.Once
	initErr error
)

// writeTimeoutMargin covers readiness polling and response encoding on top
// of a synchronous stage request.
const writeTimeoutMargin = 5 * time.Minute

// Init initializes the configuration system
// This should be called once at application startup
func Init() error {
	once.Do(func() {
		initErr = Load("./config/settings.yaml")
	})

	return initErr
}

// Load reads configuration from the given file (missing files are ignored),
// environment variables and defaults. Unlike Init it can be called repeatedly.
func Load(configPath string) error {
	// Set default values
	setDefaults()

	// Set up environment variable reading for overrides
	viper.SetEnvPrefix("GUIDEPACK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configPath != "" {
		configPath = filepath.Clean(configPath)
		viper.SetConfigFile(configPath)

		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !os.IsNotExist(err) && !errors.As(err, &notFound) {
				return fmt.Errorf("error reading config file %s: %w", configPath, err)
			}
		}
	}

	if err := validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// GetConfig returns the current configuration as a struct
// Init() must be called before using this
func GetConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// GetString returns a string config value
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a time.Duration config value
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// validate validates the configuration using Viper values
func validate() error {
	port := viper.GetInt("server.port")
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid server port: %d", port)
	}

	if strings.TrimSpace(viper.GetString("storage.guidepack_dir")) == "" {
		return fmt.Errorf("storage.guidepack_dir must not be empty")
	}

	// Auto-correct invalid render defaults
	if viper.GetInt("render.fps") <= 0 {
		viper.Set("render.fps", 30)
	}
	if viper.GetDuration("readiness.interval") <= 0 {
		viper.Set("readiness.interval", 500*time.Millisecond)
	}
	if viper.GetDuration("readiness.timeout") <= 0 {
		viper.Set("readiness.timeout", 30*time.Second)
	}

	// A stage POST must be able to answer after its stage timeout fires.
	// Zero write timeout means no deadline at all.
	write, stageTimeout := viper.GetDuration("server.write_timeout"), viper.GetDuration("render.stage_timeout")
	if write > 0 && stageTimeout > 0 && write < stageTimeout+writeTimeoutMargin {
		viper.Set("server.write_timeout", stageTimeout+writeTimeoutMargin)
	}

	// Auto-correct invalid worker count
	if viper.GetInt("processing.workers") <= 0 {
		viper.Set("processing.workers", 1)
	}

	return nil
}

// Validate validates a Config struct (for testing)
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if strings.TrimSpace(c.Storage.GuidepackDir) == "" {
		return fmt.Errorf("storage.guidepack_dir must not be empty")
	}

	if c.Render.FPS <= 0 {
		c.Render.FPS = 30
	}

	if c.Processing.Workers <= 0 {
		c.Processing.Workers = 1
	}

	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Environment defaults
	viper.SetDefault("environment", "development")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 35*time.Minute)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)
	viper.SetDefault("server.max_header_bytes", 1048576)
	viper.SetDefault("server.max_upload_bytes", 512<<20)

	// Database defaults
	viper.SetDefault("database.path", "./data/jobs.db")
	viper.SetDefault("database.verbose", false)

	// Storage defaults
	viper.SetDefault("storage.guidepack_dir", "./storage/guidepacks")
	viper.SetDefault("storage.staging_max_age", time.Hour)
	viper.SetDefault("storage.cleanup_interval", 15*time.Minute)
	viper.SetDefault("storage.download_timeout", 5*time.Minute)

	// Tool defaults: empty means PATH lookup
	viper.SetDefault("tools.ffmpeg_path", "")
	viper.SetDefault("tools.ffprobe_path", "")
	viper.SetDefault("tools.blender_path", "")
	viper.SetDefault("tools.blender_script_path", "")

	// Render defaults
	viper.SetDefault("render.fps", 30)
	viper.SetDefault("render.width", 1280)
	viper.SetDefault("render.height", 720)
	viper.SetDefault("render.guide_crf", 28)
	viper.SetDefault("render.guide_preset", "veryfast")
	viper.SetDefault("render.style", "neon")
	viper.SetDefault("render.stage_timeout", 30*time.Minute)
	viper.SetDefault("render.validate_mask", true)
	viper.SetDefault("render.parallel_render", true)

	// Readiness polling defaults
	viper.SetDefault("readiness.interval", 500*time.Millisecond)
	viper.SetDefault("readiness.timeout", 30*time.Second)
	viper.SetDefault("readiness.max_interval", 500*time.Millisecond)

	// Processing defaults
	viper.SetDefault("processing.workers", 1)
	viper.SetDefault("processing.poll_interval", 2*time.Second)
	viper.SetDefault("processing.job_timeout", 2*time.Hour)
	viper.SetDefault("processing.retry_attempts", 0)
	viper.SetDefault("processing.retention_days", 7)

	// Rate limiting defaults
	viper.SetDefault("rate_limiting.enabled", true)
	viper.SetDefault("rate_limiting.rps", 2)
	viper.SetDefault("rate_limiting.burst", 5)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
}
