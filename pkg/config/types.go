package config

import "time"

// Config represents the complete application configuration
type Config struct {
	Environment  string           `mapstructure:"environment"`
	Server       ServerConfig     `mapstructure:"server"`
	Database     DatabaseConfig   `mapstructure:"database"`
	Storage      StorageConfig    `mapstructure:"storage"`
	Tools        ToolsConfig      `mapstructure:"tools"`
	Render       RenderConfig     `mapstructure:"render"`
	Readiness    ReadinessConfig  `mapstructure:"readiness"`
	Processing   ProcessingConfig `mapstructure:"processing"`
	RateLimiting RateLimitConfig  `mapstructure:"rate_limiting"`
	Logging      LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
}

// DatabaseConfig contains settings for the render job store
type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	Verbose bool   `mapstructure:"verbose"`
}

// StorageConfig locates the guidepack directories
type StorageConfig struct {
	GuidepackDir    string        `mapstructure:"guidepack_dir"`
	StagingMaxAge   time.Duration `mapstructure:"staging_max_age"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout"`
}

// ToolsConfig holds configured paths of the external renderers.
// Empty values fall back to a PATH lookup of the default binary name.
type ToolsConfig struct {
	FFmpegPath        string `mapstructure:"ffmpeg_path"`
	FFprobePath       string `mapstructure:"ffprobe_path"`
	BlenderPath       string `mapstructure:"blender_path"`
	BlenderScriptPath string `mapstructure:"blender_script_path"`
}

// RenderConfig contains defaults for rendering stages
type RenderConfig struct {
	FPS            int           `mapstructure:"fps"`
	Width          int           `mapstructure:"width"`
	Height         int           `mapstructure:"height"`
	GuideCRF       int           `mapstructure:"guide_crf"`
	GuidePreset    string        `mapstructure:"guide_preset"`
	Style          string        `mapstructure:"style"`
	StageTimeout   time.Duration `mapstructure:"stage_timeout"`
	ValidateMask   bool          `mapstructure:"validate_mask"`
	ParallelRender bool          `mapstructure:"parallel_render"`
}

// ReadinessConfig controls artifact readiness polling
type ReadinessConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxInterval time.Duration `mapstructure:"max_interval"`
}

// ProcessingConfig contains render job worker settings
type ProcessingConfig struct {
	Workers       int           `mapstructure:"workers"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	JobTimeout    time.Duration `mapstructure:"job_timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetentionDays int           `mapstructure:"retention_days"`
}

// RateLimitConfig contains per-client limits for stage endpoints
type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled"`
	RPS     int  `mapstructure:"rps"`
	Burst   int  `mapstructure:"burst"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
