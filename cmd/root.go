package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/killallgit/guidepack/internal/logging"
	"github.com/killallgit/guidepack/pkg/config"
)

const defaultConfigPath = "./config/settings.yaml"

var (
	cfgFile   string
	appConfig *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "guidepack",
	Short: "Audio to guidepack video renderer",
	Long: `Guidepack - renders a directory of video artifacts from one audio file

A guidepack holds the normalized audio, a per-frame envelope record and the
videos derived from them: a waveform guide, a binary mask, a blender
background, their composite and the final muxed video.

Features:
  • Stage-by-stage HTTP API with artifact readiness probes
  • Queued full renders processed by a worker pool
  • Mask/guide consistency validation
  • Local rendering from the command line`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// NewRootCmd creates a new root command (exported for testing)
func NewRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", defaultConfigPath, "config file")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "enable JSON formatted logs")

	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// loadConfig loads the configuration when a command needs it. Commands
// that only print information never call it.
func loadConfig() error {
	if err := config.Load(cfgFile); err != nil {
		return fmt.Errorf("error initializing config: %w", err)
	}
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}
	if jsonLogs, _ := rootCmd.PersistentFlags().GetBool("json-logs"); jsonLogs {
		cfg.Logging.Format = "json"
	}
	appConfig = cfg
	return nil
}

// newLogger builds the process logger from the loaded config and makes it
// the slog default.
func newLogger() (*slog.Logger, error) {
	logger, err := logging.NewFromConfig(appConfig)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}
