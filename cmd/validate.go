package cmd

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// validateCmd checks a guidepack's mask against its guide
var validateCmd = &cobra.Command{
	Use:   "validate <guidepack-id>",
	Short: "Validate a guidepack's mask against its guide",
	Long: `Probe mask.mp4 and guide.mp4 of a guidepack for matching dimensions and
frame rate, and sample the mask for frames that are not strictly binary.

The report is printed as JSON; a failed check exits non-zero.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	orchestrator, err := newOrchestrator(appConfig, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, verr := orchestrator.Validate(ctx, args[0], nil)
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}
	return verr
}
