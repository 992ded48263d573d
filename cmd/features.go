package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/killallgit/guidepack/internal/envelope"
)

var (
	featuresFPS int
	featuresOut string
)

// featuresCmd extracts an envelope record from a WAV file
var featuresCmd = &cobra.Command{
	Use:   "features <audio.wav>",
	Short: "Extract the per-frame envelope record of a WAV file",
	Long: `Extract the per-frame loudness envelope of a PCM WAV file.

The record is written to --out, or printed to stdout when no output file
is given. No configuration or external tools are needed.

Example:
  guidepack features audio.wav --fps 30 --out features.json`,
	Args: cobra.ExactArgs(1),
	RunE: runFeatures,
}

func init() {
	rootCmd.AddCommand(featuresCmd)
	featuresCmd.Flags().IntVar(&featuresFPS, "fps", envelope.DefaultFPS, "frames per second of the envelope")
	featuresCmd.Flags().StringVarP(&featuresOut, "out", "o", "", "output file (default stdout)")
}

func runFeatures(cmd *cobra.Command, args []string) error {
	features, err := envelope.ExtractFile(args[0], featuresFPS)
	if err != nil {
		return err
	}

	if featuresOut != "" {
		if err := envelope.Write(featuresOut, features); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d frames at %d fps to %s\n", features.NFrames, features.FPS, featuresOut)
		return nil
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(features)
}
