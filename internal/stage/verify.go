package stage

import (
	"os"

	apperrors "github.com/killallgit/guidepack/pkg/errors"
)

// maxOutputDetail bounds the diagnostic text attached to failures
const maxOutputDetail = 4096

// Verify turns a Result into a structured failure. A zero exit code with
// no output file is a MissingOutput failure, distinct from a non-zero exit.
// An empty outputPath skips the file check.
func Verify(stage string, result Result, outputPath string) error {
	if result.Interrupted {
		return apperrors.Newf(apperrors.ErrCodeTimeout, "%s interrupted before completion", stage).
			WithDetail("stage", stage).
			WithDetail("output", Tail(result.Output, maxOutputDetail))
	}
	if result.SpawnErr != nil {
		return apperrors.ToolResolutionError(stage, result.SpawnErr)
	}
	if result.ExitCode != 0 {
		return apperrors.ProcessFailure(stage, result.ExitCode, Tail(result.Output, maxOutputDetail))
	}
	if outputPath == "" {
		return nil
	}
	info, err := os.Stat(outputPath)
	if err != nil || !info.Mode().IsRegular() {
		return apperrors.MissingOutputError(stage, outputPath)
	}
	return nil
}

// Tail returns at most the last n bytes of s.
func Tail(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
