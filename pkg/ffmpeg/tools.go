package ffmpeg

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ResolveTool returns a usable path for an external executable. Candidates
// are tried in order: each configured value (path or bare name), then a
// PATH lookup of defaultName. The first usable candidate wins.
func ResolveTool(defaultName string, configured ...string) (string, error) {
	candidates := make([]string, 0, len(configured)+1)
	for _, c := range configured {
		if c = strings.TrimSpace(c); c != "" {
			candidates = append(candidates, c)
		}
	}
	if defaultName != "" {
		candidates = append(candidates, defaultName)
	}

	var lastErr error
	for _, candidate := range candidates {
		path, err := lookupExecutable(candidate)
		if err == nil {
			return path, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = ErrToolNotFound
	}
	return "", fmt.Errorf("%w: %s (tried %s): %v", ErrToolNotFound, defaultName, strings.Join(candidates, ", "), lastErr)
}

func lookupExecutable(candidate string) (string, error) {
	if strings.ContainsRune(candidate, os.PathSeparator) {
		info, err := os.Stat(candidate)
		if err != nil {
			return "", err
		}
		if info.IsDir() {
			return "", fmt.Errorf("%s is a directory", candidate)
		}
		if info.Mode().Perm()&0o111 == 0 {
			return "", fmt.Errorf("%s is not executable", candidate)
		}
		return candidate, nil
	}
	return exec.LookPath(candidate)
}
