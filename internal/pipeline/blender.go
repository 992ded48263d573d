package pipeline

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

//go:embed scripts/blender_bg_from_features.py
var blenderScript []byte

// BlenderArgs builds the background render invocation. Everything after
// "--" is read by the script, not by blender.
func BlenderArgs(script, dir string, p Params) []string {
	return []string{
		"-b",
		"-P", script,
		"--",
		"--dir", dir,
		"--fps", strconv.Itoa(p.FPS),
		"--width", strconv.Itoa(p.Width),
		"--height", strconv.Itoa(p.Height),
		"--style", p.Style,
	}
}

// blenderScriptPath returns the configured script, or writes the bundled
// one into dir. The returned cleanup removes a written copy.
func blenderScriptPath(configured, dir string) (string, func(), error) {
	if configured != "" {
		if _, err := os.Stat(configured); err != nil {
			return "", nil, fmt.Errorf("blender script %s: %w", configured, err)
		}
		abs, err := filepath.Abs(configured)
		if err != nil {
			return "", nil, err
		}
		return abs, func() {}, nil
	}

	f, err := os.CreateTemp(dir, ".blender-bg-*.py")
	if err != nil {
		return "", nil, fmt.Errorf("failed to write blender script: %w", err)
	}
	path := f.Name()
	if _, err := f.Write(blenderScript); err != nil {
		f.Close()
		os.Remove(path)
		return "", nil, fmt.Errorf("failed to write blender script: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", nil, fmt.Errorf("failed to write blender script: %w", err)
	}
	return path, func() { os.Remove(path) }, nil
}
