package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStaged(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("audio"), 0o644))
	mod := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, mod, mod))
	return path
}

func TestSweep(t *testing.T) {
	dir := t.TempDir()
	stale := writeStaged(t, dir, "1700000000000-old.mp3", 2*time.Hour)
	fresh := writeStaged(t, dir, "1700000000001-new.mp3", time.Minute)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	svc := NewService(dir, time.Hour, time.Minute, nil)
	assert.Equal(t, 1, svc.Sweep())

	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh)
	assert.DirExists(t, filepath.Join(dir, "nested"))
}

func TestSweepMissingDirectory(t *testing.T) {
	svc := NewService(filepath.Join(t.TempDir(), "missing"), time.Hour, time.Minute, nil)
	assert.Equal(t, 0, svc.Sweep())
}

func TestStartSweepsImmediately(t *testing.T) {
	dir := t.TempDir()
	stale := writeStaged(t, dir, "old.wav", 2*time.Hour)

	svc := NewService(dir, time.Hour, time.Hour, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	assert.NoFileExists(t, stale)
}

func TestStartDisabled(t *testing.T) {
	dir := t.TempDir()
	stale := writeStaged(t, dir, "old.wav", 2*time.Hour)

	svc := NewService(dir, 0, time.Minute, nil)
	svc.Start(context.Background())
	svc.Stop()

	assert.FileExists(t, stale)
}

func TestRemoveStaged(t *testing.T) {
	root := t.TempDir()
	staging := filepath.Join(root, "_tmp")
	require.NoError(t, os.Mkdir(staging, 0o755))

	inside := writeStaged(t, staging, "upload.mp3", 0)
	outside := writeStaged(t, root, "keep.mp3", 0)

	tests := []struct {
		name    string
		path    string
		removed bool
	}{
		{"file in staging directory", inside, true},
		{"file outside staging directory", outside, false},
		{"traversal", filepath.Join(staging, "..", "keep.mp3"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RemoveStaged(staging, tt.path, nil)
			_, err := os.Stat(tt.path)
			assert.Equal(t, tt.removed, os.IsNotExist(err))
		})
	}

	assert.NotPanics(t, func() { RemoveStaged(staging, "", nil) })
}
