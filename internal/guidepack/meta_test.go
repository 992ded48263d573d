package guidepack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetaRoundTrip(t *testing.T) {
	dir := t.TempDir()
	duration := 5.0
	meta := &Meta{
		HasID3:       true,
		Title:        StringOrNil("Intro"),
		Artist:       StringOrNil(""),
		DurationS:    &duration,
		SampleRate:   48000,
		Channels:     2,
		PathAudioWAV: filepath.Join(dir, AudioFile),
		ID:           "1b4e28ba-2fa1-41d2-883f-0016d3cca427",
		Dir:          dir,
	}
	require.NoError(t, WriteMeta(dir, meta))

	raw, err := os.ReadFile(filepath.Join(dir, MetaFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"artist": null`)

	loaded, err := ReadMeta(dir)
	require.NoError(t, err)
	assert.Equal(t, meta, loaded)
}

func TestReadMetaMissing(t *testing.T) {
	_, err := ReadMeta(t.TempDir())
	assert.Error(t, err)
}
