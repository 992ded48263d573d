package envelope

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/killallgit/guidepack/pkg/errors"
)

func writeWAV(t *testing.T, path string, sampleRate, channels int, samples [][]float64) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	frames := len(samples[0])
	data := make([]int, 0, frames*channels)
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			data = append(data, int(samples[c][i]*32767))
		}
	}

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
}

func TestWriteReadRoundTrip(t *testing.T) {
	features, err := Extract(sine(48000, 2, 440, 0.5), 48000, 30)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "features.json")
	require.NoError(t, Write(path, features))

	loaded, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, features.FPS, loaded.FPS)
	assert.Equal(t, features.NFrames, loaded.NFrames)
	assert.InDelta(t, features.DurationS, loaded.DurationS, 1e-9)
	require.Len(t, loaded.EnvRMS, len(features.EnvRMS))
	for i := range features.EnvRMS {
		assert.InDelta(t, features.EnvRMS[i], loaded.EnvRMS[i], 1e-6)
		assert.InDelta(t, features.EnvPeak[i], loaded.EnvPeak[i], 1e-6)
	}
}

func TestWriteUsesIndentedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.json")
	require.NoError(t, Write(path, &Features{FPS: 30, HopS: 1.0 / 30, NFrames: 1, EnvRMS: []float64{1}, EnvPeak: []float64{1}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"fps\": 30,")

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"fps", "hop_s", "n_frames", "duration_s", "timecode_start_s", "env_rms", "env_peak"} {
		assert.Contains(t, raw, key)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestReadRejectsInconsistentRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"fps":30,"n_frames":3,"env_rms":[0,1],"env_peak":[0,1,1]}`), 0o644))

	_, err := Read(path)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeDecode))
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "features.json"))
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeInput))
}

func TestDecodeWAVStereo(t *testing.T) {
	left := sine(8000, 0.5, 100, 0.5)
	right := make([]float64, len(left))
	for i := range right {
		right[i] = -left[i]
	}
	path := filepath.Join(t.TempDir(), "audio.wav")
	writeWAV(t, path, 8000, 2, [][]float64{left, right})

	buf, err := DecodeWAVFile(path)
	require.NoError(t, err)
	assert.Equal(t, 8000, buf.SampleRate)
	require.Len(t, buf.Channels, 2)
	assert.Equal(t, len(left), buf.Len())
	for i := 0; i < len(left); i += 97 {
		assert.InDelta(t, left[i], buf.Channels[0][i], 1e-3)
		assert.InDelta(t, right[i], buf.Channels[1][i], 1e-3)
	}

	mono, err := MixDown(buf.Channels)
	require.NoError(t, err)
	for i := 0; i < len(mono); i += 97 {
		assert.InDelta(t, 0, mono[i], 1e-3, "opposite channels cancel")
	}
}

func TestExtractFile(t *testing.T) {
	tone := sine(48000, 1, 440, 0.7)
	path := filepath.Join(t.TempDir(), "audio.wav")
	writeWAV(t, path, 48000, 1, [][]float64{tone})

	features, err := ExtractFile(path, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultFPS, features.FPS)
	assert.Equal(t, 30, features.NFrames)
	assert.InDelta(t, 1.0, features.DurationS, 1e-9)
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio.wav")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a RIFF file"), 0o644))

	_, err := DecodeWAVFile(path)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeDecode))
}

func TestDecodeWAVMissingFile(t *testing.T) {
	_, err := DecodeWAVFile(filepath.Join(t.TempDir(), "missing.wav"))
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeInput))
}

func TestFromBufferNil(t *testing.T) {
	_, err := FromBuffer(nil, 30)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeDecode))
}
