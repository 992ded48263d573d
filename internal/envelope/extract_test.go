package envelope

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/killallgit/guidepack/pkg/errors"
)

func sine(sampleRate int, seconds, freq, amp float64) []float64 {
	n := int(float64(sampleRate) * seconds)
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestNewGrid(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		sampleRate int
		fps        int
		wantSPF    int
		wantFrames int
	}{
		{"48k at 30fps", 240000, 48000, 30, 1600, 150},
		{"44.1k at 30fps", 44100, 44100, 30, 1470, 30},
		{"44.1k at 24fps rounds", 44100, 44100, 24, 1838, 24},
		{"partial last frame", 1601, 48000, 30, 1600, 2},
		{"single sample", 1, 48000, 30, 1600, 1},
		{"empty buffer", 0, 48000, 30, 1600, 0},
		{"fps above sample rate", 10, 10, 25, 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, err := NewGrid(tt.total, tt.sampleRate, tt.fps)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSPF, grid.SamplesPerFrame)
			assert.Equal(t, tt.wantFrames, grid.NFrames)
		})
	}
}

func TestNewGridRejectsInvalidRates(t *testing.T) {
	_, err := NewGrid(100, 0, 30)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeInput))

	_, err = NewGrid(100, 48000, 0)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeInput))
}

func TestGridWindowsStayInBounds(t *testing.T) {
	rates := []int{8000, 22050, 44100, 48000, 96000}
	fpsValues := []int{1, 12, 24, 25, 30, 60, 120}
	totals := []int{1, 7, 1599, 1600, 1601, 48000, 123457}

	for _, sr := range rates {
		for _, fps := range fpsValues {
			for _, total := range totals {
				grid, err := NewGrid(total, sr, fps)
				require.NoError(t, err)

				spf := int(math.Round(float64(sr) / float64(fps)))
				assert.Equal(t, spf, grid.SamplesPerFrame)
				assert.Equal(t, int(math.Ceil(float64(total)/float64(spf))), grid.NFrames)

				for i := 0; i < grid.NFrames; i++ {
					start, end := grid.Window(i)
					assert.GreaterOrEqual(t, start, 0)
					assert.LessOrEqual(t, end, total)
					assert.Greater(t, end, start, "window must hold at least one sample")
				}

				last := grid.NFrames - 1
				_, end := grid.Window(last)
				computedEnd := last*spf + spf/2 + spf/2
				if spf/2 == 0 {
					computedEnd = last*spf + 1
				}
				assert.Equal(t, min(total, computedEnd), end, "sr=%d fps=%d total=%d", sr, fps, total)
			}
		}
	}
}

func TestExtractSineScenario(t *testing.T) {
	mono := sine(48000, 5, 440, 0.8)

	features, err := Extract(mono, 48000, 30)
	require.NoError(t, err)

	assert.Equal(t, 30, features.FPS)
	assert.Equal(t, 150, features.NFrames)
	assert.InDelta(t, 5.0, features.DurationS, 1e-9)
	assert.InDelta(t, 0.0333, features.HopS, 1e-4)
	assert.Equal(t, 0.0, features.TimecodeStartS)
	assert.Len(t, features.EnvRMS, 150)
	assert.Len(t, features.EnvPeak, 150)
	assert.Contains(t, features.EnvRMS, 1.0)
	assert.Contains(t, features.EnvPeak, 1.0)
}

func TestExtractValuesWithinUnitRange(t *testing.T) {
	inputs := map[string][]float64{
		"sine":        sine(44100, 1, 220, 1),
		"quiet sine":  sine(44100, 1, 220, 1e-4),
		"spike":       append(make([]float64, 44100), 50),
		"negative dc": constant(8000, -0.3),
		"with nan":    []float64{0.1, math.NaN(), 0.5, -0.2, math.Inf(1), 0.3},
	}

	for name, mono := range inputs {
		t.Run(name, func(t *testing.T) {
			features, err := Extract(mono, 44100, 30)
			require.NoError(t, err)
			for _, env := range [][]float64{features.EnvRMS, features.EnvPeak} {
				for i, v := range env {
					assert.False(t, math.IsNaN(v), "frame %d is NaN", i)
					assert.GreaterOrEqual(t, v, 0.0, "frame %d", i)
					assert.LessOrEqual(t, v, 1.0, "frame %d", i)
				}
			}
		})
	}
}

func TestExtractSilence(t *testing.T) {
	features, err := Extract(make([]float64, 48000), 48000, 30)
	require.NoError(t, err)

	assert.Equal(t, 30, features.NFrames)
	for i := range features.EnvRMS {
		assert.Equal(t, 0.0, features.EnvRMS[i])
		assert.Equal(t, 0.0, features.EnvPeak[i])
	}
}

func TestExtractRoundsToSixDecimals(t *testing.T) {
	features, err := Extract(sine(48000, 2, 97, 0.37), 48000, 25)
	require.NoError(t, err)

	for _, v := range append(append([]float64{}, features.EnvRMS...), features.EnvPeak...) {
		assert.InDelta(t, v, math.Round(v*1e6)/1e6, 1e-12)
	}
}

func TestExtractRejectsInvalidRates(t *testing.T) {
	_, err := Extract([]float64{0.1}, 48000, 0)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeInput))

	_, err = Extract([]float64{0.1}, -1, 30)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeInput))
}

func TestMixDown(t *testing.T) {
	t.Run("averages channels", func(t *testing.T) {
		mono, err := MixDown([][]float64{{1, 0.5, -1}, {0, 0.5, 1}})
		require.NoError(t, err)
		assert.Equal(t, []float64{0.5, 0.5, 0}, mono)
	})

	t.Run("single channel is copied", func(t *testing.T) {
		src := []float64{0.1, 0.2}
		mono, err := MixDown([][]float64{src})
		require.NoError(t, err)
		mono[0] = 9
		assert.Equal(t, 0.1, src[0])
	})

	t.Run("no channels", func(t *testing.T) {
		_, err := MixDown(nil)
		assert.True(t, apperrors.Is(err, apperrors.ErrCodeDecode))
	})

	t.Run("unequal lengths are rejected", func(t *testing.T) {
		_, err := MixDown([][]float64{{1, 2, 3}, {1, 2}})
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrCodeDecode))
	})
}
