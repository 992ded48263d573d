package envelope

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		p        float64
		expected float64
	}{
		{"empty", nil, 99, 1},
		{"only non-finite", []float64{math.NaN(), math.Inf(-1)}, 99, 1},
		{"single", []float64{0.25}, 99, 0.25},
		{"unsorted", []float64{5, 1, 3, 2, 4}, 50, 3},
		{"p99 of 101 values", func() []float64 {
			v := make([]float64, 101)
			for i := range v {
				v[i] = float64(100 - i)
			}
			return v
		}(), 99, 99},
		{"ignores nan", []float64{math.NaN(), 2, 1}, 100, 2},
		{"p0", []float64{3, 1, 2}, 0, 1},
		{"clamped above 100", []float64{3, 1, 2}, 250, 3},
		{"clamped below 0", []float64{3, 1, 2}, -50, 1},
		{"zero percentile value", []float64{0, 0, 0}, 99, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Percentile(tt.values, tt.p))
		})
	}
}

func TestNormalizeClampsAndScales(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i + 1)
	}
	values[99] = 1000 // transient spike

	Normalize(values, 99)

	// round(0.99*99) = 98, so the reference is the 99th value
	assert.Equal(t, 1.0, values[98])
	assert.Equal(t, 1.0, values[99], "values above the reference clamp to 1")
	assert.InDelta(t, 50.0/99.0, values[49], 1e-12)
}

func TestNormalizeZeroReference(t *testing.T) {
	values := make([]float64, 200)
	values[199] = 0.5

	Normalize(values, 99)

	for _, v := range values {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
	assert.Equal(t, 0.0, values[0])
	assert.Equal(t, 1.0, values[199])
}

func TestNormalizeIsIdempotentOnNormalizedData(t *testing.T) {
	features, err := Extract(sine(48000, 3, 330, 0.6), 48000, 30)
	require.NoError(t, err)

	for _, env := range [][]float64{features.EnvRMS, features.EnvPeak} {
		require.Equal(t, 1.0, Percentile(env, ReferencePercentile))

		again := append([]float64(nil), env...)
		Normalize(again, ReferencePercentile)
		assert.Equal(t, env, again)
	}
}
