package ffmpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSignalStats(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		expected []FrameStats
	}{
		{
			name: "metadata print form",
			output: `frame:0    pts:0       pts_time:0
lavfi.signalstats.YMIN=0
lavfi.signalstats.YLOW=0
lavfi.signalstats.YAVG=12.3
lavfi.signalstats.YHIGH=255
lavfi.signalstats.YMAX=255
frame:1    pts:1       pts_time:0.5
lavfi.signalstats.YMIN=16
lavfi.signalstats.YMAX=235
`,
			expected: []FrameStats{{YMin: 0, YMax: 255}, {YMin: 16, YMax: 235}},
		},
		{
			name:     "legacy colon form",
			output:   "[Parsed_signalstats_2 @ 0x1] YMIN:1 YLOW:3 YAVG:40 YHIGH:250 YMAX:254\n",
			expected: []FrameStats{{YMin: 1, YMax: 254}},
		},
		{
			name:     "no stats",
			output:   "Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'mask.mp4':\n",
			expected: nil,
		},
		{
			name: "incomplete frame is dropped",
			output: `lavfi.signalstats.YMIN=0
lavfi.signalstats.YMIN=2
lavfi.signalstats.YMAX=255
`,
			expected: []FrameStats{{YMin: 2, YMax: 255}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseSignalStats(tt.output))
		})
	}
}
