package ffmpeg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func argAfter(t *testing.T, args []string, flag string) string {
	t.Helper()
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	t.Fatalf("flag %s not found in %v", flag, args)
	return ""
}

func TestNormalizeArgs(t *testing.T) {
	args := NormalizeArgs("in put.mp3", "/gp/audio.wav")

	assert.Equal(t, "in put.mp3", argAfter(t, args, "-i"), "file names are passed as one literal argument")
	assert.Equal(t, "48000", argAfter(t, args, "-ar"))
	assert.Equal(t, "2", argAfter(t, args, "-ac"))
	assert.Equal(t, "pcm_s16le", argAfter(t, args, "-c:a"))
	assert.Equal(t, "-1", argAfter(t, args, "-map_metadata"))
	assert.Contains(t, args, "-vn")
	assert.Equal(t, "/gp/audio.wav", args[len(args)-1])
}

func TestGuideArgs(t *testing.T) {
	args := GuideArgs("audio.wav", "guide.mp4", GuideOptions{Width: 1280, Height: 720, FPS: 30, CRF: 28, Preset: "veryfast"})

	assert.Equal(t, "showwaves=s=1280x720:mode=line:colors=white,format=yuv420p", argAfter(t, args, "-filter_complex"))
	assert.Equal(t, "30", argAfter(t, args, "-r"))
	assert.Equal(t, "28", argAfter(t, args, "-crf"))
	assert.Equal(t, "veryfast", argAfter(t, args, "-preset"))
	assert.Equal(t, "+faststart", argAfter(t, args, "-movflags"))
	assert.Contains(t, args, "-an")
	assert.Equal(t, "guide.mp4", args[len(args)-1])
}

func TestMaskArgs(t *testing.T) {
	args := MaskArgs("audio.wav", "mask.mp4", MaskOptions{Width: 1280, Height: 720, FPS: 30, InflatePx: 14})

	filter := argAfter(t, args, "-filter_complex")
	assert.True(t, strings.HasPrefix(filter, "showwaves=s=1280x720:mode=line:colors=white,format=gray"))
	assert.Contains(t, filter, "boxblur=7:1")
	assert.Contains(t, filter, "lut=y='if(gte(val,8),255,0)'")
	assert.Equal(t, "30", argAfter(t, args, "-r"))
	assert.Equal(t, "14", argAfter(t, args, "-crf"))
}

func TestMaskBlurRadius(t *testing.T) {
	tests := []struct {
		inflate  int
		expected int
	}{
		{0, 1},
		{1, 1},
		{2, 1},
		{3, 2},
		{14, 7},
		{15, 8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, MaskBlurRadius(tt.inflate), "inflate=%d", tt.inflate)
	}
}

func TestSignalStatsArgs(t *testing.T) {
	args := SignalStatsArgs("mask.mp4", 2)

	assert.Equal(t, "mask.mp4", argAfter(t, args, "-i"))
	assert.Equal(t, "fps=2,format=gray,signalstats,metadata=mode=print:file=-", argAfter(t, args, "-vf"))
	assert.Equal(t, "null", argAfter(t, args, "-f"))
	assert.Equal(t, "-", args[len(args)-1])
}

func TestCompositeArgs(t *testing.T) {
	args := CompositeArgs("bg.mp4", "guide.mp4", "mask.mp4", "out.mp4")

	var inputs []string
	for i, a := range args {
		if a == "-i" {
			inputs = append(inputs, args[i+1])
		}
	}
	assert.Equal(t, []string{"bg.mp4", "guide.mp4", "mask.mp4"}, inputs, "input order defines the filter graph labels")
	assert.Equal(t, "[2:v]format=gray[mk];[1:v][mk]alphamerge[fg];[0:v][fg]overlay=shortest=1", argAfter(t, args, "-filter_complex"))
	assert.Equal(t, "out.mp4", args[len(args)-1])
}

func TestMuxArgs(t *testing.T) {
	t.Run("without offset", func(t *testing.T) {
		args := MuxArgs("audio.wav", "composited.mp4", "final.mp4", MuxOptions{})
		assert.NotContains(t, args, "-itsoffset")
		assert.Equal(t, "copy", argAfter(t, args, "-c:v"))
		assert.Equal(t, "aac", argAfter(t, args, "-c:a"))
		assert.Equal(t, "192k", argAfter(t, args, "-b:a"))
		assert.Contains(t, args, "-shortest")
	})

	t.Run("with offset", func(t *testing.T) {
		args := MuxArgs("audio.wav", "composited.mp4", "final.mp4", MuxOptions{AudioOffsetMs: -250})
		require.Contains(t, args, "-itsoffset")
		assert.Equal(t, "-0.250", argAfter(t, args, "-itsoffset"))

		// the offset applies to the audio input, so it must precede it
		var offsetIdx, audioIdx int
		for i, a := range args {
			switch a {
			case "-itsoffset":
				offsetIdx = i
			case "audio.wav":
				audioIdx = i
			}
		}
		assert.Less(t, offsetIdx, audioIdx)
	})
}
