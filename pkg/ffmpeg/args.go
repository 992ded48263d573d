package ffmpeg

import (
	"fmt"
	"strconv"
)

// Normalized audio layout written by the normalize stage.
const (
	NormalizedSampleRate = 48000
	NormalizedChannels   = 2
)

// Binary mask encoding settings. The mask is compressed lightly so the
// threshold survives the encoder.
const (
	maskCRF    = 14
	maskPreset = "medium"
)

// NormalizeArgs converts an arbitrary source to 48 kHz stereo 16-bit PCM,
// dropping any container metadata.
func NormalizeArgs(src, dst string) []string {
	return []string{
		"-y", "-hide_banner",
		"-i", src,
		"-vn",
		"-ac", strconv.Itoa(NormalizedChannels),
		"-ar", strconv.Itoa(NormalizedSampleRate),
		"-c:a", "pcm_s16le",
		"-map_metadata", "-1",
		dst,
	}
}

func showwaves(width, height int) string {
	return fmt.Sprintf("showwaves=s=%dx%d:mode=line:colors=white", width, height)
}

// GuideArgs renders a white-on-black waveform line video from audio
func GuideArgs(audio, dst string, opts GuideOptions) []string {
	filter := showwaves(opts.Width, opts.Height) + ",format=yuv420p"
	return []string{
		"-y", "-hide_banner",
		"-i", audio,
		"-filter_complex", filter,
		"-r", strconv.Itoa(opts.FPS),
		"-an",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		"-profile:v", "high",
		"-level", "4.2",
		"-crf", strconv.Itoa(opts.CRF),
		"-preset", opts.Preset,
		dst,
	}
}

// MaskBlurRadius is the boxblur radius used to inflate the waveform line
func MaskBlurRadius(inflatePx int) int {
	r := (inflatePx + 1) / 2
	if r < 1 {
		return 1
	}
	return r
}

// MaskArgs renders the waveform, thickens it with a blur and thresholds
// the result so every pixel is either 0 or 255.
func MaskArgs(audio, dst string, opts MaskOptions) []string {
	filter := fmt.Sprintf("%s,format=gray,boxblur=%d:1,lut=y='if(gte(val,8),255,0)'",
		showwaves(opts.Width, opts.Height), MaskBlurRadius(opts.InflatePx))
	return []string{
		"-y", "-hide_banner",
		"-i", audio,
		"-filter_complex", filter,
		"-r", strconv.Itoa(opts.FPS),
		"-an",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-crf", strconv.Itoa(maskCRF),
		"-preset", maskPreset,
		dst,
	}
}

// SignalStatsArgs samples a video at rate fps and prints per-frame
// signalstats metadata to stdout.
func SignalStatsArgs(video string, rate float64) []string {
	filter := fmt.Sprintf("fps=%s,format=gray,signalstats,metadata=mode=print:file=-",
		strconv.FormatFloat(rate, 'f', -1, 64))
	return []string{
		"-hide_banner", "-nostats",
		"-i", video,
		"-vf", filter,
		"-f", "null", "-",
	}
}

// CompositeArgs merges the guide onto the background using the mask as alpha
func CompositeArgs(background, guide, mask, dst string) []string {
	return []string{
		"-y", "-hide_banner",
		"-i", background,
		"-i", guide,
		"-i", mask,
		"-filter_complex", "[2:v]format=gray[mk];[1:v][mk]alphamerge[fg];[0:v][fg]overlay=shortest=1",
		"-an",
		"-c:v", "libx264",
		"-crf", "18",
		"-preset", "medium",
		dst,
	}
}

// MuxArgs copies the composited video and re-encodes audio next to it.
// A non-zero offset shifts the audio relative to the video.
func MuxArgs(audio, video, dst string, opts MuxOptions) []string {
	args := []string{"-y", "-hide_banner"}
	if opts.AudioOffsetMs != 0 {
		args = append(args, "-itsoffset", strconv.FormatFloat(float64(opts.AudioOffsetMs)/1000, 'f', 3, 64))
	}
	return append(args,
		"-i", audio,
		"-i", video,
		"-map", "1:v:0",
		"-map", "0:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		"-shortest",
		"-movflags", "+faststart",
		dst,
	)
}
