package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ffprobeOutput represents the JSON structure returned by ffprobe
type ffprobeOutput struct {
	Format struct {
		Duration   string            `json:"duration"`
		Size       string            `json:"size"`
		Bitrate    string            `json:"bit_rate"`
		FormatName string            `json:"format_name"`
		Tags       map[string]string `json:"tags"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
		Duration   string `json:"duration"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		NbFrames   string `json:"nb_frames"`
	} `json:"streams"`
}

func (f *FFmpeg) probe(ctx context.Context, operation, filePath string, extra ...string) (*ffprobeOutput, error) {
	args := []string{"-v", "error", "-show_format", "-show_streams"}
	args = append(args, extra...)
	args = append(args, "-of", "json", "--", filePath)

	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, f.ffprobePath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, NewProcessingError(operation, filePath, err, strings.TrimSpace(stderr.String()))
	}

	var output ffprobeOutput
	if err := json.Unmarshal(stdout.Bytes(), &output); err != nil {
		return nil, NewProcessingError(operation, filePath, err, "")
	}
	if len(output.Streams) == 0 {
		return nil, NewProcessingError(operation, filePath, ErrNoStreams, "")
	}
	return &output, nil
}

// ProbeVideo reads dimensions and frame rate of the first video stream
func (f *FFmpeg) ProbeVideo(ctx context.Context, filePath string) (*VideoInfo, error) {
	output, err := f.probe(ctx, "probe_video", filePath, "-select_streams", "v:0")
	if err != nil {
		return nil, err
	}
	return parseVideoInfo(output, filePath)
}

func parseVideoInfo(output *ffprobeOutput, filePath string) (*VideoInfo, error) {
	for _, stream := range output.Streams {
		if stream.CodecType != "video" {
			continue
		}
		info := &VideoInfo{
			Width:   stream.Width,
			Height:  stream.Height,
			RawRate: stream.RFrameRate,
			Codec:   stream.CodecName,
		}
		rate, err := ParseRational(stream.RFrameRate)
		if err != nil {
			return nil, NewProcessingError("probe_video", filePath, err, "")
		}
		info.FrameRate = rate
		if n, err := strconv.Atoi(strings.TrimSpace(stream.NbFrames)); err == nil {
			info.NbFrames = n
		}
		info.Duration = parseSeconds(stream.Duration)
		if info.Duration == 0 {
			info.Duration = parseSeconds(output.Format.Duration)
		}
		return info, nil
	}
	return nil, NewProcessingError("probe_video", filePath, ErrNoVideoStream, "")
}

// GetMetadata extracts metadata from an audio file using ffprobe
func (f *FFmpeg) GetMetadata(ctx context.Context, filePath string) (*AudioMetadata, error) {
	output, err := f.probe(ctx, "metadata_extraction", filePath, "-select_streams", "a:0")
	if err != nil {
		return nil, err
	}
	return parseMetadata(output, filePath)
}

// parseMetadata converts ffprobe output to AudioMetadata
func parseMetadata(output *ffprobeOutput, filePath string) (*AudioMetadata, error) {
	metadata := &AudioMetadata{
		Duration: parseSeconds(output.Format.Duration),
		Format:   output.Format.FormatName,
	}

	if output.Format.Size != "" {
		if size, err := strconv.ParseInt(output.Format.Size, 10, 64); err == nil {
			metadata.Size = size
		}
	}
	if output.Format.Bitrate != "" {
		if bitrate, err := strconv.Atoi(output.Format.Bitrate); err == nil {
			metadata.Bitrate = bitrate
		}
	}

	if tags := output.Format.Tags; tags != nil {
		metadata.Title = lookupTag(tags, "title")
		metadata.Artist = lookupTag(tags, "artist")
		metadata.Album = lookupTag(tags, "album")
		metadata.Encoder = lookupTag(tags, "encoder")
	}

	for _, stream := range output.Streams {
		if stream.CodecType != "audio" {
			continue
		}
		metadata.Codec = stream.CodecName
		metadata.Channels = stream.Channels
		if sampleRate, err := strconv.Atoi(stream.SampleRate); err == nil {
			metadata.SampleRate = sampleRate
		}
		if metadata.Duration == 0 {
			metadata.Duration = parseSeconds(stream.Duration)
		}
		return metadata, nil
	}

	return nil, NewProcessingError("metadata_extraction", filePath, ErrNoAudioStream, "")
}

// ffprobe reports tag keys in whatever case the container used.
func lookupTag(tags map[string]string, key string) string {
	if v, ok := tags[key]; ok {
		return v
	}
	for k, v := range tags {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func parseSeconds(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" || cleaned == "N/A" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return parsed
}

// String renders a short description for logs.
func (v VideoInfo) String() string {
	return fmt.Sprintf("%dx%d@%.3f", v.Width, v.Height, v.FrameRate)
}
