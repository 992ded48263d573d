package ffmpeg

// AudioMetadata represents metadata extracted from an audio file
type AudioMetadata struct {
	Duration   float64 `json:"duration"`    // Duration in seconds
	SampleRate int     `json:"sample_rate"` // Sample rate in Hz
	Channels   int     `json:"channels"`    // Number of audio channels
	Bitrate    int     `json:"bitrate"`     // Bitrate in bits per second
	Format     string  `json:"format"`      // Container format (mp3, wav, etc.)
	Codec      string  `json:"codec"`       // Audio codec
	Size       int64   `json:"size"`        // File size in bytes
	Title      string  `json:"title"`       // Title metadata
	Artist     string  `json:"artist"`      // Artist metadata
	Album      string  `json:"album"`       // Album metadata
	Encoder    string  `json:"encoder"`     // Encoder tag
}

// VideoInfo describes the first video stream of a rendered artifact
type VideoInfo struct {
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	FrameRate float64 `json:"fps"`
	RawRate   string  `json:"r_frame_rate"`
	NbFrames  int     `json:"nb_frames"`
	Duration  float64 `json:"duration"`
	Codec     string  `json:"codec"`
}

// FrameStats holds the luminance range observed in one sampled frame
type FrameStats struct {
	YMin int `json:"ymin"`
	YMax int `json:"ymax"`
}

// GuideOptions parameterizes the waveform guide render
type GuideOptions struct {
	Width  int
	Height int
	FPS    int
	CRF    int
	Preset string
}

// MaskOptions parameterizes the binary mask render
type MaskOptions struct {
	Width     int
	Height    int
	FPS       int
	InflatePx int
}

// MuxOptions parameterizes the final mux
type MuxOptions struct {
	AudioOffsetMs int
}
