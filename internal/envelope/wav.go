package envelope

import (
	"io"
	"os"

	"github.com/go-audio/wav"

	apperrors "github.com/killallgit/guidepack/pkg/errors"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// Buffer is decoded multi-channel audio with samples nominally in [-1, 1]
type Buffer struct {
	SampleRate int
	Channels   [][]float64
}

// Len returns the per-channel sample count
func (b *Buffer) Len() int {
	if b == nil || len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// DecodeWAV reads an integer PCM WAV stream into a de-interleaved float buffer.
func DecodeWAV(r io.ReadSeeker) (*Buffer, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, apperrors.DecodeError("not a valid WAV file", d.Err())
	}
	if d.WavAudioFormat != wavFormatPCM && d.WavAudioFormat != wavFormatExtensible {
		return nil, apperrors.DecodeError("unsupported WAV encoding", nil).
			WithDetail("format", d.WavAudioFormat)
	}

	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return nil, apperrors.DecodeError("failed to read PCM data", err)
	}
	if pcm == nil || pcm.Format == nil || pcm.Format.NumChannels <= 0 {
		return nil, apperrors.DecodeError("WAV decode returned no channels", nil)
	}
	if pcm.Format.SampleRate <= 0 {
		return nil, apperrors.DecodeError("WAV header has no sample rate", nil)
	}

	bitDepth := pcm.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = int(d.BitDepth)
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, apperrors.DecodeError("unsupported bit depth", nil).WithDetail("bit_depth", bitDepth)
	}

	numChannels := pcm.Format.NumChannels
	frames := len(pcm.Data) / numChannels
	scale := float64(int64(1) << (bitDepth - 1))
	// 8-bit WAV samples are unsigned
	var offset float64
	if bitDepth == 8 {
		offset = scale
	}

	channels := make([][]float64, numChannels)
	for c := range channels {
		channels[c] = make([]float64, frames)
	}
	for i := 0; i < frames; i++ {
		base := i * numChannels
		for c := 0; c < numChannels; c++ {
			channels[c][i] = (float64(pcm.Data[base+c]) - offset) / scale
		}
	}

	return &Buffer{SampleRate: pcm.Format.SampleRate, Channels: channels}, nil
}

// DecodeWAVFile opens and decodes the WAV file at path.
func DecodeWAVFile(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.InputError(path)
		}
		return nil, apperrors.DecodeError("failed to open audio", err)
	}
	defer f.Close()
	return DecodeWAV(f)
}
