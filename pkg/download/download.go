package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	apperrors "github.com/killallgit/guidepack/pkg/errors"
)

// Options configures the download behavior
type Options struct {
	Dir           string        // Directory the source is written to
	MaxSize       int64         // Maximum file size in bytes (0 = no limit)
	Timeout       time.Duration // Download timeout
	ProgressFunc  ProgressFunc  // Optional progress callback
	UserAgent     string        // User agent string
	ValidateAudio bool          // Validate content-type is audio
}

// ProgressFunc is called during download to report progress
type ProgressFunc func(downloaded, total int64)

// DefaultOptions returns default download options
func DefaultOptions() Options {
	return Options{
		Dir:           os.TempDir(),
		MaxSize:       512 << 20,
		Timeout:       5 * time.Minute,
		UserAgent:     "guidepack/1.0",
		ValidateAudio: true,
	}
}

// Result contains information about a successful download
type Result struct {
	FilePath      string    // Path to downloaded file
	ContentType   string    // Content-Type from response
	ContentLength int64     // Size in bytes
	ETag          string    // ETag header if present
	LastModified  time.Time // Last-Modified header if present
}

// ErrTooLarge is returned when the body exceeds Options.MaxSize
var ErrTooLarge = errors.New("source exceeds the maximum download size")

// Downloader fetches remote source audio into a local directory
type Downloader struct {
	client  *http.Client
	options Options
}

// NewDownloader creates a new downloader with the given options
func NewDownloader(options Options) *Downloader {
	return &Downloader{
		client: &http.Client{
			Timeout: options.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				DisableCompression:  true,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		options: options,
	}
}

// IsRemote reports whether source is an http(s) URL rather than a local path
func IsRemote(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Fetch downloads rawURL into the configured directory. The caller owns
// the returned file.
func (d *Downloader) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	if !IsRemote(rawURL) {
		return nil, apperrors.ValidationError("url", "must be an absolute http or https URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInput, "invalid source URL")
	}
	req.Header.Set("User-Agent", d.options.UserAgent)
	req.Header.Set("Accept", "audio/*,*/*")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, upstreamError(rawURL, err, "failed to download source")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError(rawURL, nil, fmt.Sprintf("source server returned status %d", resp.StatusCode))
	}

	contentType := resp.Header.Get("Content-Type")
	if d.options.ValidateAudio && !isAudioContentType(contentType) {
		return nil, apperrors.Newf(apperrors.ErrCodeInput, "source is not audio (content type %q)", contentType).
			WithDetail("url", rawURL)
	}

	contentLength := resp.ContentLength
	if d.options.MaxSize > 0 && contentLength > d.options.MaxSize {
		return nil, tooLarge(rawURL, d.options.MaxSize)
	}

	if err := os.MkdirAll(d.options.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}
	tempFile, err := os.CreateTemp(d.options.Dir, "download-*"+extension(rawURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	written, err := d.downloadToFile(resp.Body, tempFile, contentLength)
	tempPath := tempFile.Name()
	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempPath)
		if errors.Is(err, ErrTooLarge) {
			return nil, tooLarge(rawURL, d.options.MaxSize)
		}
		return nil, upstreamError(rawURL, err, "failed to download source")
	}

	result := &Result{
		FilePath:      tempPath,
		ContentType:   contentType,
		ContentLength: written,
		ETag:          resp.Header.Get("ETag"),
	}
	if lastMod := resp.Header.Get("Last-Modified"); lastMod != "" {
		if t, err := http.ParseTime(lastMod); err == nil {
			result.LastModified = t
		}
	}
	return result, nil
}

// downloadToFile copies the body with optional progress tracking. A body
// longer than MaxSize fails instead of being truncated.
func (d *Downloader) downloadToFile(src io.Reader, dst *os.File, totalSize int64) (int64, error) {
	reader := src
	if d.options.ProgressFunc != nil {
		reader = &progressReader{
			reader:   src,
			total:    totalSize,
			callback: d.options.ProgressFunc,
		}
	}
	if d.options.MaxSize <= 0 {
		return io.Copy(dst, reader)
	}

	written, err := io.Copy(dst, io.LimitReader(reader, d.options.MaxSize+1))
	if err != nil {
		return written, err
	}
	if written > d.options.MaxSize {
		return written, ErrTooLarge
	}
	return written, nil
}

func upstreamError(rawURL string, cause error, message string) *apperrors.AppError {
	e := apperrors.New(apperrors.ErrCodeInput, message).WithDetail("url", rawURL)
	if cause != nil {
		e = e.WithCause(cause)
	}
	e.HTTPCode = http.StatusBadGateway
	return e
}

func tooLarge(rawURL string, limit int64) *apperrors.AppError {
	return apperrors.Wrap(ErrTooLarge, apperrors.ErrCodeInput, ErrTooLarge.Error()).
		WithDetail("url", rawURL).
		WithDetail("max_bytes", limit)
}

// extension keeps a known audio extension from the URL path so ffmpeg can
// pick the demuxer by name
func extension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(u.Path)), ".")
	if isValidAudioExtension(ext) {
		return "." + ext
	}
	return ""
}

// isAudioContentType checks if content type is audio
func isAudioContentType(contentType string) bool {
	contentType = strings.ToLower(contentType)
	return strings.HasPrefix(contentType, "audio/") ||
		strings.HasPrefix(contentType, "application/octet-stream")
}

// isValidAudioExtension checks if extension is valid for audio files
func isValidAudioExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case "mp3", "m4a", "aac", "ogg", "wav", "flac", "opus", "webm":
		return true
	}
	return false
}

// progressReader wraps a reader to report progress
type progressReader struct {
	reader     io.Reader
	total      int64
	downloaded int64
	callback   ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.downloaded += int64(n)
		pr.callback(pr.downloaded, pr.total)
	}
	return n, err
}
