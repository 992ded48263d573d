package cleanup

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/killallgit/guidepack/internal/logging"
)

// Service removes staged uploads that were never normalized, e.g. because
// the process died between staging and normalize.
type Service struct {
	stagingDir      string
	maxAge          time.Duration
	cleanupInterval time.Duration
	cancel          context.CancelFunc
	logger          *slog.Logger
	now             func() time.Time
}

// NewService creates a new cleanup service
func NewService(stagingDir string, maxAge, cleanupInterval time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		stagingDir:      stagingDir,
		maxAge:          maxAge,
		cleanupInterval: cleanupInterval,
		logger:          logging.NewComponentLogger(logger, "cleanup"),
		now:             time.Now,
	}
}

// Start sweeps once and then every cleanup interval until ctx ends or
// Stop is called. A non-positive interval or max age disables the service.
func (s *Service) Start(ctx context.Context) {
	if s.cleanupInterval <= 0 || s.maxAge <= 0 {
		s.logger.Info("staging cleanup disabled")
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.Sweep()

	go func() {
		ticker := time.NewTicker(s.cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-ctx.Done():
				s.logger.Info("staging cleanup stopped")
				return
			}
		}
	}()

	s.logger.Info("staging cleanup started",
		slog.Duration("interval", s.cleanupInterval),
		slog.Duration("max_age", s.maxAge))
}

// Stop stops the cleanup service
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Sweep removes staged files older than the max age and reports how many
// were removed.
func (s *Service) Sweep() int {
	entries, err := os.ReadDir(s.stagingDir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read staging directory", slog.String("error", err.Error()))
		}
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if s.now().Sub(info.ModTime()) <= s.maxAge {
			continue
		}
		path := filepath.Join(s.stagingDir, entry.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove staged upload", slog.String("path", path), slog.String("error", err.Error()))
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("removed stale staged uploads", slog.Int("count", removed))
	}
	return removed
}

// RemoveStaged deletes one staged upload. Paths outside stagingDir are
// left alone.
func RemoveStaged(stagingDir, path string, logger *slog.Logger) {
	if path == "" {
		return
	}
	rel, err := filepath.Rel(stagingDir, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || strings.ContainsRune(rel, filepath.Separator) {
		if logger != nil {
			logger.Warn("refusing to remove file outside staging directory", slog.String("path", path))
		}
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) && logger != nil {
		logger.Debug("failed to remove staged upload", slog.String("path", path), slog.String("error", err.Error()))
	}
}
