package types

import (
	"log/slog"

	"github.com/killallgit/guidepack/internal/database"
	"github.com/killallgit/guidepack/internal/pipeline"
	"github.com/killallgit/guidepack/internal/services/jobs"
	"github.com/killallgit/guidepack/internal/services/workers"
	"github.com/killallgit/guidepack/pkg/config"
	"github.com/killallgit/guidepack/pkg/download"
)

// Dependencies holds all the dependencies needed by handlers
type Dependencies struct {
	DB           *database.DB
	Orchestrator *pipeline.Orchestrator
	JobService   jobs.Service
	WorkerPool   *workers.WorkerPool
	Downloader   *download.Downloader
	Config       *config.Config
	Logger       *slog.Logger
}
