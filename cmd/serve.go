package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/killallgit/guidepack/api"
	"github.com/killallgit/guidepack/api/types"
	"github.com/killallgit/guidepack/internal/database"
	"github.com/killallgit/guidepack/internal/services/cleanup"
	"github.com/killallgit/guidepack/internal/services/jobs"
	"github.com/killallgit/guidepack/internal/services/workers"
)

// jobCleanupInterval is how often finished jobs past retention are purged
const jobCleanupInterval = time.Hour

var (
	serverHost string
	serverPort int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the Guidepack API server with the configured settings.

The server exposes every pipeline stage over HTTP, serves artifacts with
readiness probes and runs queued full renders on a worker pool.

Example:
  guidepack serve
  guidepack serve --port 9090
  guidepack serve --host 0.0.0.0 --port 8080`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server flags
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host (overrides config)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}

	// Use config values if flags not provided
	if serverHost != "" {
		appConfig.Server.Host = serverHost
	}
	if serverPort != 0 {
		appConfig.Server.Port = serverPort
	}

	db, err := database.Open(appConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	orchestrator, err := newOrchestrator(appConfig, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	jobService := jobs.NewService(jobs.NewRepository(db.DB), logger)
	pool := workers.NewWorkerPool(jobService, appConfig.Processing.Workers,
		appConfig.Processing.PollInterval, appConfig.Processing.JobTimeout, logger)
	pool.RegisterProcessor(workers.NewRenderProcessor(orchestrator, jobService, logger))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := pool.Start(ctx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}
	defer pool.Stop()
	go purgeJobs(ctx, jobService, appConfig.Processing.RetentionDays, logger)

	sweeper := cleanup.NewService(orchestrator.Store().StagingDir(),
		appConfig.Storage.StagingMaxAge, appConfig.Storage.CleanupInterval, logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	server := api.NewServer(appConfig.Server)
	server.SetDependencies(&types.Dependencies{
		DB:           db,
		Orchestrator: orchestrator,
		JobService:   jobService,
		WorkerPool:   pool,
		Downloader:   newDownloader(appConfig, orchestrator.Store()),
		Config:       appConfig,
		Logger:       logger,
	})
	if err := server.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	logger.Info("starting guidepack server",
		slog.String("addr", server.Addr()),
		slog.String("guidepack_dir", orchestrator.Store().Root),
		slog.Int("workers", pool.Size()))

	// Channel to listen for interrupt signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Channel to receive server errors
	serverErr := make(chan error, 1)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	var runErr error
	select {
	case <-stop:
		logger.Info("shutting down server")
	case runErr = <-serverErr:
		logger.Error("server stopped", slog.String("error", runErr.Error()))
	}

	// Create a context with timeout for shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.String("error", err.Error()))
		return err
	}

	// Workers release their claimed jobs when the context ends
	cancel()
	logger.Info("server gracefully stopped")
	return runErr
}

// purgeJobs deletes finished jobs older than the retention window until ctx ends
func purgeJobs(ctx context.Context, svc jobs.Service, retentionDays int, logger *slog.Logger) {
	if retentionDays <= 0 {
		return
	}
	ticker := time.NewTicker(jobCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := svc.CleanupOldJobs(ctx, retentionDays)
			if err != nil {
				logger.Warn("job cleanup failed", slog.String("error", err.Error()))
				continue
			}
			if deleted > 0 {
				logger.Info("purged finished jobs", slog.Int64("deleted", deleted))
			}
		}
	}
}
