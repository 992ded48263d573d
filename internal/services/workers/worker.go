package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/killallgit/guidepack/internal/logging"
	"github.com/killallgit/guidepack/internal/models"
	"github.com/killallgit/guidepack/internal/services/jobs"
)

// knownJobTypes lists every job type a processor may claim
var knownJobTypes = []models.JobType{
	models.JobTypeRender,
}

// JobProcessor defines the interface for processing different job types
type JobProcessor interface {
	ProcessJob(ctx context.Context, job *models.Job) error
	CanProcess(jobType models.JobType) bool
}

// Worker represents a background worker that processes jobs
type Worker struct {
	id           string
	jobService   jobs.Service
	processors   []JobProcessor
	stopChan     chan struct{}
	wg           sync.WaitGroup
	pollInterval time.Duration
	jobTimeout   time.Duration
	logger       *slog.Logger
}

// NewWorker creates a new worker instance. A zero jobTimeout leaves jobs
// bounded only by the worker's context.
func NewWorker(id string, jobService jobs.Service, pollInterval, jobTimeout time.Duration, logger *slog.Logger) *Worker {
	return &Worker{
		id:           id,
		jobService:   jobService,
		processors:   make([]JobProcessor, 0),
		stopChan:     make(chan struct{}),
		pollInterval: pollInterval,
		jobTimeout:   jobTimeout,
		logger:       logging.NewComponentLogger(logger, "worker").With(slog.String("worker", id)),
	}
}

// RegisterProcessor registers a job processor
func (w *Worker) RegisterProcessor(processor JobProcessor) {
	w.processors = append(w.processors, processor)
}

// Start starts the worker in a goroutine
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
}

// Stop stops the worker gracefully
func (w *Worker) Stop() {
	close(w.stopChan)
	w.wg.Wait()
}

// run is the main worker loop
func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	w.logger.Info("worker starting")
	defer w.logger.Info("worker stopped")

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.processNextJob(ctx); err != nil {
				w.logger.Warn("job processing error", slog.String("error", err.Error()))
			}
		}
	}
}

// supportedTypes collects the job types any registered processor handles
func (w *Worker) supportedTypes() []models.JobType {
	var types []models.JobType
	for _, jobType := range knownJobTypes {
		for _, p := range w.processors {
			if p.CanProcess(jobType) {
				types = append(types, jobType)
				break
			}
		}
	}
	return types
}

// processNextJob claims and processes the next available job
func (w *Worker) processNextJob(ctx context.Context) error {
	supportedTypes := w.supportedTypes()
	if len(supportedTypes) == 0 {
		return fmt.Errorf("no job processors registered")
	}

	job, err := w.jobService.ClaimNextJob(ctx, w.id, supportedTypes)
	if err != nil {
		if errors.Is(err, jobs.ErrNoJobsAvailable) {
			return nil
		}
		return err
	}

	var processor JobProcessor
	for _, p := range w.processors {
		if p.CanProcess(job.Type) {
			processor = p
			break
		}
	}
	if processor == nil {
		return fmt.Errorf("no processor found for job type %s", job.Type)
	}

	jobCtx, cancel := w.jobContext(ctx)
	defer cancel()

	logger := w.logger.With(slog.Uint64(logging.FieldJobID, uint64(job.ID)))
	logger.Info("job claimed", slog.String("type", string(job.Type)))

	if err := processor.ProcessJob(jobCtx, job); err != nil {
		if ctx.Err() != nil {
			// Shutting down: the job goes back to the queue untouched.
			if rerr := w.jobService.ReleaseJob(context.WithoutCancel(ctx), job.ID); rerr != nil {
				logger.Warn("failed to release job", slog.String("error", rerr.Error()))
			}
			return nil
		}
		if ferr := w.jobService.FailJob(context.WithoutCancel(ctx), job.ID, err); ferr != nil {
			logger.Error("failed to mark job as failed", slog.String("error", ferr.Error()))
		}
		return fmt.Errorf("job %d failed: %w", job.ID, err)
	}

	logger.Info("job completed")
	return nil
}

func (w *Worker) jobContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if w.jobTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, w.jobTimeout)
}

// WorkerPool manages multiple workers
type WorkerPool struct {
	workers    []*Worker
	jobService jobs.Service
	logger     *slog.Logger
	mu         sync.RWMutex
	started    bool
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(jobService jobs.Service, workerCount int, pollInterval, jobTimeout time.Duration, logger *slog.Logger) *WorkerPool {
	pool := &WorkerPool{
		jobService: jobService,
		workers:    make([]*Worker, workerCount),
		logger:     logging.NewComponentLogger(logger, "worker_pool"),
	}

	for i := 0; i < workerCount; i++ {
		workerID := fmt.Sprintf("worker-%d", i+1)
		pool.workers[i] = NewWorker(workerID, jobService, pollInterval, jobTimeout, logger)
	}

	return pool
}

// RegisterProcessor registers a processor with all workers
func (p *WorkerPool) RegisterProcessor(processor JobProcessor) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, worker := range p.workers {
		worker.RegisterProcessor(processor)
	}
}

// Start starts all workers
func (p *WorkerPool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("worker pool already started")
	}

	p.logger.Info("starting worker pool", slog.Int("workers", len(p.workers)))

	for _, worker := range p.workers {
		worker.Start(ctx)
	}

	p.started = true
	return nil
}

// Stop stops all workers gracefully
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.logger.Info("stopping worker pool")

	for _, worker := range p.workers {
		worker.Stop()
	}

	p.started = false
}

// Size returns the number of workers in the pool
func (p *WorkerPool) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.workers)
}
