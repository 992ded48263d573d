package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/killallgit/guidepack/internal/logging"
	"github.com/killallgit/guidepack/internal/models"
	apperrors "github.com/killallgit/guidepack/pkg/errors"
)

const (
	DefaultMaxRetries = 0
	DefaultPriority   = 0
)

type service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		logger: logging.NewComponentLogger(logger, "jobs"),
	}
}

func (s *service) EnqueueJob(ctx context.Context, jobType models.JobType, payload models.JobPayload, opts ...JobOption) (*models.Job, error) {
	cfg := &jobConfig{
		Priority:   DefaultPriority,
		MaxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	job := &models.Job{
		Type:       jobType,
		Status:     models.JobStatusPending,
		Payload:    payload,
		Priority:   cfg.Priority,
		MaxRetries: cfg.MaxRetries,
		CreatedBy:  cfg.CreatedBy,
	}

	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, apperrors.DatabaseError("create job", err)
	}

	s.logger.Debug("job enqueued",
		slog.Uint64(logging.FieldJobID, uint64(job.ID)),
		slog.String("type", string(jobType)),
		slog.Int("priority", job.Priority))

	return job, nil
}

// EnqueueUniqueJob returns the live job whose payload shares uniqueKey's
// value, or enqueues a new one.
func (s *service) EnqueueUniqueJob(ctx context.Context, jobType models.JobType, payload models.JobPayload, uniqueKey string, opts ...JobOption) (*models.Job, error) {
	uniqueValue, ok := payload[uniqueKey]
	if !ok {
		return nil, apperrors.ValidationError(uniqueKey, "not found in payload")
	}

	existing, err := s.repo.GetLatestJobByTypeAndPayload(ctx, jobType, uniqueKey, fmt.Sprintf("%v", uniqueValue))
	if err == nil && existing != nil && !existing.IsTerminal() {
		s.logger.Debug("job already queued",
			slog.Uint64(logging.FieldJobID, uint64(existing.ID)),
			slog.String(uniqueKey, fmt.Sprintf("%v", uniqueValue)),
			slog.String("status", string(existing.Status)))
		return existing, nil
	}

	return s.EnqueueJob(ctx, jobType, payload, opts...)
}

func (s *service) GetJob(ctx context.Context, jobID uint) (*models.Job, error) {
	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return nil, apperrors.NotFound("job", jobID).WithCause(err)
		}
		return nil, apperrors.DatabaseError("get job", err)
	}
	return job, nil
}

func (s *service) GetJobForGuidepack(ctx context.Context, guidepackID string) (*models.Job, error) {
	job, err := s.repo.GetLatestJobByTypeAndPayload(ctx, models.JobTypeRender, models.PayloadGuidepackID, guidepackID)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return nil, apperrors.NotFound("render job", guidepackID).WithCause(err)
		}
		return nil, apperrors.DatabaseError("get job for guidepack", err)
	}
	return job, nil
}

func (s *service) ClaimNextJob(ctx context.Context, workerID string, jobTypes []models.JobType) (*models.Job, error) {
	job, err := s.repo.ClaimNextJob(ctx, workerID, jobTypes)
	if err != nil {
		if errors.Is(err, ErrNoJobsAvailable) {
			return nil, err
		}
		return nil, fmt.Errorf("claiming job: %w", err)
	}

	s.logger.Debug("job claimed",
		slog.Uint64(logging.FieldJobID, uint64(job.ID)),
		slog.String("worker", workerID),
		slog.String("type", string(job.Type)))

	return job, nil
}

func (s *service) UpdateProgress(ctx context.Context, jobID uint, progress int, stage string) error {
	if err := s.repo.UpdateJobProgress(ctx, jobID, progress, stage); err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return err
		}
		return fmt.Errorf("updating job progress: %w", err)
	}
	return nil
}

func (s *service) CompleteJob(ctx context.Context, jobID uint, result models.JobResult) error {
	if err := s.repo.CompleteJob(ctx, jobID, result); err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return err
		}
		return fmt.Errorf("completing job: %w", err)
	}

	s.logger.Info("job completed", slog.Uint64(logging.FieldJobID, uint64(jobID)))
	return nil
}

// FailJob records err against the job, classified by its structured code
func (s *service) FailJob(ctx context.Context, jobID uint, err error) error {
	errorType, code, details := Classify(err)

	if ferr := s.repo.FailJobWithDetails(ctx, jobID, errorType, code, err.Error(), details); ferr != nil {
		if errors.Is(ferr, ErrJobNotFound) {
			return ferr
		}
		return fmt.Errorf("failing job: %w", ferr)
	}

	attrs := []any{
		slog.Uint64(logging.FieldJobID, uint64(jobID)),
		slog.String("error_type", string(errorType)),
		slog.String("code", code),
		slog.String("error", err.Error()),
	}
	if job, _ := s.repo.GetJob(ctx, jobID); job != nil && job.IsRetryable() {
		s.logger.Warn("job failed, will retry", append(attrs, slog.Int("retry", job.RetryCount))...)
	} else {
		s.logger.Error("job failed permanently", attrs...)
	}

	return nil
}

func (s *service) ReleaseJob(ctx context.Context, jobID uint) error {
	if err := s.repo.ReleaseJob(ctx, jobID); err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return err
		}
		return fmt.Errorf("releasing job: %w", err)
	}

	s.logger.Debug("job released", slog.Uint64(logging.FieldJobID, uint64(jobID)))
	return nil
}

func (s *service) CleanupOldJobs(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, apperrors.ValidationError("retention_days", "must be positive")
	}

	cutoffTime := time.Now().AddDate(0, 0, -retentionDays)

	deleted, err := s.repo.DeleteOldJobs(ctx, cutoffTime)
	if err != nil {
		return 0, fmt.Errorf("cleaning up old jobs: %w", err)
	}

	if deleted > 0 {
		s.logger.Info("old jobs deleted", slog.Int64("count", deleted), slog.Int("retention_days", retentionDays))
	}

	return deleted, nil
}

// Classify maps a pipeline failure to the job error columns
func Classify(err error) (models.JobErrorType, string, string) {
	appErr, ok := apperrors.As(err)
	if !ok {
		return models.ErrorTypeSystem, string(apperrors.ErrCodeInternal), ""
	}

	var errorType models.JobErrorType
	switch appErr.Code {
	case apperrors.ErrCodeNotFound:
		errorType = models.ErrorTypeNotFound
	case apperrors.ErrCodeInput, apperrors.ErrCodeValidation, apperrors.ErrCodeDecode:
		errorType = models.ErrorTypeInput
	case apperrors.ErrCodeToolResolution, apperrors.ErrCodeProcessFailure,
		apperrors.ErrCodeMissingOutput, apperrors.ErrCodeTimeout, apperrors.ErrCodeProbe:
		errorType = models.ErrorTypeProcess
	default:
		if appErr.IsConsistency() {
			errorType = models.ErrorTypeConsistency
		} else {
			errorType = models.ErrorTypeSystem
		}
	}

	var details string
	if len(appErr.Details) > 0 {
		if data, jerr := json.Marshal(appErr.Details); jerr == nil {
			details = string(data)
		}
	}
	return errorType, string(appErr.Code), details
}
