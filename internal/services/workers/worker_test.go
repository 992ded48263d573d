package workers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/guidepack/internal/database"
	"github.com/killallgit/guidepack/internal/logging"
	"github.com/killallgit/guidepack/internal/models"
	"github.com/killallgit/guidepack/internal/pipeline"
	"github.com/killallgit/guidepack/internal/services/jobs"
	apperrors "github.com/killallgit/guidepack/pkg/errors"
)

const testGuidepack = "8f14e45f-ceea-4e67-a8b9-0d9a1c4e7a11"

type fakeRenderer struct {
	mu        sync.Mutex
	err       error
	calls     []pipeline.Request
	forgotten []string
}

func (f *fakeRenderer) Forget(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forgotten = append(f.forgotten, id)
}

func (f *fakeRenderer) released() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.forgotten...)
}

func (f *fakeRenderer) Run(_ context.Context, id string, req pipeline.Request, obs pipeline.Observer) (*pipeline.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	for _, st := range runStages {
		obs(pipeline.Event{GuidepackID: id, Stage: st, State: pipeline.Running{}.Name()})
		if f.err != nil {
			obs(pipeline.Event{GuidepackID: id, Stage: st, State: pipeline.Failed{}.Name(), Err: f.err})
			return &pipeline.Result{ID: id}, f.err
		}
		obs(pipeline.Event{GuidepackID: id, Stage: st, State: pipeline.Succeeded{}.Name()})
	}
	return &pipeline.Result{ID: id, Final: "/packs/" + id + "/final.mp4", Params: pipeline.Params{FPS: req.FPS}}, nil
}

func (f *fakeRenderer) requests() []pipeline.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pipeline.Request(nil), f.calls...)
}

func newTestJobs(t *testing.T) jobs.Service {
	t.Helper()
	db, err := database.Initialize(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())
	return jobs.NewService(jobs.NewRepository(db.DB), logging.NewNop())
}

func enqueueRender(t *testing.T, svc jobs.Service, payload models.JobPayload) *models.Job {
	t.Helper()
	job, err := svc.EnqueueJob(context.Background(), models.JobTypeRender, payload)
	require.NoError(t, err)
	return job
}

func newTestWorker(svc jobs.Service, renderer Renderer) *Worker {
	w := NewWorker("worker-test", svc, 10*time.Millisecond, time.Minute, logging.NewNop())
	w.RegisterProcessor(NewRenderProcessor(renderer, svc, logging.NewNop()))
	return w
}

func TestRenderProcessorCanProcess(t *testing.T) {
	p := &RenderProcessor{}
	assert.True(t, p.CanProcess(models.JobTypeRender))
	assert.False(t, p.CanProcess("unknown_type"))
}

func TestParseRenderPayload(t *testing.T) {
	tests := []struct {
		name     string
		payload  models.JobPayload
		expected pipeline.Request
		hasError bool
	}{
		{
			name:    "id only",
			payload: models.JobPayload{models.PayloadGuidepackID: testGuidepack},
		},
		{
			name: "with request",
			payload: models.JobPayload{
				models.PayloadGuidepackID: testGuidepack,
				models.PayloadRequest:     map[string]interface{}{"fps": float64(24), "style": "mono"},
			},
			expected: pipeline.Request{FPS: 24, Style: "mono"},
		},
		{
			name:     "missing id",
			payload:  models.JobPayload{},
			hasError: true,
		},
		{
			name:     "id of wrong type",
			payload:  models.JobPayload{models.PayloadGuidepackID: 12},
			hasError: true,
		},
		{
			name: "malformed request",
			payload: models.JobPayload{
				models.PayloadGuidepackID: testGuidepack,
				models.PayloadRequest:     map[string]interface{}{"fps": "fast"},
			},
			hasError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, req, err := parseRenderPayload(&models.Job{Payload: tt.payload})
			if tt.hasError {
				assert.True(t, apperrors.Is(err, apperrors.ErrCodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testGuidepack, id)
			assert.Equal(t, tt.expected, req)
		})
	}
}

func TestProcessNextJobCompletes(t *testing.T) {
	svc := newTestJobs(t)
	renderer := &fakeRenderer{}
	job := enqueueRender(t, svc, models.JobPayload{
		models.PayloadGuidepackID: testGuidepack,
		models.PayloadRequest:     map[string]interface{}{"fps": 24},
	})

	w := newTestWorker(svc, renderer)
	require.NoError(t, w.processNextJob(context.Background()))

	loaded, err := svc.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, loaded.Status)
	assert.Equal(t, 100, loaded.Progress)
	assert.Equal(t, "/packs/"+testGuidepack+"/final.mp4", loaded.Result["final"])
	assert.Equal(t, []pipeline.Request{{FPS: 24}}, renderer.requests())
	assert.Equal(t, []string{testGuidepack}, renderer.released())

	assert.NoError(t, w.processNextJob(context.Background()), "an empty queue is not an error")
}

func TestProcessNextJobFails(t *testing.T) {
	svc := newTestJobs(t)
	renderer := &fakeRenderer{err: apperrors.ProcessFailure("guide", 1, "Unknown encoder")}
	job := enqueueRender(t, svc, models.JobPayload{models.PayloadGuidepackID: testGuidepack})

	w := newTestWorker(svc, renderer)
	err := w.processNextJob(context.Background())
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeProcessFailure))

	loaded, err := svc.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPermanentlyFailed, loaded.Status)
	assert.Equal(t, string(models.ErrorTypeProcess), loaded.ErrorType)
	assert.Equal(t, string(apperrors.ErrCodeProcessFailure), loaded.ErrorCode)
	assert.Equal(t, string(pipeline.StageFeatures), loaded.Stage)
	assert.Empty(t, renderer.released(), "failed stages stay visible in status")
}

func TestWorkerWithoutProcessors(t *testing.T) {
	w := NewWorker("idle", newTestJobs(t), time.Second, 0, logging.NewNop())
	assert.EqualError(t, w.processNextJob(context.Background()), "no job processors registered")
}

func TestStageProgress(t *testing.T) {
	var percents []int
	progress := newStageProgress(func(percent int, _ pipeline.Stage) {
		percents = append(percents, percent)
	})

	for _, st := range runStages {
		progress.observe(pipeline.Event{Stage: st, State: pipeline.Running{}.Name()})
		progress.observe(pipeline.Event{Stage: st, State: pipeline.Succeeded{}.Name()})
	}

	require.Len(t, percents, 2*len(runStages))
	assert.Equal(t, 0, percents[0])
	for i := 1; i < len(percents); i++ {
		assert.GreaterOrEqual(t, percents[i], percents[i-1])
	}
	assert.Less(t, percents[len(percents)-1], 100, "only completion reports 100")
}

func TestWorkerPoolProcessesQueue(t *testing.T) {
	svc := newTestJobs(t)
	renderer := &fakeRenderer{}
	first := enqueueRender(t, svc, models.JobPayload{models.PayloadGuidepackID: testGuidepack})
	second := enqueueRender(t, svc, models.JobPayload{models.PayloadGuidepackID: "0c7e3a4e-5b7e-4f7e-9d0a-2f2f0e8b1c3d"})

	pool := NewWorkerPool(svc, 2, 5*time.Millisecond, time.Minute, logging.NewNop())
	pool.RegisterProcessor(NewRenderProcessor(renderer, svc, logging.NewNop()))
	require.NoError(t, pool.Start(context.Background()))
	assert.Error(t, pool.Start(context.Background()), "double start")
	defer pool.Stop()

	assert.Eventually(t, func() bool {
		for _, id := range []uint{first.ID, second.ID} {
			job, err := svc.GetJob(context.Background(), id)
			if err != nil || job.Status != models.JobStatusCompleted {
				return false
			}
		}
		return true
	}, 5*time.Second, 10*time.Millisecond)
}
