package pipeline

import (
	"sync"
	"time"

	apperrors "github.com/killallgit/guidepack/pkg/errors"
)

// StageState is one of Idle, Running, Succeeded or Failed. The variants
// carry only the data meaningful for that state.
type StageState interface {
	Name() string
}

// Idle means the stage has not run and its output is absent
type Idle struct{}

// Running means a process for the stage is in flight
type Running struct {
	Since time.Time
}

// Succeeded means the stage's output artifact is in place
type Succeeded struct {
	Artifact string
	At       time.Time
}

// Failed holds the structured failure of the last attempt
type Failed struct {
	Err error
	At  time.Time
}

func (Idle) Name() string      { return "idle" }
func (Running) Name() string   { return "running" }
func (Succeeded) Name() string { return "succeeded" }
func (Failed) Name() string    { return "failed" }

// StageView is the JSON form of one stage's state
type StageView struct {
	Stage    Stage      `json:"stage"`
	State    string     `json:"state"`
	Artifact string     `json:"artifact,omitempty"`
	Error    string     `json:"error,omitempty"`
	Code     string     `json:"code,omitempty"`
	Since    *time.Time `json:"since,omitempty"`
}

// Status is a snapshot of one guidepack's pipeline
type Status struct {
	ID     string      `json:"id"`
	Phase  string      `json:"phase"`
	Stages []StageView `json:"stages"`
}

// Tracker keeps per-guidepack stage state in memory. It is not persisted;
// after a restart state is derived from artifact presence.
type Tracker struct {
	mu      sync.Mutex
	entries map[string]map[Stage]StageState
	now     func() time.Time
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		entries: make(map[string]map[Stage]StageState),
		now:     time.Now,
	}
}

// Begin marks stage as running. It fails with a conflict if the same stage
// of the same guidepack is already running.
func (t *Tracker) Begin(id string, stage Stage) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	stages := t.entries[id]
	if stages == nil {
		stages = make(map[Stage]StageState)
		t.entries[id] = stages
	}
	if _, running := stages[stage].(Running); running {
		return apperrors.Newf(apperrors.ErrCodeConflict, "%s is already running for guidepack %s", stage, id).
			WithDetail("stage", string(stage))
	}
	stages[stage] = Running{Since: t.now()}
	return nil
}

// Succeed records a successful stage
func (t *Tracker) Succeed(id string, stage Stage, artifact string) {
	t.set(id, stage, Succeeded{Artifact: artifact, At: t.now()})
}

// Fail records a failed stage
func (t *Tracker) Fail(id string, stage Stage, err error) {
	t.set(id, stage, Failed{Err: err, At: t.now()})
}

func (t *Tracker) set(id string, stage Stage, state StageState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	stages := t.entries[id]
	if stages == nil {
		stages = make(map[Stage]StageState)
		t.entries[id] = stages
	}
	stages[stage] = state
}

// State returns the tracked state of one stage, if any
func (t *Tracker) State(id string, stage Stage) (StageState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	state, ok := t.entries[id][stage]
	return state, ok
}

// Forget drops everything tracked for id once none of its stages is
// running. It reports whether the entries were dropped.
func (t *Tracker) Forget(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, state := range t.entries[id] {
		if _, running := state.(Running); running {
			return false
		}
	}
	delete(t.entries, id)
	return true
}

// Snapshot builds the status of id. Stages this process never ran are
// derived from whether their output artifact is present.
func (t *Tracker) Snapshot(id string, present func(artifact string) bool) Status {
	t.mu.Lock()
	tracked := make(map[Stage]StageState, len(t.entries[id]))
	for k, v := range t.entries[id] {
		tracked[k] = v
	}
	t.mu.Unlock()

	states := make(map[Stage]StageState, len(Stages))
	status := Status{ID: id, Stages: make([]StageView, 0, len(Stages))}
	for _, stage := range Stages {
		state, ok := tracked[stage]
		if !ok {
			state = Idle{}
			if out := stage.Output(); out != "" && present != nil && present(out) {
				state = Succeeded{Artifact: out}
			}
		}
		states[stage] = state
		status.Stages = append(status.Stages, view(stage, state))
	}
	status.Phase = phase(states)
	return status
}

func view(stage Stage, state StageState) StageView {
	v := StageView{Stage: stage, State: state.Name()}
	switch s := state.(type) {
	case Running:
		since := s.Since
		v.Since = &since
	case Succeeded:
		v.Artifact = s.Artifact
	case Failed:
		if s.Err != nil {
			v.Error = s.Err.Error()
			v.Code = string(apperrors.GetCode(s.Err))
		}
	}
	return v
}

// phase names the furthest milestone reached, following
// uploaded, normalized, features_ready, rendered, validated,
// background_ready, composited, final.
func phase(states map[Stage]StageState) string {
	done := func(s Stage) bool {
		_, ok := states[s].(Succeeded)
		return ok
	}
	switch {
	case done(StageMux):
		return "final"
	case done(StageComposite):
		return "composited"
	case done(StageBackground):
		return "background_ready"
	case done(StageValidate):
		return "validated"
	case done(StageGuide) && done(StageMask):
		return "rendered"
	case done(StageFeatures):
		return "features_ready"
	case done(StageNormalize):
		return "normalized"
	default:
		return "uploaded"
	}
}
