package pipeline

import "time"

// Event reports a stage transition to an Observer
type Event struct {
	GuidepackID string
	Stage       Stage
	State       string
	Artifact    string
	Err         error
	Elapsed     time.Duration
}

// Observer receives stage transitions of a pipeline run. Observers are
// called from stage goroutines and must be safe for concurrent use.
type Observer func(Event)

func (o Observer) emit(e Event) {
	if o != nil {
		o(e)
	}
}
