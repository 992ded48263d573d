package pipeline

import (
	"context"
	"os"
	"time"
)

// Backoff bounds readiness polling. Polling stops after MaxAttempts probes
// or once Timeout has elapsed, whichever comes first. A Multiplier above 1
// grows the interval up to MaxInterval.
type Backoff struct {
	Interval    time.Duration
	MaxAttempts int
	Timeout     time.Duration
	Multiplier  float64
	MaxInterval time.Duration
}

// DefaultBackoff polls every 500ms for up to 30s
func DefaultBackoff() Backoff {
	return Backoff{
		Interval:    500 * time.Millisecond,
		MaxAttempts: 60,
		Timeout:     30 * time.Second,
	}
}

// Ready reports whether path is a non-empty regular file
func Ready(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// WaitReady polls until path is ready. Running out of attempts or time is
// not an error: it returns false, nil. Only cancellation of ctx is.
func WaitReady(ctx context.Context, path string, b Backoff) (bool, error) {
	if b.Interval <= 0 {
		b.Interval = DefaultBackoff().Interval
	}
	if b.MaxAttempts <= 0 && b.Timeout <= 0 {
		b.MaxAttempts = DefaultBackoff().MaxAttempts
	}

	var deadline <-chan time.Time
	if b.Timeout > 0 {
		timer := time.NewTimer(b.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	interval := b.Interval
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if Ready(path) {
			return true, nil
		}
		if b.MaxAttempts > 0 && attempt >= b.MaxAttempts {
			return false, nil
		}

		wait := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			wait.Stop()
			return false, ctx.Err()
		case <-deadline:
			wait.Stop()
			return Ready(path), nil
		case <-wait.C:
		}

		if b.Multiplier > 1 {
			interval = time.Duration(float64(interval) * b.Multiplier)
			if b.MaxInterval > 0 && interval > b.MaxInterval {
				interval = b.MaxInterval
			}
		}
	}
}
