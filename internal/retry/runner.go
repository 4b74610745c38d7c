package retry

import (
	"context"
	"time"
)

// Outcome is the final state of a run.
type Outcome struct {
	State    State
	Attempts int
	Err      error
}

// Runner executes operations under a Policy.
type Runner struct {
	policy    Policy
	retryable func(error) bool
	sleep     func(context.Context, time.Duration) error
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithSleep replaces the backoff wait (for testing).
func WithSleep(sleep func(context.Context, time.Duration) error) RunnerOption {
	return func(r *Runner) {
		r.sleep = sleep
	}
}

// NewRunner creates a Runner. retryable decides whether an error may be
// retried.
func NewRunner(p Policy, retryable func(error) bool, opts ...RunnerOption) *Runner {
	r := &Runner{
		policy:    p,
		retryable: retryable,
		sleep:     Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Do runs op until it succeeds, fails permanently, or attempts are
// exhausted. Backoff waits observe ctx; op itself receives the attempt
// number (1-based) and is responsible for its own context handling.
func (r *Runner) Do(ctx context.Context, op func(attempt int) error) Outcome {
	m := NewMachine(r.policy)
	for {
		err := op(m.Attempts() + 1)
		state, wait := m.Record(err, err != nil && r.retryable(err))
		if state.Terminal() {
			return Outcome{State: state, Attempts: m.Attempts(), Err: m.Err()}
		}
		if err := r.sleep(ctx, wait); err != nil {
			m.Cancel(err)
			return Outcome{State: m.State(), Attempts: m.Attempts(), Err: err}
		}
	}
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
