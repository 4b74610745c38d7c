package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("transient")
var errPermanent = errors.New("permanent")

func isTransient(err error) bool { return errors.Is(err, errTransient) }

func noSleep(delays *[]time.Duration) RunnerOption {
	return WithSleep(func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return ctx.Err()
	})
}

func TestPolicy_Backoff(t *testing.T) {
	p := Policy{MaxAttempts: 5, BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2}
	tests := []struct {
		n    int
		want time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, time.Second},
		{0, 100 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := p.Backoff(tt.n); got != tt.want {
			t.Errorf("Backoff(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestPolicy_Validate(t *testing.T) {
	if err := DefaultPolicy().Validate(); err != nil {
		t.Fatalf("DefaultPolicy().Validate() = %v", err)
	}
	bad := []Policy{
		{MaxAttempts: 0, Multiplier: 2},
		{MaxAttempts: 1, BaseDelay: -1, Multiplier: 2},
		{MaxAttempts: 1, Multiplier: 0.5},
	}
	for _, p := range bad {
		if err := p.Validate(); !errors.Is(err, ErrInvalidPolicy) {
			t.Errorf("Validate(%+v) = %v, want ErrInvalidPolicy", p, err)
		}
	}
}

func TestMachine_Transitions(t *testing.T) {
	m := NewMachine(Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 2})
	if m.State() != Pending {
		t.Fatalf("initial state = %v, want pending", m.State())
	}

	state, wait := m.Record(errTransient, true)
	if state != Retrying || wait != time.Millisecond {
		t.Errorf("after 1st transient: %v, %v", state, wait)
	}
	state, wait = m.Record(errTransient, true)
	if state != Retrying || wait != 2*time.Millisecond {
		t.Errorf("after 2nd transient: %v, %v", state, wait)
	}
	state, _ = m.Record(errTransient, true)
	if state != Exhausted || m.Attempts() != 3 {
		t.Errorf("after 3rd transient: %v, attempts %d", state, m.Attempts())
	}

	// Terminal states absorb further records.
	state, _ = m.Record(nil, false)
	if state != Exhausted || m.Attempts() != 3 {
		t.Errorf("terminal state changed to %v", state)
	}
}

func TestMachine_PermanentAndCancel(t *testing.T) {
	m := NewMachine(DefaultPolicy())
	if state, _ := m.Record(errPermanent, false); state != Failed {
		t.Errorf("permanent error: state = %v, want failed", state)
	}

	m = NewMachine(DefaultPolicy())
	m.Record(errTransient, true)
	m.Cancel(context.Canceled)
	if m.State() != Failed || !errors.Is(m.Err(), context.Canceled) {
		t.Errorf("cancel: state = %v, err = %v", m.State(), m.Err())
	}

	m = NewMachine(DefaultPolicy())
	if state, _ := m.Record(nil, false); state != Succeeded {
		t.Errorf("success: state = %v", state)
	}
}

func TestRunner_RetriesThenSucceeds(t *testing.T) {
	var delays []time.Duration
	r := NewRunner(DefaultPolicy(), isTransient, noSleep(&delays))

	calls := 0
	out := r.Do(context.Background(), func(attempt int) error {
		calls++
		if attempt != calls {
			t.Errorf("attempt = %d, want %d", attempt, calls)
		}
		if calls < 3 {
			return errTransient
		}
		return nil
	})

	if out.State != Succeeded || out.Attempts != 3 || out.Err != nil {
		t.Errorf("outcome = %+v", out)
	}
	if len(delays) != 2 || delays[1] != 2*delays[0] {
		t.Errorf("delays = %v, want two doubling waits", delays)
	}
}

func TestRunner_Exhausted(t *testing.T) {
	var delays []time.Duration
	r := NewRunner(DefaultPolicy(), isTransient, noSleep(&delays))
	out := r.Do(context.Background(), func(int) error { return errTransient })
	if out.State != Exhausted || out.Attempts != 3 || !errors.Is(out.Err, errTransient) {
		t.Errorf("outcome = %+v", out)
	}
}

func TestRunner_PermanentNotRetried(t *testing.T) {
	var delays []time.Duration
	r := NewRunner(DefaultPolicy(), isTransient, noSleep(&delays))
	calls := 0
	out := r.Do(context.Background(), func(int) error {
		calls++
		return errPermanent
	})
	if out.State != Failed || calls != 1 || len(delays) != 0 {
		t.Errorf("outcome = %+v, calls = %d, delays = %v", out, calls, delays)
	}
}

func TestRunner_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunner(Policy{MaxAttempts: 5, BaseDelay: time.Hour, Multiplier: 2}, isTransient)

	calls := 0
	done := make(chan Outcome, 1)
	go func() {
		done <- r.Do(ctx, func(int) error {
			calls++
			return errTransient
		})
	}()
	cancel()

	select {
	case out := <-done:
		if out.State != Failed || !errors.Is(out.Err, context.Canceled) {
			t.Errorf("outcome = %+v", out)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Do did not observe cancellation")
	}
}

func TestSleep(t *testing.T) {
	if err := Sleep(context.Background(), 0); err != nil {
		t.Errorf("Sleep(0) = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep(cancelled) = %v", err)
	}
}
