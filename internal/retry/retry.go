// Package retry runs an operation under an explicit retry state machine:
//
//	Pending → Retrying(n) → Succeeded | Exhausted
//
// with a terminal Failed state for non-retryable errors and cancellation.
package retry

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidPolicy is returned by Policy.Validate.
var ErrInvalidPolicy = errors.New("invalid retry policy")

// State is a state of the retry machine.
type State int

const (
	Pending State = iota
	Retrying
	Succeeded
	Exhausted
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Retrying:
		return "retrying"
	case Succeeded:
		return "succeeded"
	case Exhausted:
		return "exhausted"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further attempts will be made.
func (s State) Terminal() bool {
	return s == Succeeded || s == Exhausted || s == Failed
}

// Policy configures attempts and exponential backoff.
type Policy struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
	Multiplier  float64       `yaml:"multiplier"`
}

// DefaultPolicy returns three attempts with backoff doubling from 500ms.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    8 * time.Second,
		Multiplier:  2,
	}
}

// Validate checks the policy for usable values.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be at least 1, got %d", ErrInvalidPolicy, p.MaxAttempts)
	}
	if p.BaseDelay < 0 || p.MaxDelay < 0 {
		return fmt.Errorf("%w: delays must not be negative", ErrInvalidPolicy)
	}
	if p.Multiplier < 1 {
		return fmt.Errorf("%w: multiplier must be at least 1, got %v", ErrInvalidPolicy, p.Multiplier)
	}
	return nil
}

// Backoff returns the wait before retry number n (1-based): BaseDelay ×
// Multiplier^(n-1), capped at MaxDelay when MaxDelay is set.
func (p Policy) Backoff(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	d := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(n-1))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	if d > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

// Machine tracks the retry state of one operation.
type Machine struct {
	policy   Policy
	state    State
	attempts int
	err      error
}

// NewMachine returns a machine in the Pending state.
func NewMachine(p Policy) *Machine {
	return &Machine{policy: p, state: Pending}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Attempts returns the number of attempts recorded so far.
func (m *Machine) Attempts() int { return m.attempts }

// Err returns the last recorded error.
func (m *Machine) Err() error { return m.err }

// Record records the outcome of an attempt and returns the next state and,
// when Retrying, the backoff to wait before the next attempt. Recording in a
// terminal state has no effect.
func (m *Machine) Record(err error, retryable bool) (State, time.Duration) {
	if m.state.Terminal() {
		return m.state, 0
	}
	m.attempts++
	m.err = err
	switch {
	case err == nil:
		m.state = Succeeded
	case !retryable:
		m.state = Failed
	case m.attempts >= m.policy.MaxAttempts:
		m.state = Exhausted
	default:
		m.state = Retrying
		return m.state, m.policy.Backoff(m.attempts)
	}
	return m.state, 0
}

// Cancel moves a non-terminal machine to Failed with the given cause.
func (m *Machine) Cancel(cause error) {
	if m.state.Terminal() {
		return
	}
	m.state = Failed
	m.err = cause
}
