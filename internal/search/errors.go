package search

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Sentinel errors matched with errors.Is.
var (
	// ErrTransient indicates a failure worth retrying: rate limiting,
	// server errors, timeouts, and network failures.
	ErrTransient = errors.New("transient search error")

	// ErrPermanent indicates a failure that will not improve on retry:
	// malformed queries, authentication problems, unexpected responses.
	ErrPermanent = errors.New("permanent search error")
)

// Kind classifies a search error.
type Kind int

const (
	Permanent Kind = iota
	Transient
)

func (k Kind) String() string {
	if k == Transient {
		return "transient"
	}
	return "permanent"
}

// Error is a classified error from a search backend.
type Error struct {
	Kind       Kind
	Source     string // e.g. "crossref", "s2"
	StatusCode int    // HTTP status, 0 if none
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s %s error (status %d): %v", e.Source, e.Kind, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s %s error (status %d)", e.Source, e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s %s error: %v", e.Source, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s %s error", e.Source, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the ErrTransient and ErrPermanent sentinels by kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransient:
		return e.Kind == Transient
	case ErrPermanent:
		return e.Kind == Permanent
	}
	return false
}

// KindForStatus classifies an HTTP status code.
// 408, 429 and 5xx are transient; every other error status is permanent.
func KindForStatus(code int) Kind {
	switch {
	case code == http.StatusTooManyRequests, code == http.StatusRequestTimeout:
		return Transient
	case code >= 500 && code <= 599:
		return Transient
	default:
		return Permanent
	}
}

// StatusError builds a classified error for a failed HTTP response.
func StatusError(source string, code int, msg string) *Error {
	e := &Error{Kind: KindForStatus(code), Source: source, StatusCode: code}
	if msg != "" {
		e.Err = errors.New(msg)
	}
	return e
}

// Classify wraps a transport-level error in a classified Error.
// Deadlines and network failures are transient. Cancellation and anything
// unrecognized are permanent. Errors wrapping ErrTransient or ErrPermanent
// keep that kind.
func Classify(source string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	kind := Permanent
	var netErr net.Error
	switch {
	case errors.Is(err, ErrTransient):
		kind = Transient
	case errors.Is(err, ErrPermanent), errors.Is(err, context.Canceled):
		kind = Permanent
	case errors.Is(err, context.DeadlineExceeded):
		kind = Transient
	case errors.As(err, &netErr):
		kind = Transient
	}
	return &Error{Kind: kind, Source: source, Err: err}
}

// IsTransient reports whether err is worth retrying.
// Unclassified errors are judged the way Classify would judge them.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var se *Error
	if !errors.As(err, &se) {
		se = Classify("", err).(*Error)
	}
	return se.Kind == Transient
}

// IsPermanent reports whether err is a non-retryable failure.
// Unclassified errors are permanent.
func IsPermanent(err error) bool {
	return err != nil && !IsTransient(err)
}
