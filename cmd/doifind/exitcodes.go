package main

import (
	"errors"

	"github.com/matsen/doifind/internal/config"
)

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure, interrupted)
	ExitConfigError = 2 // Configuration error (missing credentials, invalid values, unknown source)
	ExitDataError   = 3 // Data error (unreadable or empty input, bad output path)
)

// exitError carries an exit code through cobra's error return.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// exitCode maps an error returned by a command to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if config.IsConfigError(err) {
		return ExitConfigError
	}
	return ExitError
}
