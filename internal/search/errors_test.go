package search

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindForStatus(t *testing.T) {
	tests := []struct {
		code int
		want Kind
	}{
		{429, Transient},
		{408, Transient},
		{500, Transient},
		{502, Transient},
		{503, Transient},
		{504, Transient},
		{400, Permanent},
		{401, Permanent},
		{403, Permanent},
		{404, Permanent},
		{422, Permanent},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindForStatus(tt.code), "status %d", tt.code)
	}
}

func TestError_Is(t *testing.T) {
	transient := StatusError("crossref", 503, "unavailable")
	assert.ErrorIs(t, transient, ErrTransient)
	assert.NotErrorIs(t, transient, ErrPermanent)

	permanent := StatusError("crossref", 400, "")
	assert.ErrorIs(t, permanent, ErrPermanent)
	assert.NotErrorIs(t, permanent, ErrTransient)

	wrapped := fmt.Errorf("searching: %w", transient)
	assert.True(t, IsTransient(wrapped))
	assert.False(t, IsPermanent(wrapped))

	var se *Error
	if assert.ErrorAs(t, wrapped, &se) {
		assert.Equal(t, 503, se.StatusCode)
		assert.Equal(t, "crossref", se.Source)
	}
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "s2 permanent error (status 404)", StatusError("s2", 404, "").Error())
	assert.Equal(t, "s2 transient error (status 429): slow down", StatusError("s2", 429, "slow down").Error())
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestClassify(t *testing.T) {
	assert.NoError(t, Classify("crossref", nil))

	assert.True(t, IsTransient(Classify("crossref", context.DeadlineExceeded)))
	assert.True(t, IsTransient(Classify("crossref", timeoutErr{})))
	assert.True(t, IsTransient(Classify("crossref", &net.OpError{Op: "dial", Err: errors.New("connection refused")})))

	assert.True(t, IsPermanent(Classify("crossref", context.Canceled)))
	assert.True(t, IsPermanent(Classify("crossref", errors.New("decode failure"))))

	// Already classified errors pass through.
	orig := StatusError("s2", 429, "")
	assert.Same(t, orig, Classify("crossref", orig))
}

func TestIsTransient_Unclassified(t *testing.T) {
	assert.False(t, IsTransient(errors.New("boom")))
	assert.True(t, IsPermanent(errors.New("boom")))
	assert.False(t, IsPermanent(nil))
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.True(t, IsTransient(timeoutErr{}))
}

func TestIsTransient_AgreesWithClassify(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	errs := []error{
		refused,
		fmt.Errorf("searching: %w", refused),
		timeoutErr{},
		context.DeadlineExceeded,
		context.Canceled,
		errors.New("decode failure"),
		fmt.Errorf("wrapped: %w", ErrTransient),
		fmt.Errorf("wrapped: %w", ErrPermanent),
	}
	for _, err := range errs {
		assert.Equal(t, IsTransient(Classify("crossref", err)), IsTransient(err), "%v", err)
	}
	assert.True(t, IsTransient(refused))

	// A classified permanent error stays permanent even around a net.Error.
	assert.False(t, IsTransient(&Error{Kind: Permanent, Source: "s2", Err: refused}))
}
