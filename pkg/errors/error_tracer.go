// Package errors layers stack traces onto errors so the logger can report
// where a failure originated instead of where it was logged.
package errors

import "github.com/pkg/errors"

// StackTracer is implemented by errors that carry a recorded stack. The
// logger consults it to attach the originating trace to an error entry.
type StackTracer interface {
	StackTrace() errors.StackTrace
}

// ErrorTracer pairs a display message with the underlying error that holds
// the stack. The message is what surfaces to the reader; the wrapped error
// keeps the trace.
type ErrorTracer struct {
	Message string
	Err     error
}

// NewTracer creates a tracer with the given message and no cause yet.
func NewTracer(message string) *ErrorTracer {
	return &ErrorTracer{Message: message}
}

// TracerFromError wraps err under its own message, recording a stack at
// this call site unless err already carries one.
func TracerFromError(err error) *ErrorTracer {
	return NewTracer(err.Error()).Wrap(err)
}

// Wrap attaches err as the cause. An error without a stack gets one
// recorded here; an error that already has one keeps it untouched.
func (e *ErrorTracer) Wrap(err error) *ErrorTracer {
	if _, ok := err.(StackTracer); ok {
		e.Err = err
		return e
	}
	e.Err = errors.WithStack(err)
	return e
}

func (e *ErrorTracer) Error() string {
	return e.Message
}

func (e *ErrorTracer) Unwrap() error {
	return e.Err
}

// StackTrace returns the cause's recorded stack, or nil when there is none.
func (e *ErrorTracer) StackTrace() errors.StackTrace {
	if tracer, ok := e.Err.(StackTracer); ok {
		return tracer.StackTrace()
	}
	return nil
}
