// Package errors provides error annotation with slog attributes and source
// locations. It re-exports the stdlib helpers so callers only need one import.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
)

// annotatedError wraps an error with a message, structured annotations, and
// the program counter of the call site that created it.
type annotatedError struct {
	msg         string
	err         error
	annotations []slog.Attr
	pc          uintptr
}

func (e *annotatedError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *annotatedError) Unwrap() error {
	return e.err
}

// callerPC returns the program counter of the function skip levels up the
// stack from the caller of callerPC.
func callerPC(skip int) uintptr {
	var pcs [1]uintptr
	runtime.Callers(skip+2, pcs[:]) //nolint:mnd // skip runtime.Callers and callerPC itself.
	return pcs[0]
}

// NewSentinel creates a sentinel error that records its creation site.
func NewSentinel(msg string) error {
	return &annotatedError{
		msg:         msg,
		err:         nil,
		annotations: nil,
		pc:          callerPC(1),
	}
}

// Wrap annotates err with a message and optional slog attributes. A nil err
// is allowed and produces an error carrying only the message.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	return &annotatedError{
		msg:         msg,
		err:         err,
		annotations: attrs,
		pc:          callerPC(1),
	}
}

// DecoratePanic converts a recovered panic value into an annotated error
// pointing at the recovery site.
func DecoratePanic(recovered any) error {
	return &annotatedError{
		msg:         fmt.Sprintf("panic: %v", recovered),
		err:         nil,
		annotations: nil,
		pc:          callerPC(1),
	}
}

// SlogError renders err as a structured "error" attribute group containing
// the message, the source location of the outermost annotated error, and all
// annotations found in the error chain.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Group("error", slog.String("message", "<nil>"))
	}

	args := []any{slog.String("message", err.Error())}

	if source := sourceLocation(err); source != "" {
		args = append(args, slog.String("source", source))
	}

	if annotations := collectAnnotations(err); len(annotations) > 0 {
		groupArgs := make([]any, 0, len(annotations))
		for _, attr := range annotations {
			groupArgs = append(groupArgs, attr)
		}
		args = append(args, slog.Group("annotations", groupArgs...))
	}

	return slog.Group("error", args...)
}

// sourceLocation finds the creation site of the outermost annotated error in
// the chain.
func sourceLocation(err error) string {
	for _, candidate := range flatten(err) {
		var annotated *annotatedError
		if errors.As(candidate, &annotated) && annotated.pc != 0 {
			frames := runtime.CallersFrames([]uintptr{annotated.pc})
			frame, _ := frames.Next()
			if frame.File != "" {
				return fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
			}
		}
	}
	return ""
}

// collectAnnotations gathers slog attributes from every annotated error in
// the chain, outermost first.
func collectAnnotations(err error) []slog.Attr {
	var annotations []slog.Attr
	for _, candidate := range flatten(err) {
		current := candidate
		for current != nil {
			if annotated, ok := current.(*annotatedError); ok {
				annotations = append(annotations, annotated.annotations...)
			}
			current = errors.Unwrap(current)
		}
	}
	return annotations
}

// flatten expands joined errors into a flat list. Single errors come back as
// a one-element list.
func flatten(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var flattened []error
		for _, inner := range joined.Unwrap() {
			flattened = append(flattened, flatten(inner)...)
		}
		return flattened
	}
	return []error{err}
}

// Stdlib re-exports so that callers don't need a second errors import.

// New re-exports [errors.New].
func New(msg string) error { return errors.New(msg) }

// Is re-exports [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// As re-exports [errors.As].
func As(err error, target any) bool { return errors.As(err, target) }

// Unwrap re-exports [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }

// Join re-exports [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
