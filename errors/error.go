// Package errors carries the kit's coded error type and its renderings for
// HTTP, gRPC, and CLI surfaces. The core packages (credhash, identifier)
// return plain sentinel errors; Classify lifts those into stable codes at
// the boundary where a service needs to answer a caller.
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// Error is an error with a stable code, a human-readable message, and an
// optional wrapped cause.
type Error struct {
	Code       Code
	Message    string
	Cause      error
	StackTrace []StackFrame
}

// StackFrame is a single frame of the capture site.
type StackFrame struct {
	File     string
	Line     int
	Function string
}

// String formats the frame as "function at file:line".
func (sf StackFrame) String() string {
	return fmt.Sprintf("%s at %s:%d", sf.Function, sf.File, sf.Line)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		StackTrace: captureStackTrace(),
	}
}

// Newf creates an error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{
		Code:       code,
		Message:    fmt.Sprintf(format, args...),
		StackTrace: captureStackTrace(),
	}
}

// Wrap wraps err with a code and message. Returns nil when err is nil.
// When err is already an *Error its original capture site is preserved.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}

	var original *Error
	if errors.As(err, &original) {
		return &Error{
			Code:       code,
			Message:    message,
			Cause:      err,
			StackTrace: original.StackTrace,
		}
	}

	return &Error{
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: captureStackTrace(),
	}
}

// Wrapf wraps err with a formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain matching target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the code from err, classifying plain errors on the way.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Classify(err)
}

func captureStackTrace() []StackFrame {
	const maxDepth = 32
	var pcs [maxDepth]uintptr
	n := runtime.Callers(3, pcs[:])

	frames := make([]StackFrame, 0, n)
	for i := 0; i < n; i++ {
		fn := runtime.FuncForPC(pcs[i])
		if fn == nil {
			continue
		}
		file, line := fn.FileLine(pcs[i])
		frames = append(frames, StackFrame{File: file, Line: line, Function: fn.Name()})
	}
	return frames
}
