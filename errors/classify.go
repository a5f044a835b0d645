package errors

import (
	"context"
	"errors"

	"github.com/credforge/credkit/credhash"
	"github.com/credforge/credkit/identifier"
)

// Classify maps a plain error from the kit's core packages (or the
// context package) to its stable code. Unknown errors classify as
// CodeInternal.
func Classify(err error) Code {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, credhash.ErrUnsupportedAlgorithm):
		return CodeUnsupportedAlgorithm
	case errors.Is(err, credhash.ErrInvalidFormat),
		errors.Is(err, identifier.ErrInvalidFormat):
		return CodeInvalidFormat
	case errors.Is(err, credhash.ErrInvalidLength):
		return CodeInvalidLength
	case errors.Is(err, credhash.ErrInvalidIterations):
		return CodeInvalidIterations
	case errors.Is(err, credhash.ErrReservedValue):
		return CodeReservedValue
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, context.Canceled):
		return CodeCancelled
	default:
		return CodeInternal
	}
}
