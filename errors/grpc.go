package errors

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GRPCCode returns the gRPC status code for the code.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeUnsupportedAlgorithm, CodeInvalidFormat, CodeInvalidLength,
		CodeInvalidIterations, CodeReservedValue:
		return codes.InvalidArgument
	case CodeNotFound:
		return codes.NotFound
	case CodeAlreadyExists:
		return codes.AlreadyExists
	case CodeConflict:
		return codes.Aborted
	case CodeTimeout:
		return codes.DeadlineExceeded
	case CodeCancelled:
		return codes.Canceled
	case CodeUnavailable:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// ToGRPCError converts an error to a gRPC status error. Plain errors are
// classified first.
func ToGRPCError(err error) error {
	if err == nil {
		return nil
	}

	var e *Error
	if As(err, &e) {
		return status.New(e.Code.GRPCCode(), e.Message).Err()
	}
	return status.Error(Classify(err).GRPCCode(), err.Error())
}
