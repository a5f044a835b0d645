package errors

// Code is a stable, machine-readable error kind. Codes are part of the
// kit's public surface: services embedding credkit log and map transport
// responses off them, so existing values must not be renamed.
type Code string

const (
	// Credential parsing and construction failures (credhash, identifier).
	CodeUnsupportedAlgorithm Code = "UNSUPPORTED_ALGORITHM"
	CodeInvalidFormat        Code = "INVALID_FORMAT"
	CodeInvalidLength        Code = "INVALID_LENGTH"
	CodeInvalidIterations    Code = "INVALID_ITERATIONS"
	CodeReservedValue        Code = "RESERVED_VALUE"

	// Store failures (credstore).
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	CodeConflict      Code = "CONFLICT"
	CodeUnavailable   Code = "UNAVAILABLE"
	CodeTimeout       Code = "TIMEOUT"
	CodeCancelled     Code = "CANCELLED"

	// Everything else.
	CodeInvalidConfig Code = "INVALID_CONFIG"
	CodeInternal      Code = "INTERNAL_ERROR"
)

// String returns the string representation of the code.
func (c Code) String() string {
	return string(c)
}

// HTTPStatusCode returns the HTTP status for the code.
func (c Code) HTTPStatusCode() int {
	switch c {
	case CodeUnsupportedAlgorithm, CodeInvalidFormat, CodeInvalidLength,
		CodeInvalidIterations, CodeReservedValue:
		return 400 // Bad Request
	case CodeNotFound:
		return 404 // Not Found
	case CodeAlreadyExists, CodeConflict:
		return 409 // Conflict
	case CodeTimeout:
		return 408 // Request Timeout
	case CodeCancelled:
		return 499 // Client Closed Request
	case CodeUnavailable:
		return 503 // Service Unavailable
	default:
		return 500 // Internal Server Error
	}
}

// IsClientError reports whether the code maps to a 4xx status.
func (c Code) IsClientError() bool {
	status := c.HTTPStatusCode()
	return status >= 400 && status < 500
}

// IsServerError reports whether the code maps to a 5xx status.
func (c Code) IsServerError() bool {
	return c.HTTPStatusCode() >= 500
}
