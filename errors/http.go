package errors

import "encoding/json"

// HTTPError is the JSON error body a service embedding the kit returns.
type HTTPError struct {
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	StackTrace []string `json:"stack_trace,omitempty"`
}

// ToHTTPError converts an error to an HTTPError body. Plain errors are
// classified first so core sentinel errors surface their proper code.
func ToHTTPError(err error, includeStackTrace bool) HTTPError {
	if err == nil {
		return HTTPError{
			Code:    CodeInternal.String(),
			Message: "unknown error",
		}
	}

	var e *Error
	if As(err, &e) {
		httpErr := HTTPError{
			Code:    e.Code.String(),
			Message: e.Message,
		}
		if includeStackTrace && len(e.StackTrace) > 0 {
			traces := make([]string, 0, len(e.StackTrace))
			for _, frame := range e.StackTrace {
				traces = append(traces, frame.String())
			}
			httpErr.StackTrace = traces
		}
		return httpErr
	}

	return HTTPError{
		Code:    Classify(err).String(),
		Message: err.Error(),
	}
}

// ToJSON renders the body as a JSON string.
func (e HTTPError) ToJSON() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// HTTPStatusCode returns the status code for an error, 200 for nil.
func HTTPStatusCode(err error) int {
	if err == nil {
		return 200
	}
	return GetCode(err).HTTPStatusCode()
}

// HTTPResponse pairs a status code with its error body.
type HTTPResponse struct {
	StatusCode int       `json:"-"`
	Error      HTTPError `json:"error"`
}

// ToHTTPResponse converts an error to a complete HTTP error response.
func ToHTTPResponse(err error, includeStackTrace bool) HTTPResponse {
	return HTTPResponse{
		StatusCode: HTTPStatusCode(err),
		Error:      ToHTTPError(err, includeStackTrace),
	}
}
