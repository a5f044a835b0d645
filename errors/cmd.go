package errors

import (
	"fmt"
	"strings"
)

// ToCMDError formats an error for CLI output as "[CODE] message".
func ToCMDError(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if As(err, &e) {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s", Classify(err), err.Error())
}

// ToCMDErrorWithStack appends the capture-site stack trace when present.
func ToCMDErrorWithStack(err error) string {
	msg := ToCMDError(err)
	if msg == "" {
		return ""
	}

	var e *Error
	if As(err, &e) && len(e.StackTrace) > 0 {
		var sb strings.Builder
		sb.WriteString(msg)
		sb.WriteString("\nStack Trace:\n")
		for _, frame := range e.StackTrace {
			sb.WriteString(fmt.Sprintf("  at %s:%d %s\n", frame.File, frame.Line, frame.Function))
		}
		return sb.String()
	}
	return msg
}
