package ai

import (
	"errors"
	"fmt"
	"time"
)

const (
	CodeConfig      = "LLM_CONFIG_ERROR"
	CodeTimeout     = "LLM_TIMEOUT"
	CodeRateLimited = "LLM_RATE_LIMITED"
	CodeHTTP        = "LLM_HTTP_ERROR"
	CodeNoResponse  = "LLM_NO_RESPONSE"
	CodeUnknown     = "LLM_UNKNOWN_ERROR"
)

// ErrNotConfigured is returned when a provider is built without credentials.
var ErrNotConfigured = errors.New("model credentials not configured")

// Error is the single error category for model invocation failures.
type Error struct {
	Code       string
	Message    string
	Status     int
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.RetryAfter > 0 {
		msg = fmt.Sprintf("%s, retry after %s", msg, e.RetryAfter)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// AsError returns the model error carried by err, wrapping anything else as
// LLM_UNKNOWN_ERROR.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return newError(CodeUnknown, "model request failed", err)
}
