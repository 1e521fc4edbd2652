package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUpstreamTimeout marks a grading call that ran past its deadline.
var ErrUpstreamTimeout = errors.New("grading request timed out")

// ConfigurationError is an operator-correctable problem such as a missing credential.
// Its Setting names the environment variable; the message shown to callers stays generic.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("API key not configured. Please set %s in environment variables.", e.Setting)
}

// UpstreamError is a failed call to the external grading API: transport failure,
// non-success status or deadline.
type UpstreamError struct {
	StatusCode int    // upstream status, 0 when the request never completed
	Message    string // detail extracted from the upstream error body
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "API Error"
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the call failed because its deadline expired.
func (e *UpstreamError) Timeout() bool {
	return errors.Is(e.Err, ErrUpstreamTimeout)
}

// HTTPStatus maps the failure to the status the proxy answers with.
func (e *UpstreamError) HTTPStatus() int {
	if e.Timeout() {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

// UpstreamFormatError means the grader answered, but not with the contracted JSON.
type UpstreamFormatError struct {
	Payload string
	Err     error
}

func (e *UpstreamFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("grader returned malformed JSON: %v", e.Err)
	}
	return "grader returned malformed JSON"
}

func (e *UpstreamFormatError) Unwrap() error {
	return e.Err
}

func NewUpstreamError(statusCode int, message string, err error) *UpstreamError {
	return &UpstreamError{StatusCode: statusCode, Message: message, Err: err}
}

func NewUpstreamFormatError(payload string, err error) *UpstreamFormatError {
	return &UpstreamFormatError{Payload: payload, Err: err}
}

func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

func IsUpstreamFormat(err error) bool {
	var fe *UpstreamFormatError
	return errors.As(err, &fe)
}

func IsValidation(err error) bool {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *ValidationError
	return errors.As(err, &single)
}
