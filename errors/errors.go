package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause returns a copy of the error with cause set. The receiver is left
// unchanged, so shared errors can be decorated per call.
func (e *AppError) WithCause(cause error) *AppError {
	c := e.clone()
	c.Cause = cause
	return c
}

// WithDetail returns a copy of the error with key set in its details.
func (e *AppError) WithDetail(key string, value any) *AppError {
	c := e.clone()
	if c.Details == nil {
		c.Details = make(map[string]any, 1)
	}
	c.Details[key] = value
	return c
}

// clone copies e with its own details map.
func (e *AppError) clone() *AppError {
	c := *e
	if e.Details != nil {
		c.Details = make(map[string]any, len(e.Details)+1)
		for k, v := range e.Details {
			c.Details[k] = v
		}
	}
	return &c
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// ConnectionFailed creates an error for an upstream that could not be reached.
func ConnectionFailed(target string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeConnectionFailed, Message: fmt.Sprintf("Unable to reach %s.", target),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"target": target}, Cause: cause,
	}
}

// Timeout creates an error for an upstream call that ran out of time.
func Timeout(target string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: fmt.Sprintf("%s did not respond in time.", target),
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"target": target}, Cause: cause,
	}
}

// UpstreamError creates an error for a structured error body returned by an upstream.
// The upstream status is kept in the details; the recommended status is 502.
func UpstreamError(target string, upstreamStatus int, cause error) *AppError {
	return &AppError{
		Code: ErrCodeUpstreamError, Message: fmt.Sprintf("%s returned an error.", target),
		HTTPStatus: http.StatusBadGateway, Retryable: false,
		Details: map[string]any{"target": target, "upstream_status": upstreamStatus}, Cause: cause,
	}
}

// UpstreamContract creates an error for an upstream body that did not match the expected shape.
func UpstreamContract(target string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeUpstreamContract, Message: fmt.Sprintf("%s returned a body in an unexpected shape.", target),
		HTTPStatus: http.StatusBadGateway, Retryable: false,
		Details: map[string]any{"target": target}, Cause: cause,
	}
}

// UnexpectedStatus creates an error for an upstream status that did not match the expected one.
func UnexpectedStatus(target string, expected, got int) *AppError {
	return &AppError{
		Code: ErrCodeUnexpectedStatus, Message: fmt.Sprintf("%s answered %d, expected %d.", target, got, expected),
		HTTPStatus: http.StatusBadGateway, Retryable: false,
		Details: map[string]any{"target": target, "expected_status": expected, "upstream_status": got},
	}
}

// InvalidRequest creates an error for a request that could not be built.
func InvalidRequest(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInvalidRequest, Message: "The outgoing request could not be built.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// InvalidConfig creates an error for configuration that failed validation.
func InvalidConfig(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidConfig, Message: message,
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
	}
}

// Internal creates an error for an unclassified failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
