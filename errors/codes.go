package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Transport errors (retryable)
const (
	// ErrCodeConnectionFailed indicates the upstream could not be reached or
	// the connection broke while reading the response.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeTimeout indicates the upstream did not answer in time.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Upstream response errors
const (
	// ErrCodeUpstreamError indicates the upstream answered with a structured error body.
	ErrCodeUpstreamError ErrorCode = "UPSTREAM_ERROR"
	// ErrCodeUpstreamContract indicates the upstream body did not match the expected shape.
	ErrCodeUpstreamContract ErrorCode = "UPSTREAM_CONTRACT"
	// ErrCodeUnexpectedStatus indicates the upstream answered with a status the caller did not expect.
	ErrCodeUnexpectedStatus ErrorCode = "UNEXPECTED_STATUS"
)

// Local errors
const (
	// ErrCodeInvalidRequest indicates the request could not be built.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrCodeInvalidConfig indicates a configuration value failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeInternal indicates a bug or an unclassified failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeConnectionFailed: true,
	ErrCodeTimeout:          true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
