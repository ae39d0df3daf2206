// Package errors provides the application error vocabulary used when an
// upstream API call fails and the failure has to be surfaced to a caller.
//
// Errors carry a machine-readable code, a human message, a retryable hint, a
// recommended HTTP status and optional details, and render as RFC 7807 style
// JSON bodies through ToResponse.
package errors
