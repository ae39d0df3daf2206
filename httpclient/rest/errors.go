package rest

import (
	"net/http"

	apperrors "github.com/kbukum/apiclient/errors"
	"github.com/kbukum/apiclient/httpclient"
)

// Status helpers look at the response behind err, whatever its kind, so a
// 404 that failed to decode still counts as not found.

func statusOf(err error) int {
	rc, ok := httpclient.ContextOf(err)
	if !ok {
		return 0
	}
	return rc.StatusCode()
}

// IsNotFound checks if the upstream answered 404.
func IsNotFound(err error) bool { return statusOf(err) == http.StatusNotFound }

// IsAuth checks if the upstream answered 401 or 403.
func IsAuth(err error) bool {
	s := statusOf(err)
	return s == http.StatusUnauthorized || s == http.StatusForbidden
}

// IsRateLimit checks if the upstream answered 429.
func IsRateLimit(err error) bool { return statusOf(err) == http.StatusTooManyRequests }

// IsServerError checks if the upstream answered 5xx.
func IsServerError(err error) bool { return statusOf(err) >= 500 }

// IsTimeout checks if the request ran out of time before a response was read.
func IsTimeout(err error) bool {
	if !httpclient.IsTransport(err) {
		return false
	}
	return httpclient.ToAppError(err).Code == apperrors.ErrCodeTimeout
}
