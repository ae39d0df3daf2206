package httpclient

import (
	"github.com/kbukum/apiclient/format"
)

// ResponseContext is what was observed for one executed request: the method
// and URL sent, the status received and the full body as text. It is built
// once the body has been read completely and never changes afterwards.
type ResponseContext struct {
	method string
	url    string
	status int
	body   string
}

// NewResponseContext captures an observed response.
func NewResponseContext(method, url string, status int, body string) ResponseContext {
	return ResponseContext{method: method, url: url, status: status, body: body}
}

func (rc ResponseContext) Method() string  { return rc.method }
func (rc ResponseContext) URL() string     { return rc.url }
func (rc ResponseContext) StatusCode() int { return rc.status }
func (rc ResponseContext) Body() string    { return rc.body }

// IsSuccess reports whether the status is 2xx.
func (rc ResponseContext) IsSuccess() bool {
	return rc.status >= 200 && rc.status < 300
}

// ExpectStatus returns nil when the observed status equals status, and a
// KindUnexpectedStatus error carrying this context otherwise.
func (rc ResponseContext) ExpectStatus(status int) error {
	if rc.status == status {
		return nil
	}
	return unexpectedStatus[struct{}](rc, status)
}

// DecodeBody decodes the captured body with f. Use it to re-read a body in a
// shape other than the one the classifier chose.
func DecodeBody[T any](rc ResponseContext, f format.Format) (T, error) {
	return format.Decode[T](f, rc.body)
}
