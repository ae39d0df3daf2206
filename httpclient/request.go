package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/apiclient/format"
	"github.com/kbukum/apiclient/observability"
)

// Join appends path to baseURL with exactly one slash between them.
func Join(baseURL, path string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), "/") + "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
}

// Request is a request under construction. Setters record problems instead
// of failing so the chain stays fluent; Build reports the first of them.
// A Request is not safe for concurrent mutation, but a finished one may be
// built any number of times.
type Request[F format.Format] struct {
	client  *Client[F]
	method  string
	url     string
	query   url.Values
	header  http.Header
	body    any
	hasBody bool
	timeout time.Duration
	auth    *AuthConfig
	err     error
}

func newRequest[F format.Format](c *Client[F], method, path string) *Request[F] {
	return &Request[F]{
		client:  c,
		method:  method,
		url:     Join(c.config.BaseURL, path),
		header:  make(http.Header),
		timeout: c.config.Timeout,
	}
}

// Method returns the HTTP method.
func (r *Request[F]) Method() string { return r.method }

// URL returns the joined URL without query parameters added via Query.
func (r *Request[F]) URL() string { return r.url }

// Query adds a query parameter.
func (r *Request[F]) Query(key, value string) *Request[F] {
	if r.query == nil {
		r.query = make(url.Values)
	}
	r.query.Add(key, value)
	return r
}

// Header sets a header, replacing defaults of the same name.
func (r *Request[F]) Header(key, value string) *Request[F] {
	r.header.Set(key, value)
	return r
}

// Body sets a payload encoded with F when the request is built. []byte and
// string payloads are sent verbatim.
func (r *Request[F]) Body(v any) *Request[F] {
	r.body, r.hasBody = v, true
	return r
}

// RawBody sets a pre-encoded payload.
func (r *Request[F]) RawBody(b []byte) *Request[F] {
	return r.Body(b)
}

// Timeout overrides the client timeout for this request. Non-positive values
// are rejected at build time.
func (r *Request[F]) Timeout(d time.Duration) *Request[F] {
	if d <= 0 && r.err == nil {
		r.err = fmt.Errorf("timeout must be positive (got %s)", d)
	}
	r.timeout = d
	return r
}

// Auth overrides the client's authentication for this request.
func (r *Request[F]) Auth(a *AuthConfig) *Request[F] {
	r.auth = a
	return r
}

// EffectiveTimeout returns the deadline Classify applies.
func (r *Request[F]) EffectiveTimeout() time.Duration {
	if r.timeout <= 0 {
		return DefaultTimeout
	}
	return r.timeout
}

func hasPayload(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// Build produces the *http.Request without sending it.
func (r *Request[F]) Build(ctx context.Context) (*http.Request, error) {
	if r.err != nil {
		return nil, r.err
	}

	u, err := url.Parse(r.url)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if len(r.query) > 0 {
		q := u.Query()
		for k, vs := range r.query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	var f F
	var payload io.Reader
	if r.hasBody {
		b, err := format.Encode(f, r.body)
		if err != nil {
			return nil, err
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), payload)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	cfg := r.client.config
	req.Header.Set("Accept", f.Accept())
	if hasPayload(r.method) {
		req.Header.Set("Content-Type", f.ContentType())
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}
	for k, vs := range r.header {
		req.Header[k] = append([]string(nil), vs...)
	}
	if h := cfg.RequestIDHeader; h != "" && req.Header.Get(h) == "" {
		req.Header.Set(h, uuid.NewString())
	}

	auth := cfg.Auth
	if r.auth != nil {
		auth = r.auth
	}
	if err := auth.apply(req); err != nil {
		return nil, fmt.Errorf("apply %s auth: %w", auth.Type, err)
	}

	observability.InjectHeaders(ctx, req.Header)
	return req, nil
}
