package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/kbukum/apiclient/format"
	"github.com/kbukum/apiclient/httpclient"
)

// Client is a JSON client.
type Client = httpclient.Client[format.JSON]

// Request is a JSON request under construction.
type Request = httpclient.Request[format.JSON]

// New creates a JSON client from the given config.
func New(cfg httpclient.Config, opts ...httpclient.Option) (*Client, error) {
	return httpclient.New[format.JSON](cfg, opts...)
}

// Receive classifies req and returns the decoded success body.
func Receive[Ok, E any](ctx context.Context, req *Request) (Ok, error) {
	return httpclient.ExpectOK[Ok, E](ctx, req)
}

// ExpectError classifies req and returns the decoded error body when the
// upstream answered with status.
func ExpectError[Ok, E any](ctx context.Context, req *Request, status int) (E, error) {
	return httpclient.ExpectErr[Ok, E](ctx, req, status)
}

// RequestOption configures a single request.
type RequestOption func(*Request)

// WithQuery adds query parameters to the request.
func WithQuery(params map[string]string) RequestOption {
	return func(r *Request) {
		for k, v := range params {
			r.Query(k, v)
		}
	}
}

// WithHeaders sets headers on the request.
func WithHeaders(headers map[string]string) RequestOption {
	return func(r *Request) {
		for k, v := range headers {
			r.Header(k, v)
		}
	}
}

// WithAuth overrides authentication for the request.
func WithAuth(auth *httpclient.AuthConfig) RequestOption {
	return func(r *Request) { r.Auth(auth) }
}

// WithTimeout overrides the client timeout for the request.
func WithTimeout(d time.Duration) RequestOption {
	return func(r *Request) { r.Timeout(d) }
}

// Get performs a GET request and decodes the response into Ok.
func Get[Ok, E any](ctx context.Context, c *Client, path string, opts ...RequestOption) (Ok, error) {
	return do[Ok, E](ctx, c, http.MethodGet, path, nil, opts...)
}

// Post performs a POST request with a JSON body.
func Post[Ok, E any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (Ok, error) {
	return do[Ok, E](ctx, c, http.MethodPost, path, body, opts...)
}

// Put performs a PUT request with a JSON body.
func Put[Ok, E any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (Ok, error) {
	return do[Ok, E](ctx, c, http.MethodPut, path, body, opts...)
}

// Patch performs a PATCH request with a JSON body.
func Patch[Ok, E any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (Ok, error) {
	return do[Ok, E](ctx, c, http.MethodPatch, path, body, opts...)
}

// Delete performs a DELETE request.
func Delete[Ok, E any](ctx context.Context, c *Client, path string, opts ...RequestOption) (Ok, error) {
	return do[Ok, E](ctx, c, http.MethodDelete, path, nil, opts...)
}

func do[Ok, E any](ctx context.Context, c *Client, method, path string, body any, opts ...RequestOption) (Ok, error) {
	req := c.NewRequest(method, path)
	if body != nil {
		req.Body(body)
	}
	for _, opt := range opts {
		opt(req)
	}
	return Receive[Ok, E](ctx, req)
}
