package httpclient

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"

	"golang.org/x/net/publicsuffix"

	"github.com/kbukum/apiclient/format"
	"github.com/kbukum/apiclient/logger"
	"github.com/kbukum/apiclient/observability"
)

// Doer sends one request. *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Option customises a Client.
type Option func(*options)

type options struct {
	doer    Doer
	log     *logger.Logger
	metrics *observability.Metrics
}

// WithDoer replaces the transport. TLS and cookie settings are then the
// doer's business.
func WithDoer(d Doer) Option {
	return func(o *options) { o.doer = d }
}

// WithLogger sets the logger used for per-request log lines.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics records outcome metrics for every classification.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// Client builds requests against one base URL in wire format F. It holds no
// per-request state and is safe for concurrent use.
type Client[F format.Format] struct {
	config     Config
	doer       Doer
	httpClient *http.Client
	log        *logger.Logger
	metrics    *observability.Metrics
}

// New validates cfg and creates a client.
func New[F format.Format](cfg Config, opts ...Option) (*Client[F], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client[F]{
		config:  cfg,
		doer:    o.doer,
		log:     o.log,
		metrics: o.metrics,
	}
	if c.log == nil {
		c.log = logger.Get("httpclient")
	}
	var f F
	c.log = c.log.WithFields(logger.Fields("client", cfg.Name, "format", f.Name()))

	if c.doer == nil {
		hc, err := newHTTPClient(cfg)
		if err != nil {
			return nil, err
		}
		c.httpClient = hc
		c.doer = hc
	}
	return c, nil
}

// newHTTPClient leaves http.Client.Timeout unset; Classify bounds each request
// through its context instead.
func newHTTPClient(cfg Config) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, err
	}
	if tlsCfg != nil {
		transport.TLSClientConfig = tlsCfg
	}

	hc := &http.Client{Transport: transport}
	if cfg.Cookies {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		hc.Jar = jar
	}
	return hc, nil
}

// Name returns the configured upstream name.
func (c *Client[F]) Name() string { return c.config.Name }

// Config returns a copy of the effective configuration.
func (c *Client[F]) Config() Config { return c.config }

// Path joins path against the base URL.
func (c *Client[F]) Path(path string) string { return Join(c.config.BaseURL, path) }

// NewRequest starts a request with an arbitrary method.
func (c *Client[F]) NewRequest(method, path string) *Request[F] {
	return newRequest(c, method, path)
}

func (c *Client[F]) Get(path string) *Request[F]    { return newRequest(c, http.MethodGet, path) }
func (c *Client[F]) Post(path string) *Request[F]   { return newRequest(c, http.MethodPost, path) }
func (c *Client[F]) Put(path string) *Request[F]    { return newRequest(c, http.MethodPut, path) }
func (c *Client[F]) Patch(path string) *Request[F]  { return newRequest(c, http.MethodPatch, path) }
func (c *Client[F]) Delete(path string) *Request[F] { return newRequest(c, http.MethodDelete, path) }

// Close releases idle connections of the built-in transport.
func (c *Client[F]) Close() {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
}
