package httpclient

import (
	"net/url"
	"time"

	"github.com/kbukum/apiclient/validation"
	"github.com/kbukum/apiclient/version"
)

// DefaultTimeout bounds each request unless the config or the request sets
// its own.
const DefaultTimeout = 5 * time.Second

// Config configures a Client.
type Config struct {
	// Name identifies the upstream in logs. Defaults to the base URL host.
	Name string `yaml:"name" mapstructure:"name"`

	// BaseURL is joined with every request path.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"required,baseurl"`

	// Timeout bounds build, send and body read of one request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Headers are sent with every request. Request headers override them.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// UserAgent defaults to "apiclient/<version>".
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// RequestIDHeader, when set, receives a fresh UUID on each request that
	// does not already carry one.
	RequestIDHeader string `yaml:"request_id_header" mapstructure:"request_id_header" validate:"omitempty,headername"`

	// Cookies enables a cookie jar scoped by the public suffix list.
	Cookies bool `yaml:"cookies" mapstructure:"cookies"`

	Auth *AuthConfig `yaml:"auth" mapstructure:"auth"`
	TLS  *TLSConfig  `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = version.UserAgent("apiclient")
	}
	if c.Name == "" {
		if u, err := url.Parse(c.BaseURL); err == nil && u.Host != "" {
			c.Name = u.Host
		} else {
			c.Name = "httpclient"
		}
	}
	if c.Auth != nil {
		c.Auth.applyDefaults()
	}
}

// Validate checks the config and every nested section. All problems are
// reported together in one INVALID_CONFIG error.
func (c *Config) Validate() error {
	v := validation.New().
		Merge("client", validation.Validate(c)).
		NonNegativeDuration("timeout", c.Timeout)

	for name, value := range c.Headers {
		v.HeaderName("headers", name).HeaderValue("headers."+name, value)
	}
	v.HeaderValue("user_agent", c.UserAgent)

	if c.Auth != nil {
		c.Auth.validate(v)
	}
	if c.TLS != nil {
		v.Merge("tls", c.TLS.Validate())
	}

	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
