package observability

import (
	"fmt"
	"time"
)

// Config is the config-file view of tracing and metrics settings.
type Config struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	ServiceName     string        `yaml:"service_name" mapstructure:"service_name"`
	ServiceVersion  string        `yaml:"service_version" mapstructure:"service_version"`
	Environment     string        `yaml:"environment" mapstructure:"environment"`
	Endpoint        string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure        bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate      float64       `yaml:"sample_rate" mapstructure:"sample_rate"`
	MetricsInterval time.Duration `yaml:"metrics_interval" mapstructure:"metrics_interval"`
}

// ApplyDefaults fills unset fields from DefaultTracerConfig.
func (c *Config) ApplyDefaults(serviceName string) {
	d := DefaultTracerConfig(serviceName)
	if c.ServiceName == "" {
		c.ServiceName = d.ServiceName
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = d.ServiceVersion
	}
	if c.Environment == "" {
		c.Environment = d.Environment
	}
	if c.Endpoint == "" {
		c.Endpoint = d.Endpoint
	}
	if c.SampleRate == 0 {
		c.SampleRate = d.SampleRate
	}
	if c.MetricsInterval == 0 {
		c.MetricsInterval = 15 * time.Second
	}
}

// Validate checks ranges only; an unreachable endpoint is an export-time error.
func (c *Config) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("observability.sample_rate must be within [0, 1] (got: %v)", c.SampleRate)
	}
	if c.MetricsInterval < 0 {
		return fmt.Errorf("observability.metrics_interval must not be negative")
	}
	return nil
}

// Tracer returns the tracer settings.
func (c *Config) Tracer() TracerConfig {
	return TracerConfig{
		ServiceName:    c.ServiceName,
		ServiceVersion: c.ServiceVersion,
		Environment:    c.Environment,
		Endpoint:       c.Endpoint,
		Insecure:       c.Insecure,
		SampleRate:     c.SampleRate,
	}
}

// Meter returns the meter settings.
func (c *Config) Meter() MeterConfig {
	return MeterConfig{
		ServiceName:    c.ServiceName,
		ServiceVersion: c.ServiceVersion,
		Environment:    c.Environment,
		Endpoint:       c.Endpoint,
		Insecure:       c.Insecure,
		Interval:       c.MetricsInterval,
	}
}
