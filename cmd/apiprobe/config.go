package main

import (
	"github.com/kbukum/apiclient/config"
	"github.com/kbukum/apiclient/httpclient"
	"github.com/kbukum/apiclient/version"
)

const serviceName = "apiprobe"

// probeConfig is read from config.yml, .env files and APIPROBE_* variables.
//
//	name: apiprobe
//	logging:
//	  level: debug
//	client:
//	  base_url: https://petstore.example.com/v2
//	  timeout: 2s
//	  auth:
//	    type: bearer
//	    token: ${TOKEN}
type probeConfig struct {
	config.ServiceConfig `mapstructure:",squash"`

	Client httpclient.Config `yaml:"client" mapstructure:"client"`
}

func (c *probeConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	// Keep stdout for the report.
	if c.Logging.Output == "" {
		c.Logging.Output = "stderr"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "warn"
	}
	if c.Version == "" {
		c.Version = version.Get().Short()
	}
	if c.Client.UserAgent == "" {
		c.Client.UserAgent = version.UserAgent(serviceName)
	}
	c.ServiceConfig.ApplyDefaults()
	c.Client.ApplyDefaults()
}

func (c *probeConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	return c.Client.Validate()
}

func loadConfig(flags *probeFlags) (*probeConfig, error) {
	opts := []config.LoaderOption{config.WithEnvPrefix("APIPROBE")}
	if flags.configFile != "" {
		opts = append(opts, config.WithConfigFile(flags.configFile))
	}
	if flags.envFile != "" {
		opts = append(opts, config.WithEnvFile(flags.envFile))
	}
	if flags.baseURL != "" {
		opts = append(opts, config.WithOverride("client.base_url", flags.baseURL))
	}
	if flags.timeout > 0 {
		opts = append(opts, config.WithOverride("client.timeout", flags.timeout))
	}
	if len(flags.headers) > 0 {
		opts = append(opts, config.WithOverride("client.headers", flags.headers))
	}
	if flags.logLevel != "" {
		opts = append(opts, config.WithOverride("logging.level", flags.logLevel))
	}

	var cfg probeConfig
	if err := config.Load(serviceName, &cfg, opts...); err != nil {
		return nil, err
	}
	return &cfg, nil
}
