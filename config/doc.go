// Package config loads service configuration from a YAML file, an optional
// .env file and the process environment.
//
// Environment variables win over file values. A variable such as
// CLIENT_BASE_URL is bound to every nested key it could spell
// (client.base_url, client.base.url, ...), so nested structs need no explicit
// bindings. With WithEnvPrefix only prefixed variables are considered and the
// prefix is stripped first.
//
//	var cfg probeConfig
//	err := config.Load("apiprobe", &cfg, config.WithEnvPrefix("APIPROBE"))
//
// If cfg implements Defaulter or Validator the hooks run after unmarshalling.
package config
