package httpclient

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kbukum/apiclient/validation"
)

// AuthType identifies the authentication method.
type AuthType string

const (
	AuthNone   AuthType = "none"
	AuthBearer AuthType = "bearer"
	AuthBasic  AuthType = "basic"
	// AuthAPIKey sends a key in a header (default) or query parameter.
	AuthAPIKey AuthType = "apikey"
	// AuthCustom runs Apply against the built request.
	AuthCustom AuthType = "custom"
	// AuthServiceToken mints a short-lived HS256 JWT per request.
	AuthServiceToken AuthType = "service_token"
)

const (
	defaultAPIKeyName      = "X-API-Key"
	defaultServiceTokenTTL = time.Minute
)

// AuthConfig configures request authentication. The zero Type means none.
type AuthConfig struct {
	Type AuthType `yaml:"type" mapstructure:"type" validate:"omitempty,oneof=none bearer basic apikey custom service_token"`

	Token string `yaml:"token" mapstructure:"token"`

	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`

	Key string `yaml:"key" mapstructure:"key"`
	// In is "header" (default) or "query".
	In string `yaml:"in" mapstructure:"in" validate:"omitempty,oneof=header query"`
	// Name is the header or query parameter carrying the key.
	Name string `yaml:"name" mapstructure:"name"`

	// Secret signs service tokens.
	Secret   string        `yaml:"secret" mapstructure:"secret"`
	Issuer   string        `yaml:"issuer" mapstructure:"issuer"`
	Subject  string        `yaml:"subject" mapstructure:"subject"`
	Audience string        `yaml:"audience" mapstructure:"audience"`
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`

	Apply func(*http.Request) error `yaml:"-" mapstructure:"-"`
}

// BearerAuth creates a bearer token auth config.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// BasicAuth creates a basic auth config.
func BasicAuth(username, password string) *AuthConfig {
	return &AuthConfig{Type: AuthBasic, Username: username, Password: password}
}

// APIKeyAuth creates an API key auth config sent via the X-API-Key header.
func APIKeyAuth(key string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "header", Name: defaultAPIKeyName}
}

// APIKeyAuthHeader creates an API key auth config with a custom header name.
func APIKeyAuthHeader(key, headerName string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "header", Name: headerName}
}

// APIKeyAuthQuery creates an API key auth config sent via query parameter.
func APIKeyAuthQuery(key, paramName string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "query", Name: paramName}
}

// CustomAuth creates a custom auth config with a request modifier function.
func CustomAuth(fn func(*http.Request) error) *AuthConfig {
	return &AuthConfig{Type: AuthCustom, Apply: fn}
}

// ServiceTokenAuth creates an auth config that signs a bearer JWT for every
// request with the shared secret.
func ServiceTokenAuth(secret, issuer, audience string) *AuthConfig {
	return &AuthConfig{Type: AuthServiceToken, Secret: secret, Issuer: issuer, Audience: audience}
}

func (a *AuthConfig) applyDefaults() {
	if a.Type == AuthAPIKey {
		if a.In == "" {
			a.In = "header"
		}
		if a.Name == "" {
			a.Name = defaultAPIKeyName
		}
	}
	if a.Type == AuthServiceToken && a.TTL <= 0 {
		a.TTL = defaultServiceTokenTTL
	}
}

func (a *AuthConfig) validate(v *validation.Validator) {
	switch a.Type {
	case AuthBearer:
		v.Required("auth.token", a.Token).HeaderValue("auth.token", a.Token)
	case AuthBasic:
		v.Required("auth.username", a.Username)
	case AuthAPIKey:
		v.Required("auth.key", a.Key)
		if a.In != "query" {
			v.HeaderName("auth.name", a.Name).HeaderValue("auth.key", a.Key)
		}
	case AuthCustom:
		v.Custom(a.Apply != nil, "auth.apply", "is required for custom auth")
	case AuthServiceToken:
		v.Required("auth.secret", a.Secret).
			Required("auth.issuer", a.Issuer).
			NonNegativeDuration("auth.ttl", a.TTL)
	}
}

// apply authenticates req. Only service token signing and custom hooks can
// fail.
func (a *AuthConfig) apply(req *http.Request) error {
	if a == nil {
		return nil
	}
	switch a.Type {
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+a.Token)
	case AuthBasic:
		req.SetBasicAuth(a.Username, a.Password)
	case AuthAPIKey:
		name := a.Name
		if name == "" {
			name = defaultAPIKeyName
		}
		if a.In == "query" {
			q := req.URL.Query()
			q.Set(name, a.Key)
			req.URL.RawQuery = q.Encode()
		} else {
			req.Header.Set(name, a.Key)
		}
	case AuthCustom:
		if a.Apply != nil {
			return a.Apply(req)
		}
	case AuthServiceToken:
		token, err := a.signServiceToken(time.Now())
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	case AuthNone, "":
	default:
		return fmt.Errorf("unknown auth type %q", a.Type)
	}
	return nil
}

func (a *AuthConfig) signServiceToken(now time.Time) (string, error) {
	if a.Secret == "" {
		return "", fmt.Errorf("service token: empty secret")
	}
	ttl := a.TTL
	if ttl <= 0 {
		ttl = defaultServiceTokenTTL
	}
	claims := jwt.RegisteredClaims{
		Issuer:    a.Issuer,
		Subject:   a.Subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
	if a.Audience != "" {
		claims.Audience = jwt.ClaimStrings{a.Audience}
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.Secret))
	if err != nil {
		return "", fmt.Errorf("service token: %w", err)
	}
	return signed, nil
}
