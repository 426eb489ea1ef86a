package provider

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/leofalp/recall/core/client"
	"github.com/leofalp/recall/providers/ai/openai"
)

// Variant tags the backend family a Config was built for.
type Variant string

const (
	VariantHosted Variant = "hosted" // authenticated REST, credential required
	VariantLocal  Variant = "local"  // no-auth REST, credential optional
	VariantCustom Variant = "custom" // generic endpoint, auth inferred from the credential
)

// AuthPolicy says whether requests carry a bearer credential.
type AuthPolicy string

const (
	AuthBearer AuthPolicy = "bearer"
	AuthNone   AuthPolicy = "none"
)

// Config is an immutable description of how to reach, authenticate against and
// select a model on an OpenAI-compatible backend. Build it with NewHosted,
// NewLocal, FromCustom or Preset; the zero value is not usable.
type Config struct {
	variant Variant
	name    string
	baseURL string
	apiKey  string
	model   string
	auth    AuthPolicy
	keyEnv  string
	keyURL  string
}

// Option adjusts a Config while it is being constructed.
type Option func(*Config)

// WithCredentialEnv records the environment variable that holds the credential,
// used in remediation hints.
func WithCredentialEnv(name string) Option {
	return func(c *Config) {
		c.keyEnv = name
	}
}

// WithCredentialURL records where a user can obtain a credential.
func WithCredentialURL(u string) Option {
	return func(c *Config) {
		c.keyURL = u
	}
}

// NewHosted builds a config for an authenticated hosted API. An empty apiKey is
// rejected immediately.
func NewHosted(name, baseURL, apiKey, model string, opts ...Option) (Config, error) {
	c := newConfig(VariantHosted, name, baseURL, apiKey, model, opts)
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(c.apiKey) == "" {
		return Config{}, &ConfigurationError{
			Backend: c.name,
			Field:   "api_key",
			Err:     fmt.Errorf("%w (set %s)", ErrMissingCredential, c.keyEnv),
		}
	}
	c.auth = AuthBearer
	return c, nil
}

// NewLocal builds a config for a local server that needs no credential. A
// non-placeholder apiKey is still forwarded for servers started with one.
func NewLocal(name, baseURL, apiKey, model string, opts ...Option) (Config, error) {
	c := newConfig(VariantLocal, name, baseURL, apiKey, model, opts)
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	c.auth = inferAuth(c.apiKey)
	return c, nil
}

// FromCustom builds a config for any OpenAI-compatible endpoint. The auth policy
// is AuthNone when apiKey is empty or a known placeholder such as "ollama", and
// AuthBearer otherwise. Well-known hosts contribute their remediation hints,
// and a well-known hosted API without a real key is rejected like NewHosted.
func FromCustom(baseURL, apiKey, model string, opts ...Option) (Config, error) {
	name := "custom"
	var keyURL string
	b, known := lookupBackend(baseURL)
	if known {
		name = b.name
		keyURL = b.keyURL
	}

	c := newConfig(VariantCustom, name, baseURL, apiKey, model, append([]Option{WithCredentialURL(keyURL)}, opts...))
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	c.auth = inferAuth(c.apiKey)
	if known && b.variant == VariantHosted && c.auth == AuthNone {
		return Config{}, &ConfigurationError{
			Backend: c.name,
			Field:   "api_key",
			Err:     fmt.Errorf("%w (set %s)", ErrMissingCredential, c.keyEnv),
		}
	}
	return c, nil
}

func newConfig(variant Variant, name, baseURL, apiKey, model string, opts []Option) Config {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = string(variant)
	}

	c := Config{
		variant: variant,
		name:    name,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		model:   strings.TrimSpace(model),
		keyEnv:  envName(name, "API_KEY"),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c Config) validate() error {
	if c.baseURL == "" {
		return &ConfigurationError{Backend: c.name, Field: "base_url", Err: ErrEmptyBaseURL}
	}
	u, err := url.Parse(c.baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ConfigurationError{Backend: c.name, Field: "base_url", Err: fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.baseURL)}
	}
	if c.model == "" {
		return &ConfigurationError{Backend: c.name, Field: "model", Err: ErrEmptyModel}
	}
	return nil
}

func inferAuth(apiKey string) AuthPolicy {
	if apiKey == "" || isPlaceholderKey(apiKey) {
		return AuthNone
	}
	return AuthBearer
}

// Variant returns the backend family tag.
func (c Config) Variant() Variant {
	return c.variant
}

// Name returns the short backend name ("deepseek", "ollama", "custom", ...).
func (c Config) Name() string {
	return c.name
}

func (c Config) BaseURL() string {
	return c.baseURL
}

func (c Config) APIKey() string {
	return c.apiKey
}

func (c Config) Model() string {
	return c.model
}

// Auth returns the policy recorded at construction time.
func (c Config) Auth() AuthPolicy {
	return c.auth
}

// CredentialEnv returns the environment variable expected to hold the credential.
func (c Config) CredentialEnv() string {
	return c.keyEnv
}

// RequiresAuth reports whether a request must be refused when no credential
// is available. Only hosted configs, and custom ones given a real key, do.
func (c Config) RequiresAuth() bool {
	return c.variant == VariantHosted || (c.variant == VariantCustom && c.auth == AuthBearer)
}

// IsLocal reports whether the config points at a server on this machine.
func (c Config) IsLocal() bool {
	if c.variant == VariantLocal {
		return true
	}
	u, err := url.Parse(c.baseURL)
	return err == nil && isLoopback(u)
}

// Provider returns a fresh wire provider for this config. A nil httpClient
// selects a default client. No network I/O is performed.
func (c Config) Provider(httpClient *http.Client) *openai.OpenAIProvider {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	credential := ""
	if c.auth == AuthBearer {
		credential = c.apiKey
	}

	p := openai.New().WithRequireAPIKey(c.RequiresAuth())
	p.WithAPIKey(credential)
	p.WithBaseURL(c.baseURL)
	p.WithHttpClient(httpClient)
	return p
}

// NewClient returns a Client bound to this config: every request it sends uses
// the config's base URL, credential and model.
func (c Config) NewClient(opts ...client.Option) (*client.Client, error) {
	return client.New(c.Provider(nil), c.model, opts...)
}

// String never includes the credential.
func (c Config) String() string {
	return fmt.Sprintf("%s(%s) %s model=%s auth=%s", c.name, c.variant, c.baseURL, c.model, c.auth)
}
