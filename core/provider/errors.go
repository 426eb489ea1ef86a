package provider

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyBaseURL      = errors.New("base URL is empty")
	ErrInvalidBaseURL    = errors.New("base URL must be an absolute http(s) URL")
	ErrEmptyModel        = errors.New("model is empty")
	ErrMissingCredential = errors.New("credential is required for this backend")
	ErrUnknownPreset     = errors.New("unknown backend preset")
)

// ConfigurationError reports a missing or malformed provider field. It is
// always returned at construction time, never on the first request.
type ConfigurationError struct {
	Backend string
	Field   string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Backend == "" {
		return fmt.Sprintf("provider config: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("provider config %s: %s: %v", e.Backend, e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
