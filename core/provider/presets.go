package provider

import (
	"fmt"
	"os"
	"strings"
)

// Preset builds the config for a well-known backend ("deepseek", "openai",
// "openrouter", "ollama") from the environment:
//
//	<BACKEND>_API_KEY   credential (required for hosted backends)
//	<BACKEND>_MODEL     model override
//	<BACKEND>_BASE_URL  endpoint override
func Preset(name string) (Config, error) {
	return PresetWith(name, Overrides{})
}

// Overrides replaces preset values. Empty fields keep the environment value
// or the preset default.
type Overrides struct {
	BaseURL string
	APIKey  string
	Model   string
}

// PresetWith is Preset with explicit values taking precedence over the
// environment.
func PresetWith(name string, o Overrides) (Config, error) {
	b, ok := lookupBackendByName(name)
	if !ok {
		return Config{}, &ConfigurationError{Backend: name, Field: "backend", Err: fmt.Errorf("%w: %q (known: %s)", ErrUnknownPreset, name, strings.Join(PresetNames(), ", "))}
	}

	apiKey := firstNonEmpty(o.APIKey, os.Getenv(envName(b.name, "API_KEY")))
	model := firstNonEmpty(o.Model, envOrDefault(envName(b.name, "MODEL"), b.defaultModel))
	baseURL := firstNonEmpty(o.BaseURL, envOrDefault(envName(b.name, "BASE_URL"), b.baseURL))

	if b.variant == VariantLocal {
		return NewLocal(b.name, baseURL, apiKey, model)
	}
	return NewHosted(b.name, baseURL, apiKey, model, WithCredentialURL(b.keyURL))
}

// PresetNames lists the names accepted by Preset.
func PresetNames() []string {
	names := make([]string, 0, len(knownBackends))
	for _, b := range knownBackends {
		names = append(names, b.name)
	}
	return names
}

// DeepSeek returns the hosted DeepSeek preset (DEEPSEEK_API_KEY, DEEPSEEK_MODEL).
func DeepSeek() (Config, error) {
	return Preset("deepseek")
}

// OpenAI returns the hosted OpenAI preset (OPENAI_API_KEY, OPENAI_MODEL).
func OpenAI() (Config, error) {
	return Preset("openai")
}

// OpenRouter returns the hosted OpenRouter preset (OPENROUTER_API_KEY, OPENROUTER_MODEL).
func OpenRouter() (Config, error) {
	return Preset("openrouter")
}

// Ollama returns the local Ollama preset (OLLAMA_MODEL, OLLAMA_BASE_URL).
func Ollama() (Config, error) {
	return Preset("ollama")
}

// envName maps a backend name to its environment variable, e.g.
// ("deepseek", "API_KEY") -> "DEEPSEEK_API_KEY".
func envName(name, suffix string) string {
	upper := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
	return upper + "_" + suffix
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
