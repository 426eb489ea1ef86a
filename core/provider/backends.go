package provider

import (
	"net/url"
	"strings"
)

// backend describes a well-known OpenAI-compatible service.
type backend struct {
	name         string
	variant      Variant
	hostMarkers  []string
	baseURL      string
	defaultModel string
	keyURL       string
}

var knownBackends = []backend{
	{
		name:         "deepseek",
		variant:      VariantHosted,
		hostMarkers:  []string{"api.deepseek.com"},
		baseURL:      "https://api.deepseek.com/v1",
		defaultModel: "deepseek-chat",
		keyURL:       "https://platform.deepseek.com/api_keys",
	},
	{
		name:         "openai",
		variant:      VariantHosted,
		hostMarkers:  []string{"api.openai.com"},
		baseURL:      "https://api.openai.com/v1",
		defaultModel: "gpt-4o-mini",
		keyURL:       "https://platform.openai.com/api-keys",
	},
	{
		name:         "openrouter",
		variant:      VariantHosted,
		hostMarkers:  []string{"openrouter.ai"},
		baseURL:      "https://openrouter.ai/api/v1",
		defaultModel: "openai/gpt-4o-mini",
		keyURL:       "https://openrouter.ai/keys",
	},
	{
		name:         "ollama",
		variant:      VariantLocal,
		hostMarkers:  []string{"localhost:11434", "127.0.0.1:11434"},
		baseURL:      "http://localhost:11434/v1",
		defaultModel: "gpt-oss:120b-cloud",
	},
}

// noAuthPlaceholders are api keys that local servers accept but ignore.
var noAuthPlaceholders = map[string]bool{
	"ollama":     true,
	"none":       true,
	"not-needed": true,
	"no-key":     true,
	"lm-studio":  true,
}

func isPlaceholderKey(apiKey string) bool {
	return noAuthPlaceholders[strings.ToLower(strings.TrimSpace(apiKey))]
}

// lookupBackend returns the backend whose host marker matches the host of
// baseURL. Markers with a port must match host:port exactly.
func lookupBackend(baseURL string) (backend, bool) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Host == "" {
		return backend{}, false
	}
	host := strings.ToLower(u.Host)
	hostname := strings.ToLower(u.Hostname())
	for _, b := range knownBackends {
		for _, marker := range b.hostMarkers {
			if host == marker || hostname == marker {
				return b, true
			}
		}
	}
	return backend{}, false
}

func lookupBackendByName(name string) (backend, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, b := range knownBackends {
		if b.name == name {
			return b, true
		}
	}
	return backend{}, false
}

// isLoopback reports whether the URL points at this machine.
func isLoopback(u *url.URL) bool {
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1", "0.0.0.0":
		return true
	}
	return false
}
