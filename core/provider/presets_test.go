package provider

import (
	"errors"
	"strings"
	"testing"
)

func TestPreset_DeepSeekDefaults(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "sk-deep")
	t.Setenv("DEEPSEEK_MODEL", "")
	t.Setenv("DEEPSEEK_BASE_URL", "")

	cfg, err := DeepSeek()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Variant() != VariantHosted || cfg.Auth() != AuthBearer {
		t.Errorf("expected hosted bearer config, got %s", cfg)
	}
	if cfg.Model() != "deepseek-chat" {
		t.Errorf("expected default model deepseek-chat, got %q", cfg.Model())
	}
	if cfg.BaseURL() != "https://api.deepseek.com/v1" {
		t.Errorf("unexpected base URL %q", cfg.BaseURL())
	}
}

func TestPreset_ModelOverride(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "sk-deep")
	t.Setenv("DEEPSEEK_MODEL", "deepseek-reasoner")

	cfg, err := Preset("DeepSeek")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Model() != "deepseek-reasoner" {
		t.Errorf("expected override, got %q", cfg.Model())
	}
}

// TestPreset_HostedWithoutKeyFails verifies the missing credential is caught
// before any client exists.
func TestPreset_HostedWithoutKeyFails(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := OpenAI()
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestPreset_OllamaWithoutKey(t *testing.T) {
	t.Setenv("OLLAMA_API_KEY", "")
	t.Setenv("OLLAMA_MODEL", "llama3.2")
	t.Setenv("OLLAMA_BASE_URL", "")

	cfg, err := Ollama()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Variant() != VariantLocal || cfg.Auth() != AuthNone || cfg.RequiresAuth() {
		t.Errorf("expected open local config, got %s", cfg)
	}
	if cfg.Model() != "llama3.2" {
		t.Errorf("expected llama3.2, got %q", cfg.Model())
	}
}

func TestPreset_OpenRouter(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "or-key")

	cfg, err := OpenRouter()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Name() != "openrouter" {
		t.Errorf("expected openrouter, got %q", cfg.Name())
	}
}

func TestPreset_Unknown(t *testing.T) {
	_, err := Preset("acme")
	if !errors.Is(err, ErrUnknownPreset) {
		t.Fatalf("expected ErrUnknownPreset, got %v", err)
	}
	if !strings.Contains(err.Error(), "deepseek") {
		t.Errorf("expected known presets listed, got %v", err)
	}
}

func TestEnvName(t *testing.T) {
	tests := map[string]string{
		"deepseek":  "DEEPSEEK_API_KEY",
		"lm-studio": "LM_STUDIO_API_KEY",
		"Acme2":     "ACME2_API_KEY",
	}
	for name, want := range tests {
		if got := envName(name, "API_KEY"); got != want {
			t.Errorf("envName(%q): expected %q, got %q", name, want, got)
		}
	}
}

func TestPresetWith_OverridesBeatEnvironment(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "env-key")
	t.Setenv("DEEPSEEK_MODEL", "env-model")

	cfg, err := PresetWith("deepseek", Overrides{APIKey: "flag-key", Model: "flag-model"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIKey() != "flag-key" || cfg.Model() != "flag-model" {
		t.Errorf("expected overrides applied, got key=%q model=%q", cfg.APIKey(), cfg.Model())
	}
	if len(cfg.Hint()) != 2 {
		t.Errorf("expected key URL kept in hints, got %v", cfg.Hint())
	}
}

func TestPresetWith_EmptyOverridesKeepEnvironment(t *testing.T) {
	t.Setenv("OLLAMA_BASE_URL", "http://127.0.0.1:11434/v1")

	cfg, err := PresetWith("ollama", Overrides{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL() != "http://127.0.0.1:11434/v1" {
		t.Errorf("expected env base URL, got %q", cfg.BaseURL())
	}
}
