package provider

import "fmt"

// Hint returns the remediation lines shown after a failed chat call, tailored
// to the backend family: which credential to set for authenticated APIs, how
// to start the server and pull the model for local ones.
func (c Config) Hint() []string {
	if c.IsLocal() {
		if c.name == "ollama" {
			return []string{
				"Make sure Ollama is running: 'ollama serve'",
				fmt.Sprintf("And that you have pulled the model: 'ollama pull %s'", c.model),
			}
		}
		return []string{
			fmt.Sprintf("Make sure the local server at %s is running", c.baseURL),
			fmt.Sprintf("And that it serves the model %q", c.model),
		}
	}

	if c.variant == VariantHosted || c.auth == AuthBearer {
		hint := []string{fmt.Sprintf("Make sure you have set %s environment variable", c.keyEnv)}
		if c.keyURL != "" {
			hint = append(hint, "Get your API key from: "+c.keyURL)
		}
		return hint
	}

	return []string{
		fmt.Sprintf("Check that %s is reachable and speaks the OpenAI chat-completions protocol", c.baseURL),
		fmt.Sprintf("If it needs a credential, set %s", c.keyEnv),
	}
}
