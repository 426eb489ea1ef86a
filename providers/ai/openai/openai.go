package openai

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/leofalp/recall/internal/utils"
	"github.com/leofalp/recall/providers/ai"
)

const (
	defaultBaseURL          = "https://api.openai.com/v1"
	chatCompletionsEndpoint = "/chat/completions"
)

// ErrMissingAPIKey is wrapped in the auth TransportError returned when a
// provider that requires a credential is asked to send without one.
var ErrMissingAPIKey = errors.New("API key is not set")

// OpenAIProvider implements the Provider interface for any backend speaking
// the OpenAI chat-completions wire protocol (OpenAI, DeepSeek, OpenRouter,
// Ollama, vLLM, LM Studio, ...).
type OpenAIProvider struct {
	apiKey        string
	baseURL       string
	requireAPIKey bool
	client        *http.Client
}

// Ensure OpenAIProvider implements ai.Provider at compile time.
var _ ai.Provider = (*OpenAIProvider)(nil)

// New creates a provider from OPENAI_API_KEY and OPENAI_API_BASE_URL, falling
// back to the public OpenAI endpoint. A key is required by default; local
// backends opt out with WithRequireAPIKey(false).
func New() *OpenAIProvider {
	baseURL := os.Getenv("OPENAI_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &OpenAIProvider{
		apiKey:        os.Getenv("OPENAI_API_KEY"),
		baseURL:       strings.TrimRight(baseURL, "/"),
		requireAPIKey: true,
		client:        &http.Client{},
	}
}

// WithAPIKey sets the API key for the provider
func (p *OpenAIProvider) WithAPIKey(apiKey string) ai.Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for the API
func (p *OpenAIProvider) WithBaseURL(baseURL string) ai.Provider {
	p.baseURL = strings.TrimRight(baseURL, "/")
	return p
}

// WithHttpClient sets a custom HTTP client
func (p *OpenAIProvider) WithHttpClient(httpClient *http.Client) ai.Provider {
	p.client = httpClient
	return p
}

// WithRequireAPIKey controls whether SendMessage refuses to run without a key.
func (p *OpenAIProvider) WithRequireAPIKey(required bool) *OpenAIProvider {
	p.requireAPIKey = required
	return p
}

// BaseURL returns the endpoint prefix requests are sent to.
func (p *OpenAIProvider) BaseURL() string {
	return p.baseURL
}

// SendMessage implements the Provider interface
func (p *OpenAIProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if p.requireAPIKey && p.apiKey == "" {
		return nil, &ai.TransportError{Kind: ai.TransportAuth, Err: ErrMissingAPIKey}
	}

	_, resp, err := utils.DoPostSync[chatCompletionResponse](ctx, p.client, p.baseURL+chatCompletionsEndpoint, p.apiKey, requestToChatCompletion(request))
	if err != nil {
		return nil, err
	}

	if resp == nil || len(resp.Choices) == 0 {
		return nil, &ai.TransportError{Kind: ai.TransportMalformed, Err: errors.New("no choices in response")}
	}

	return chatCompletionToGeneric(*resp), nil
}
