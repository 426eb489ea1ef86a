// Package openai implements the recall [ai.Provider] interface for backends
// that speak the OpenAI chat-completions wire protocol. One implementation
// serves hosted authenticated APIs (OpenAI, DeepSeek, OpenRouter) and local
// no-auth servers (Ollama, vLLM, LM Studio): the only differences are the base
// URL and whether a bearer credential is required.
//
// The main entry point is [New], which reads OPENAI_API_KEY and
// OPENAI_API_BASE_URL from the environment. Use [OpenAIProvider.WithAPIKey],
// [OpenAIProvider.WithBaseURL] and [OpenAIProvider.WithRequireAPIKey] to
// override these programmatically; the core/provider package does this for
// every configured backend variant.
package openai
