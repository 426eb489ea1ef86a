package openai

import (
	"strings"

	"github.com/leofalp/recall/providers/ai"
)

/*
	CHAT COMPLETIONS API - INPUT
*/

// chatCompletionRequest represents the /v1/chat/completions request format
type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

/*
	CHAT COMPLETIONS API - OUTPUT
*/

type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage,omitempty"`
}

type chatChoice struct {
	Index        int                 `json:"index"`
	Message      chatResponseMessage `json:"message"`
	FinishReason string              `json:"finish_reason"`
}

type chatResponseMessage struct {
	Role      string `json:"role"` // "assistant"
	Content   string `json:"content,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
	// DeepSeek reasoner models return the chain of thought here instead.
	ReasoningContent string `json:"reasoning_content,omitempty"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

/*
	CONVERSION FUNCTIONS
*/

// requestToChatCompletion converts ai.ChatRequest to chat completions format
func requestToChatCompletion(request ai.ChatRequest) chatCompletionRequest {
	messages := make([]chatMessage, 0, len(request.Messages))
	for _, msg := range request.Messages {
		messages = append(messages, chatMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	return chatCompletionRequest{
		Model:    request.Model,
		Messages: messages,
	}
}

// chatCompletionToGeneric maps the first choice onto ai.ChatResponse. Callers
// must have checked that at least one choice is present.
func chatCompletionToGeneric(resp chatCompletionResponse) *ai.ChatResponse {
	choice := resp.Choices[0]

	content := strings.TrimSpace(choice.Message.Content)
	reasoning := strings.TrimSpace(choice.Message.Reasoning)
	if reasoning == "" {
		reasoning = strings.TrimSpace(choice.Message.ReasoningContent)
	}

	// reasoning could be into <think> tags in content
	if inContent := extractReasoningFromThinkTags(content); inContent != "" {
		if reasoning != "" {
			reasoning += "\n"
		}
		reasoning += inContent
		content = cleanThinkTags(content)
	}

	chatResp := &ai.ChatResponse{
		Id:           resp.ID,
		Model:        resp.Model,
		Content:      content,
		Reasoning:    reasoning,
		FinishReason: choice.FinishReason,
	}

	if resp.Usage != nil {
		chatResp.Usage = &ai.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	return chatResp
}

const (
	thinkStartTag = "<think>"
	thinkEndTag   = "</think>"
)

// extractReasoningFromThinkTags extracts reasoning content from <think>...</think> tags.
// Some models (like DeepSeek) use these tags to show chain-of-thought reasoning.
// Returns the extracted reasoning text, or empty string if no tags found.
func extractReasoningFromThinkTags(content string) string {
	start := strings.Index(content, thinkStartTag)
	if start == -1 {
		start = 0 // if there's no start tag, consider from beginning
	} else {
		start += len(thinkStartTag)
	}

	end := strings.Index(content, thinkEndTag)
	if end == -1 || end <= start {
		return "" // mandatory end tag
	}

	return strings.TrimSpace(content[start:end])
}

// cleanThinkTags removes <think>...</think> tags and their content from the text.
// This leaves only the final answer/response without the reasoning part.
func cleanThinkTags(content string) string {
	start := strings.Index(content, thinkStartTag)
	if start == -1 {
		start = 0
	}

	end := strings.Index(content, thinkEndTag)
	if end == -1 || end <= start {
		return content // mandatory end tag
	}

	return strings.TrimSpace(content[:start] + content[end+len(thinkEndTag):])
}
