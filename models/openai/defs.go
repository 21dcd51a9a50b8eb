package openai

import "github.com/Desarso/agentstudio/chat"

// Options are the OpenAI-compatible model options. The embedded portable
// options are what every backend understands; the rest are specific to
// OpenAI-compatible endpoints.
type Options struct {
	chat.Options `yaml:",inline"`

	PresencePenalty  *float64 `json:"presence_penalty,omitempty" yaml:"presence_penalty,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty" yaml:"frequency_penalty,omitempty"`
	Seed             *int     `json:"seed,omitempty" yaml:"seed,omitempty"`
	User             string   `json:"user,omitempty" yaml:"user,omitempty"`
	// EnableSearch is honored by DashScope's compatible mode.
	EnableSearch *bool `json:"enable_search,omitempty" yaml:"enable_search,omitempty"`
}

// Request types

type ChatCompletionRequest struct {
	Model            string    `json:"model"`
	Messages         []Message `json:"messages"`
	Stream           bool      `json:"stream,omitempty"`
	MaxTokens        *int      `json:"max_tokens,omitempty"`
	Temperature      *float64  `json:"temperature,omitempty"`
	TopP             *float64  `json:"top_p,omitempty"`
	TopK             *int      `json:"top_k,omitempty"`
	Stop             []string  `json:"stop,omitempty"`
	PresencePenalty  *float64  `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64  `json:"frequency_penalty,omitempty"`
	Seed             *int      `json:"seed,omitempty"`
	User             string    `json:"user,omitempty"`
	EnableSearch     *bool     `json:"enable_search,omitempty"`
}

type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
	// Reasoning models return their chain of thought separately
	ReasoningContent *string `json:"reasoning_content,omitempty"`
}

// Response types

type ChatCompletionResponse struct {
	ID                string   `json:"id"`
	Object            string   `json:"object"` // "chat.completion"
	Created           int64    `json:"created"`
	Model             string   `json:"model"`
	Choices           []Choice `json:"choices"`
	Usage             *Usage   `json:"usage,omitempty"`
	SystemFingerprint string   `json:"system_fingerprint,omitempty"`
}

type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason *string `json:"finish_reason,omitempty"` // "stop", "length", etc.
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Error response
type ErrorResponse struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Message string      `json:"message"`
	Type    string      `json:"type"`
	Param   interface{} `json:"param,omitempty"`
	Code    interface{} `json:"code,omitempty"`
}
