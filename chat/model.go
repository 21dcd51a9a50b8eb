package chat

import "context"

// Prompt is what a Model receives: the ordered messages and the effective options.
type Prompt struct {
	Messages []Message
	Options  Options
}

// Usage reports token accounting when the backend provides it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a model answer.
type Response struct {
	Content      string
	Model        string
	FinishReason string
	Usage        *Usage
}

// Model is a chat model backend.
type Model interface {
	// Call performs one non-streaming completion.
	Call(ctx context.Context, prompt Prompt) (*Response, error)

	// DefaultOptions returns the options the model was configured with.
	DefaultOptions() Options
}
