// Package openai implements chat.Model for OpenAI-compatible chat completion
// endpoints (OpenAI, OpenRouter, Groq, Cerebras, DashScope compatible mode, local servers).
package openai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/Desarso/agentstudio/chat"
)

const (
	DefaultBaseURL   = "https://api.openai.com/v1"
	DefaultModel     = "gpt-4o-mini"
	DefaultAPIKeyEnv = "OPENAI_API_KEY"

	// DashScopeBaseURL is the OpenAI-compatible endpoint of DashScope.
	DashScopeBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"
)

// ChatModel implements chat.Model against /chat/completions.
type ChatModel struct {
	BaseURL    string       // Optional: API base URL (defaults to OpenAI)
	APIKey     string       // Optional: explicit key, wins over APIKeyEnv
	APIKeyEnv  string       // Optional: env var holding the key (defaults to OPENAI_API_KEY)
	Options    Options      // Default options
	HTTPClient *http.Client // Optional: defaults to a client with a 5 minute timeout
}

var _ chat.Model = (*ChatModel)(nil)

// DefaultOptions returns the portable part of the configured options.
func (o *ChatModel) DefaultOptions() chat.Options {
	opts := o.Options.Options.Clone()
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	return opts
}

// ModelOptions returns a copy of the full OpenAI-compatible options.
func (o *ChatModel) ModelOptions() Options {
	opts := o.Options
	opts.Options = o.DefaultOptions()
	return opts
}

// Call implements chat.Model
func (o *ChatModel) Call(ctx context.Context, prompt chat.Prompt) (*chat.Response, error) {
	if len(prompt.Messages) == 0 {
		return nil, fmt.Errorf("prompt has no messages")
	}

	resp, err := o.makeRequest(ctx, o.createRequest(prompt))
	if err != nil {
		return nil, err
	}
	return toChatResponse(resp)
}

func (o *ChatModel) createRequest(prompt chat.Prompt) ChatCompletionRequest {
	opts := o.DefaultOptions().Merge(&prompt.Options)

	req := ChatCompletionRequest{
		Model:            opts.Model,
		Messages:         make([]Message, len(prompt.Messages)),
		MaxTokens:        opts.MaxTokens,
		Temperature:      opts.Temperature,
		TopP:             opts.TopP,
		TopK:             opts.TopK,
		Stop:             opts.Stop,
		PresencePenalty:  o.Options.PresencePenalty,
		FrequencyPenalty: o.Options.FrequencyPenalty,
		Seed:             o.Options.Seed,
		User:             o.Options.User,
		EnableSearch:     o.Options.EnableSearch,
	}
	for i, msg := range prompt.Messages {
		req.Messages[i] = Message{Role: string(msg.Role), Content: msg.Content}
	}
	return req
}

func (o *ChatModel) makeRequest(ctx context.Context, body ChatCompletionRequest) (*ChatCompletionResponse, error) {
	jsonBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint(), bytes.NewReader(jsonBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	o.setHeaders(req)

	resp, err := o.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			return nil, fmt.Errorf("chat completion error: status %d: %s (type: %s)", resp.StatusCode, errResp.Error.Message, errResp.Error.Type)
		}
		return nil, fmt.Errorf("chat completion error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var completion ChatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &completion, nil
}

func toChatResponse(resp *ChatCompletionResponse) (*chat.Response, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	choice := resp.Choices[0]
	out := &chat.Response{
		Content: choice.Message.Content,
		Model:   resp.Model,
	}
	if choice.FinishReason != nil {
		out.FinishReason = *choice.FinishReason
	}
	if resp.Usage != nil {
		out.Usage = &chat.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	return out, nil
}

func (o *ChatModel) endpoint() string {
	baseURL := o.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return strings.TrimRight(baseURL, "/") + "/chat/completions"
}

func (o *ChatModel) apiKey() string {
	if o.APIKey != "" {
		return o.APIKey
	}
	env := o.APIKeyEnv
	if env == "" {
		env = DefaultAPIKeyEnv
	}
	return os.Getenv(env)
}

func (o *ChatModel) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if key := o.apiKey(); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
}

func (o *ChatModel) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	// LLM requests can be slow
	return &http.Client{Timeout: 5 * time.Minute}
}
