// Package gemini implements chat.Model on the Google Gen AI SDK.
package gemini

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/Desarso/agentstudio/chat"
)

const (
	DefaultModel     = "gemini-2.0-flash"
	DefaultAPIKeyEnv = "GEMINI_API_KEY"
)

type ChatModel struct {
	APIKeyEnv string // Optional: env var holding the key (defaults to GEMINI_API_KEY)
	BaseURL   string // Optional: overrides the Gemini API endpoint
	Options   chat.Options

	mu     sync.Mutex
	client *genai.Client
}

var _ chat.Model = (*ChatModel)(nil)

func (g *ChatModel) DefaultOptions() chat.Options {
	opts := g.Options.Clone()
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	return opts
}

// Call implements chat.Model
func (g *ChatModel) Call(ctx context.Context, prompt chat.Prompt) (*chat.Response, error) {
	opts := g.DefaultOptions().Merge(&prompt.Options)
	contents, config := buildRequest(prompt, opts)
	if len(contents) == 0 {
		return nil, fmt.Errorf("prompt has no user or assistant messages")
	}

	client, err := g.getClient(ctx)
	if err != nil {
		return nil, err
	}

	result, err := client.Models.GenerateContent(ctx, opts.Model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}
	return toChatResponse(opts.Model, result)
}

func (g *ChatModel) getClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}

	env := g.APIKeyEnv
	if env == "" {
		env = DefaultAPIKeyEnv
	}
	cfg := &genai.ClientConfig{
		APIKey:  os.Getenv(env),
		Backend: genai.BackendGeminiAPI,
	}
	if g.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	g.client = client
	return client, nil
}

// buildRequest splits system messages into the system instruction; the rest
// become contents with Gemini's "user"/"model" roles.
func buildRequest(prompt chat.Prompt, opts chat.Options) ([]*genai.Content, *genai.GenerateContentConfig) {
	config := &genai.GenerateContentConfig{}
	var system []string
	var contents []*genai.Content

	for _, msg := range prompt.Messages {
		switch msg.Role {
		case chat.RoleSystem:
			system = append(system, msg.Content)
		case chat.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}
	if opts.Temperature != nil {
		config.Temperature = genai.Ptr(float32(*opts.Temperature))
	}
	if opts.TopP != nil {
		config.TopP = genai.Ptr(float32(*opts.TopP))
	}
	if opts.TopK != nil {
		config.TopK = genai.Ptr(float32(*opts.TopK))
	}
	if opts.MaxTokens != nil {
		config.MaxOutputTokens = int32(*opts.MaxTokens)
	}
	if len(opts.Stop) > 0 {
		config.StopSequences = append([]string(nil), opts.Stop...)
	}
	return contents, config
}

func toChatResponse(model string, result *genai.GenerateContentResponse) (*chat.Response, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	out := &chat.Response{
		Content:      result.Text(),
		Model:        model,
		FinishReason: string(result.Candidates[0].FinishReason),
	}
	if result.ModelVersion != "" {
		out.Model = result.ModelVersion
	}
	if u := result.UsageMetadata; u != nil {
		out.Usage = &chat.Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return out, nil
}
