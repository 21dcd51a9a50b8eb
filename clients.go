package agentstudio

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Desarso/agentstudio/chat"
	applog "github.com/Desarso/agentstudio/logger"
	"github.com/Desarso/agentstudio/models/gemini"
	"github.com/Desarso/agentstudio/models/openai"
	"github.com/Desarso/agentstudio/stores"
	"github.com/Desarso/agentstudio/studio"
)

// provider describes how to reach one backend family.
type provider struct {
	baseURL   string
	apiKeyEnv string
	gemini    bool
}

var providers = map[string]provider{
	"openai":     {baseURL: openai.DefaultBaseURL, apiKeyEnv: "OPENAI_API_KEY"},
	"dashscope":  {baseURL: openai.DashScopeBaseURL, apiKeyEnv: "DASHSCOPE_API_KEY"},
	"openrouter": {baseURL: "https://openrouter.ai/api/v1", apiKeyEnv: "OPENROUTER_API_KEY"},
	"groq":       {baseURL: "https://api.groq.com/openai/v1", apiKeyEnv: "GROQ_API_KEY"},
	"cerebras":   {baseURL: "https://api.cerebras.ai/v1", apiKeyEnv: "CEREBRAS_API_KEY"},
	"gemini":     {apiKeyEnv: gemini.DefaultAPIKeyEnv, gemini: true},
}

// BuildRegistry creates every configured client and registers it by name.
// When store is nil, memory-enabled clients keep their history in process.
func BuildRegistry(cfg *Config, store stores.MessageStore, logger *zap.Logger) (*studio.Registry, error) {
	logger = applog.OrNop(logger)
	registry := studio.NewRegistry()
	for _, cc := range cfg.Clients {
		client, err := NewChatClient(cc, store)
		if err != nil {
			return nil, fmt.Errorf("client %s: %w", cc.Name, err)
		}
		if err := registry.Register(cc.Name, client); err != nil {
			return nil, err
		}
		logger.Info("chat client registered",
			zap.String("name", cc.Name),
			zap.String("provider", cc.Provider),
			zap.String("model", cc.Model),
			zap.Bool("memory", cc.Memory.Enabled))
	}
	return registry, nil
}

// NewChatClient builds one client from its declaration.
func NewChatClient(cc ClientConfig, store stores.MessageStore) (*chat.DefaultClient, error) {
	model, err := newModel(cc)
	if err != nil {
		return nil, err
	}

	opts := []chat.ClientOption{chat.WithDefaultOptions(cc.portableOptions())}
	if cc.SystemPrompt != "" {
		opts = append(opts, chat.WithDefaultSystem(cc.SystemPrompt))
	}
	if len(cc.SystemParams) > 0 {
		opts = append(opts, chat.WithDefaultSystemParams(cc.SystemParams))
	}
	if cc.Memory.Enabled {
		var memory chat.Memory = chat.NewInMemoryMemory()
		if store != nil {
			memory = chat.NewStoreMemory(store)
		}
		opts = append(opts, chat.WithDefaultAdvisors(chat.NewMessageMemoryAdvisor(memory, cc.Memory.Window)))
	}
	return chat.NewClient(model, opts...), nil
}

func newModel(cc ClientConfig) (chat.Model, error) {
	p, ok := providers[strings.ToLower(cc.Provider)]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", cc.Provider)
	}

	apiKeyEnv := cc.APIKeyEnv
	if apiKeyEnv == "" {
		apiKeyEnv = p.apiKeyEnv
	}
	baseURL := cc.BaseURL
	if baseURL == "" {
		baseURL = p.baseURL
	}

	if p.gemini {
		return &gemini.ChatModel{
			APIKeyEnv: apiKeyEnv,
			BaseURL:   cc.BaseURL,
			Options:   chat.Options{Model: cc.Model},
		}, nil
	}

	options := cc.Options
	options.Options = chat.Options{Model: cc.Model}
	return &openai.ChatModel{
		BaseURL:   baseURL,
		APIKeyEnv: apiKeyEnv,
		Options:   options,
	}, nil
}
