package agentstudio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Desarso/agentstudio/chat"
	"github.com/Desarso/agentstudio/models/gemini"
	"github.com/Desarso/agentstudio/models/openai"
	"github.com/Desarso/agentstudio/stores"
)

func TestNewChatClient_Providers(t *testing.T) {
	client, err := NewChatClient(ClientConfig{Name: "q", Provider: "DashScope", Model: "qwen-plus"}, nil)
	require.NoError(t, err)
	snap, err := client.Snapshot()
	require.NoError(t, err)
	model, ok := snap.ChatModel.(*openai.ChatModel)
	require.True(t, ok)
	assert.Equal(t, openai.DashScopeBaseURL, model.BaseURL)
	assert.Equal(t, "DASHSCOPE_API_KEY", model.APIKeyEnv)
	assert.Equal(t, "qwen-plus", model.DefaultOptions().Model)

	client, err = NewChatClient(ClientConfig{Name: "g", Provider: "gemini", Model: "gemini-2.5-pro"}, nil)
	require.NoError(t, err)
	snap, err = client.Snapshot()
	require.NoError(t, err)
	_, ok = snap.ChatModel.(*gemini.ChatModel)
	assert.True(t, ok)
	assert.Equal(t, "gemini-2.5-pro", snap.ChatModel.DefaultOptions().Model)

	_, err = NewChatClient(ClientConfig{Name: "x", Provider: "nope"}, nil)
	assert.Error(t, err)
}

func TestNewChatClient_Memory(t *testing.T) {
	store, err := stores.NewSQLiteStoreSimple(":memory:")
	require.NoError(t, err)
	defer store.Close()

	client, err := NewChatClient(ClientConfig{Name: "m", Provider: "openai", Memory: MemoryConfig{Enabled: true}}, store)
	require.NoError(t, err)
	snap, err := client.Snapshot()
	require.NoError(t, err)
	require.Len(t, snap.Advisors, 1)
	advisor, ok := snap.Advisors[0].(chat.MemoryAdvisor)
	require.True(t, ok)
	_, ok = advisor.Memory().(*chat.StoreMemory)
	assert.True(t, ok)

	client, err = NewChatClient(ClientConfig{Name: "m", Provider: "openai", Memory: MemoryConfig{Enabled: true}}, nil)
	require.NoError(t, err)
	snap, _ = client.Snapshot()
	advisor = snap.Advisors[0].(chat.MemoryAdvisor)
	_, ok = advisor.Memory().(*chat.InMemoryMemory)
	assert.True(t, ok)
}

func TestBuildRegistry_RunsAgainstUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"model":"local","choices":[{"message":{"role":"assistant","content":"pong"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	cfg := DefaultConfig().WithoutStore().WithClient(ClientConfig{
		Name:         "local",
		Provider:     "openai",
		Model:        "local",
		BaseURL:      server.URL,
		SystemPrompt: "You are {role}",
		SystemParams: map[string]any{"role": "terse"},
	})

	registry, err := BuildRegistry(cfg, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"local"}, registry.Names())

	client, err := registry.Get("local")
	require.NoError(t, err)
	resp, err := client.Prompt().User("ping").Call(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.Content)
}
