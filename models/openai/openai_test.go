package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Desarso/agentstudio/chat"
)

func TestChatModel_Call(t *testing.T) {
	var got ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"qwen-plus","choices":[{"index":0,"message":{"role":"assistant","content":"hello there"},"finish_reason":"stop"}],"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`))
	}))
	defer server.Close()

	search := true
	temp := 0.3
	model := &ChatModel{
		BaseURL: server.URL + "/v1/",
		APIKey:  "secret",
		Options: Options{
			Options:      chat.Options{Model: "qwen-plus", Temperature: &temp},
			EnableSearch: &search,
		},
	}

	resp, err := model.Call(context.Background(), chat.Prompt{
		Messages: []chat.Message{chat.SystemMessage("sys"), chat.UserMessage("hi")},
		Options:  chat.Options{MaxTokens: intPtr(64)},
	})
	require.NoError(t, err)

	assert.Equal(t, "hello there", resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 5, resp.Usage.TotalTokens)

	assert.Equal(t, "qwen-plus", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, 0.3, *got.Temperature)
	assert.Equal(t, 64, *got.MaxTokens)
	assert.True(t, *got.EnableSearch)
}

func TestChatModel_ErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	model := &ChatModel{BaseURL: server.URL}
	_, err := model.Call(context.Background(), chat.Prompt{Messages: []chat.Message{chat.UserMessage("hi")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")
	assert.Contains(t, err.Error(), "401")
}

func TestChatModel_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	model := &ChatModel{BaseURL: server.URL}
	_, err := model.Call(context.Background(), chat.Prompt{Messages: []chat.Message{chat.UserMessage("hi")}})
	assert.ErrorContains(t, err, "no choices")
}

func TestChatModel_DefaultOptions(t *testing.T) {
	model := &ChatModel{}
	assert.Equal(t, DefaultModel, model.DefaultOptions().Model)

	seed := 7
	model.Options.Seed = &seed
	opts := model.ModelOptions()
	assert.Equal(t, DefaultModel, opts.Model)
	assert.Equal(t, 7, *opts.Seed)
}

func intPtr(v int) *int { return &v }
