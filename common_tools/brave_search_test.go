package common_tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBraveSearch_DisabledByDefault(t *testing.T) {
	reg := NewToolRegistry(nil)
	_, err := reg.Configure(Environment{}, Dependencies{})
	require.NoError(t, err)
	_, ok := reg.Get(BraveSearchToolName)
	assert.False(t, ok)
}

func TestBraveSearch_RequiresKey(t *testing.T) {
	t.Setenv(BraveAPIKeyEnv, "")
	reg := NewToolRegistry(nil)
	_, err := reg.apply([]ToolConfiguration{BraveSearchConfiguration()}, Environment{"toolcalling.bravesearch.enabled": "true"}, Dependencies{})
	assert.ErrorContains(t, err, BraveAPIKeyEnv)
}

func TestBraveSearch_Callable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/res/v1/web/search", r.URL.Path)
		assert.Equal(t, "golang", r.URL.Query().Get("q"))
		assert.Equal(t, "secret", r.Header.Get("X-Subscription-Token"))
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"query":{"original":"golang"},"web":{"results":[{"title":"The <strong>Go</strong> Programming Language","url":"https://www.go.dev/","description":"Build simple, secure systems."}]}}`))
	}))
	defer server.Close()

	env := Environment{
		"toolcalling.bravesearch.enabled":  "true",
		"toolcalling.bravesearch.base-url": server.URL + "/res/v1",
		"toolcalling.bravesearch.api-key":  "secret",
	}
	reg := NewToolRegistry(nil)
	_, err := reg.apply([]ToolConfiguration{BraveSearchConfiguration()}, env, Dependencies{})
	require.NoError(t, err)

	decl, ok := reg.Get(BraveSearchToolName)
	require.True(t, ok)
	out, err := decl.Callable(context.Background(), map[string]any{"query": "golang"})
	require.NoError(t, err)

	assert.Contains(t, out, "Search Query: golang")
	assert.Contains(t, out, "1. Title: The Go Programming Language")
	assert.Contains(t, out, "Source: go.dev")
	assert.Contains(t, out, "No news results found.")
}
