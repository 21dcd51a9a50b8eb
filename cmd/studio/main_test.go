package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Desarso/agentstudio/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "studio.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClientsListAndRun(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Go is a language."}}]}`))
	}))
	defer upstream.Close()

	config := writeConfig(t, `
store:
  type: none
clients:
  - name: assistant
    provider: openai
    model: local-model
    base_url: `+upstream.URL+`
    system_prompt: You are terse.
`)

	out, err := execute(t, "--config", config, "clients", "list")
	require.NoError(t, err)
	var clients []models.ChatClient
	require.NoError(t, json.Unmarshal([]byte(out), &clients))
	require.Len(t, clients, 1)
	assert.Equal(t, "assistant", clients[0].Name)
	assert.Equal(t, "You are terse.", clients[0].DefaultSystemText)
	assert.Equal(t, "local-model", clients[0].ChatModel.Model)

	out, err = execute(t, "--config", config, "clients", "run", "--key", "assistant", "--input", "What is Go?", "--chat-id", "c-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Go is a language.")
	assert.Contains(t, out, "chat id:  c-1")

	_, err = execute(t, "--config", config, "clients", "run", "--key", "missing", "--input", "hi")
	assert.Error(t, err)
}

func TestToolsSearch(t *testing.T) {
	hub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/search/repositories/", r.URL.Path)
		_, _ = w.Write([]byte(`{"count":1,"results":[{"repo_name":"redis","short_description":"Redis","is_official":true}]}`))
	}))
	defer hub.Close()

	config := writeConfig(t, `
store:
  type: none
toolcalling:
  dockerhub:
    base-url: `+hub.URL+`/v2
`)
	out, err := execute(t, "--config", config, "tools", "search", "redis")
	require.NoError(t, err)
	assert.Contains(t, out, "1. redis [official]")

	disabled := writeConfig(t, "store:\n  type: none\ntoolcalling:\n  dockerhub:\n    enabled: false\n")
	_, err = execute(t, "--config", disabled, "tools", "search", "redis")
	assert.Error(t, err)
}

func TestRequiredFlags(t *testing.T) {
	_, err := execute(t, "clients", "run", "--key", "assistant")
	assert.Error(t, err)
}
