package models

import "github.com/Desarso/agentstudio/chat"

// ClientRunActionParam asks a chat client for one conversational turn.
type ClientRunActionParam struct {
	// Key is the registered client name.
	Key   string `json:"key"`
	Input string `json:"input"`
	// Prompt, when not blank, replaces the client's default system text.
	Prompt      string        `json:"prompt,omitempty"`
	ChatOptions *chat.Options `json:"chatOptions,omitempty"`
	// ChatID continues a conversation; blank starts a new one.
	ChatID string `json:"chatID,omitempty"`
}

// ToolInvokeRequest carries the arguments of a direct tool invocation.
type ToolInvokeRequest struct {
	Args map[string]any `json:"args"`
}
