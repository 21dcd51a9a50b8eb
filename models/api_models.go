package models

import (
	"time"

	"github.com/Desarso/agentstudio/chat"
)

// ModelType tags the kind of model behind a client.
type ModelType string

const (
	ModelTypeChat      ModelType = "CHAT"
	ModelTypeImage     ModelType = "IMAGE"
	ModelTypeAudio     ModelType = "AUDIO"
	ModelTypeEmbedding ModelType = "EMBEDDING"
)

// ChatClient summarizes a registered chat client's configuration.
// Everything but Name is optional.
type ChatClient struct {
	Name                string           `json:"name"`
	DefaultSystemText   string           `json:"defaultSystemText,omitempty"`
	DefaultSystemParams map[string]any   `json:"defaultSystemParams,omitempty"`
	ChatOptions         *chat.Options    `json:"chatOptions,omitempty"`
	Advisors            []AdvisorInfo    `json:"advisors,omitempty"`
	IsMemoryEnabled     bool             `json:"isMemoryEnabled"`
	ChatModel           *ChatModelConfig `json:"chatModel,omitempty"`
}

// AdvisorInfo describes one advisor attached to a client.
type AdvisorInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ChatModelConfig describes the model behind a client.
type ChatModelConfig struct {
	Name      string    `json:"name"`
	Model     string    `json:"model"`
	ModelType ModelType `json:"modelType"`
	// ChatOptions holds model-specific options when the backend exposes them.
	ChatOptions any `json:"chatOptions,omitempty"`
}

// ChatMessageResponse is one stored message as returned by the history endpoint.
type ChatMessageResponse struct {
	ID             uint      `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	ConversationID string    `json:"conversation_id"`
	Sequence       int       `json:"sequence"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
}
