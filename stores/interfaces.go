package stores

import (
	"context"

	"gorm.io/gorm"
)

// Message is one stored chat turn within a conversation.
type Message struct {
	gorm.Model
	ConversationID string `gorm:"index;not null"`
	Sequence       int    `gorm:"not null"`
	Role           string `gorm:"not null"` // "system", "user", "assistant"
	Content        string `gorm:"type:text"`
}

// Conversation holds metadata for a chat conversation
type Conversation struct {
	gorm.Model
	ConversationID string    `gorm:"uniqueIndex;not null"`
	ClientName     string    `gorm:"index"`
	MessageCount   int       `gorm:"default:0"`
	Messages       []Message `gorm:"foreignKey:ConversationID;references:ConversationID"`
}

// ConversationInfo holds basic conversation metadata for listing
type ConversationInfo struct {
	ConversationID string `json:"conversation_id"`
	ClientName     string `json:"client_name,omitempty"`
	MessageCount   int    `json:"message_count"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// MessageStore persists conversation history.
type MessageStore interface {
	// Message operations
	SaveMessage(ctx context.Context, conversationID, role, content string) error
	FetchHistory(ctx context.Context, conversationID string, limit int) ([]Message, error)

	// Conversation operations
	CreateConversation(ctx context.Context, conversationID, clientName string) error
	ListConversations(ctx context.Context) ([]ConversationInfo, error)
	DeleteConversation(ctx context.Context, conversationID string) error

	// Connection management
	Connect() error
	Close() error
	Ping() error

	// DB exposes the connection so other stores (traces) can share it.
	DB() *gorm.DB
}

// StoreConfig holds configuration for database stores
type StoreConfig struct {
	Type       string `json:"type" yaml:"type"`             // "sqlite", "postgres"
	Connection string `json:"connection" yaml:"connection"` // path or DSN
}

// NewStoreConfig creates a new store configuration
func NewStoreConfig(storeType, connection string) *StoreConfig {
	return &StoreConfig{
		Type:       storeType,
		Connection: connection,
	}
}
