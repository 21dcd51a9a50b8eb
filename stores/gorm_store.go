package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var errNilConnection = errors.New("database connection is nil")

// gormStore implements MessageStore on any gorm dialector. The SQLite and
// PostgreSQL stores only differ in how they open the connection.
type gormStore struct {
	db   *gorm.DB
	open func() (*gorm.DB, error)
}

// Connect establishes the connection and migrates the schema
func (s *gormStore) Connect() error {
	db, err := s.open()
	if err != nil {
		return err
	}
	s.db = db

	if err := s.db.AutoMigrate(&Conversation{}, &Message{}); err != nil {
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *gormStore) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (s *gormStore) Ping() error {
	if s.db == nil {
		return errNilConnection
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (s *gormStore) DB() *gorm.DB { return s.db }

// SaveMessage appends a message, creating the conversation on first use.
func (s *gormStore) SaveMessage(ctx context.Context, conversationID, role, content string) error {
	if s.db == nil {
		return errNilConnection
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Conversation{}).Where("conversation_id = ?", conversationID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check conversation %s: %w", conversationID, err)
		}
		if count == 0 {
			if err := tx.Create(&Conversation{ConversationID: conversationID}).Error; err != nil {
				return fmt.Errorf("failed to create conversation %s: %w", conversationID, err)
			}
		}

		if err := tx.Model(&Message{}).Where("conversation_id = ?", conversationID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count existing messages: %w", err)
		}
		seq := int(count) + 1

		msg := Message{
			ConversationID: conversationID,
			Sequence:       seq,
			Role:           role,
			Content:        content,
		}
		if err := tx.Create(&msg).Error; err != nil {
			return fmt.Errorf("failed to create message record: %w", err)
		}

		if err := tx.Model(&Conversation{}).Where("conversation_id = ?", conversationID).Update("message_count", seq).Error; err != nil {
			return fmt.Errorf("failed to update conversation message count: %w", err)
		}
		return nil
	})
}

// FetchHistory retrieves messages for a conversation in sequence order.
// limit: maximum number of most recent messages to retrieve (0 = all)
func (s *gormStore) FetchHistory(ctx context.Context, conversationID string, limit int) ([]Message, error) {
	if s.db == nil {
		return nil, errNilConnection
	}

	db := s.db.WithContext(ctx)
	query := db.Where("conversation_id = ?", conversationID).Order("sequence ASC")

	if limit > 0 {
		var count int64
		if err := db.Model(&Message{}).Where("conversation_id = ?", conversationID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count messages: %w", err)
		}
		if count > int64(limit) {
			query = query.Offset(int(count) - limit).Limit(limit)
		}
	}

	var msgs []Message
	if err := query.Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return msgs, nil
}

// CreateConversation records a conversation for clientName. An existing
// conversation keeps its client name unless it has none yet.
func (s *gormStore) CreateConversation(ctx context.Context, conversationID, clientName string) error {
	if s.db == nil {
		return errNilConnection
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conv Conversation
		err := tx.Where(Conversation{ConversationID: conversationID}).
			Attrs(Conversation{ClientName: clientName}).
			FirstOrCreate(&conv).Error
		if err != nil {
			return fmt.Errorf("failed to create conversation %s: %w", conversationID, err)
		}
		if conv.ClientName == "" && clientName != "" {
			return tx.Model(&conv).Update("client_name", clientName).Error
		}
		return nil
	})
}

// ListConversations returns every conversation, most recently updated first
func (s *gormStore) ListConversations(ctx context.Context) ([]ConversationInfo, error) {
	if s.db == nil {
		return nil, errNilConnection
	}

	var convs []Conversation
	if err := s.db.WithContext(ctx).Order("updated_at DESC").Find(&convs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch conversations: %w", err)
	}

	result := make([]ConversationInfo, len(convs))
	for i, c := range convs {
		result[i] = ConversationInfo{
			ConversationID: c.ConversationID,
			ClientName:     c.ClientName,
			MessageCount:   c.MessageCount,
			CreatedAt:      c.CreatedAt.Format(time.RFC3339),
			UpdatedAt:      c.UpdatedAt.Format(time.RFC3339),
		}
	}
	return result, nil
}

// DeleteConversation removes a conversation and its messages
func (s *gormStore) DeleteConversation(ctx context.Context, conversationID string) error {
	if s.db == nil {
		return errNilConnection
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("conversation_id = ?", conversationID).Delete(&Message{}).Error; err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}
		return tx.Unscoped().Where("conversation_id = ?", conversationID).Delete(&Conversation{}).Error
	})
}
