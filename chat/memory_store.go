package chat

import (
	"context"

	"github.com/Desarso/agentstudio/stores"
)

// StoreMemory is a Memory persisted through a stores.MessageStore.
type StoreMemory struct {
	store stores.MessageStore
}

func NewStoreMemory(store stores.MessageStore) *StoreMemory {
	return &StoreMemory{store: store}
}

func (m *StoreMemory) Get(ctx context.Context, conversationID string, lastN int) ([]Message, error) {
	stored, err := m.store.FetchHistory(ctx, conversationID, lastN)
	if err != nil {
		return nil, err
	}
	stored = stores.SanitizeHistory(stored)

	history := make([]Message, len(stored))
	for i, msg := range stored {
		history[i] = Message{Role: Role(msg.Role), Content: msg.Content}
	}
	return history, nil
}

func (m *StoreMemory) Add(ctx context.Context, conversationID string, messages ...Message) error {
	for _, msg := range messages {
		if err := m.store.SaveMessage(ctx, conversationID, string(msg.Role), msg.Content); err != nil {
			return err
		}
	}
	return nil
}

func (m *StoreMemory) Clear(ctx context.Context, conversationID string) error {
	return m.store.DeleteConversation(ctx, conversationID)
}
