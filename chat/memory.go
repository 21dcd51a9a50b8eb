package chat

import (
	"context"
	"fmt"
	"sync"
)

const (
	// ConversationIDKey is the advisor parameter holding the conversation id.
	ConversationIDKey = "chat_memory_conversation_id"

	// TopKKey is the advisor parameter bounding how much history is retrieved.
	TopKKey = "chat_memory_retrieve_size"

	DefaultConversationID = "default"
	DefaultMemoryWindow   = 100
)

// Memory stores conversation history keyed by conversation id.
type Memory interface {
	// Get returns up to lastN most recent messages, oldest first. lastN <= 0 returns all.
	Get(ctx context.Context, conversationID string, lastN int) ([]Message, error)
	Add(ctx context.Context, conversationID string, messages ...Message) error
	Clear(ctx context.Context, conversationID string) error
}

// InMemoryMemory is a process-local Memory.
type InMemoryMemory struct {
	mu            sync.RWMutex
	conversations map[string][]Message
}

func NewInMemoryMemory() *InMemoryMemory {
	return &InMemoryMemory{conversations: make(map[string][]Message)}
}

func (m *InMemoryMemory) Get(_ context.Context, conversationID string, lastN int) ([]Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := m.conversations[conversationID]
	if lastN > 0 && len(history) > lastN {
		history = history[len(history)-lastN:]
	}
	return append([]Message(nil), history...), nil
}

func (m *InMemoryMemory) Add(_ context.Context, conversationID string, messages ...Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversations[conversationID] = append(m.conversations[conversationID], messages...)
	return nil
}

func (m *InMemoryMemory) Clear(_ context.Context, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conversations, conversationID)
	return nil
}

// MessageMemoryAdvisor replays stored history into each request and records
// the new user/assistant exchange once the model answers.
type MessageMemoryAdvisor struct {
	memory Memory
	window int
}

// NewMessageMemoryAdvisor creates a memory advisor. window <= 0 uses
// DefaultMemoryWindow. A TopKKey param larger than window is capped to it.
func NewMessageMemoryAdvisor(memory Memory, window int) *MessageMemoryAdvisor {
	if window <= 0 {
		window = DefaultMemoryWindow
	}
	return &MessageMemoryAdvisor{memory: memory, window: window}
}

func (a *MessageMemoryAdvisor) Name() string { return "MessageMemoryAdvisor" }

func (a *MessageMemoryAdvisor) Memory() Memory { return a.memory }

func (a *MessageMemoryAdvisor) AroundCall(ctx context.Context, req *AdvisedRequest, next CallFunc) (*Response, error) {
	conversationID := conversationIDParam(req)
	window := topKParam(req, a.window)
	if window <= 0 || window > a.window {
		window = a.window
	}

	history, err := a.memory.Get(ctx, conversationID, window)
	if err != nil {
		return nil, fmt.Errorf("load conversation %s: %w", conversationID, err)
	}
	req.History = append(history, req.History...)

	resp, err := next(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := a.memory.Add(ctx, conversationID, UserMessage(req.UserText), AssistantMessage(resp.Content)); err != nil {
		return nil, fmt.Errorf("save conversation %s: %w", conversationID, err)
	}
	return resp, nil
}

func conversationIDParam(req *AdvisedRequest) string {
	if v, ok := req.Param(ConversationIDKey); ok {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}
	return DefaultConversationID
}

func topKParam(req *AdvisedRequest, fallback int) int {
	v, ok := req.Param(TopKKey)
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return fallback
}
