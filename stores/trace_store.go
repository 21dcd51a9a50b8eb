package stores

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// RunTrace records one chat-client run together with its tracing identifiers.
type RunTrace struct {
	ID             uint      `gorm:"primarykey" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	ConversationID string    `gorm:"index:idx_trace_conv;not null" json:"conversation_id"`
	ClientName     string    `gorm:"index;not null" json:"client_name"`
	TraceID        string    `gorm:"index;not null" json:"trace_id"`
	SpanID         string    `json:"span_id,omitempty"`
	Operation      string    `json:"operation"`
	Status         string    `gorm:"not null" json:"status"` // ok, error
	Input          string    `gorm:"type:text" json:"input"`
	Output         string    `gorm:"type:text" json:"output,omitempty"`
	Error          string    `gorm:"type:text" json:"error,omitempty"`
	DurationMS     int64     `json:"duration_ms"`
}

// TraceStore interface for run trace persistence
type TraceStore interface {
	// SaveTrace saves a single run trace
	SaveTrace(ctx context.Context, trace *RunTrace) error

	// GetTracesByConversation retrieves all traces for a conversation, oldest first
	GetTracesByConversation(ctx context.Context, conversationID string) ([]*RunTrace, error)

	// GetTracesByTraceID retrieves all runs recorded under one trace id
	GetTracesByTraceID(ctx context.Context, traceID string) ([]*RunTrace, error)

	// DeleteTracesByConversation removes all traces for a conversation
	DeleteTracesByConversation(ctx context.Context, conversationID string) error
}

// GORMTraceStore implements TraceStore for SQLite/PostgreSQL via GORM
type GORMTraceStore struct {
	db *gorm.DB
}

// NewGORMTraceStore creates a trace store from an existing GORM database connection
func NewGORMTraceStore(db *gorm.DB) (*GORMTraceStore, error) {
	if db == nil {
		return nil, errNilConnection
	}

	if err := db.AutoMigrate(&RunTrace{}); err != nil {
		return nil, fmt.Errorf("failed to migrate run_traces table: %w", err)
	}

	return &GORMTraceStore{db: db}, nil
}

func (s *GORMTraceStore) SaveTrace(ctx context.Context, trace *RunTrace) error {
	if trace == nil {
		return fmt.Errorf("cannot save nil trace")
	}
	return s.db.WithContext(ctx).Create(trace).Error
}

func (s *GORMTraceStore) GetTracesByConversation(ctx context.Context, conversationID string) ([]*RunTrace, error) {
	var traces []*RunTrace
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&traces).Error
	return traces, err
}

func (s *GORMTraceStore) GetTracesByTraceID(ctx context.Context, traceID string) ([]*RunTrace, error) {
	var traces []*RunTrace
	err := s.db.WithContext(ctx).
		Where("trace_id = ?", traceID).
		Order("created_at ASC, id ASC").
		Find(&traces).Error
	return traces, err
}

func (s *GORMTraceStore) DeleteTracesByConversation(ctx context.Context, conversationID string) error {
	return s.db.WithContext(ctx).Where("conversation_id = ?", conversationID).Delete(&RunTrace{}).Error
}
