// Package storage provides the persistence collaborator interfaces for the
// Charlotte memory core.
//
// The layer is split into small, focused interfaces that can be implemented
// independently and composed as needed. The core never talks to a database
// directly; it consumes these interfaces and converts any failure at its own
// boundary into a default result (read paths) or an explicit failure
// (the conversation save path).
package storage

import (
	"context"
	"time"

	"github.com/charlotte-agent/charlotte/pkg/types"
)

// MemoryStreamStore persists individual user/agent exchanges.
type MemoryStreamStore interface {
	// InsertRecord creates a new memory record. An empty ID and a zero
	// CreatedAt are filled in by the implementation.
	InsertRecord(ctx context.Context, record *types.MemoryRecord) error

	// ListRecentRecords returns active records created after the given time,
	// newest first, capped at limit.
	ListRecentRecords(ctx context.Context, since time.Time, limit int) ([]types.MemoryRecord, error)

	// ListAllRecords returns every active record, newest first.
	ListAllRecords(ctx context.Context) ([]types.MemoryRecord, error)

	// UpdateRecordEmbedding back-fills the embedding for a record.
	// The embedding is derived purely from the record's immutable text, so
	// concurrent back-fills of the same record are safe: last write wins.
	UpdateRecordEmbedding(ctx context.Context, id string, embedding []float32) error

	// ListRecordsMissingEmbedding returns active records whose embedding
	// column is NULL, oldest first, capped at limit.
	ListRecordsMissingEmbedding(ctx context.Context, limit int) ([]types.MemoryRecord, error)
}

// ConversationArchive persists whole saved conversations.
type ConversationArchive interface {
	// InsertConversation persists a new saved conversation.
	// Returns ErrNoRowsWritten if the backend reports nothing was stored.
	InsertConversation(ctx context.Context, conv *types.SavedConversation) error

	// GetConversation retrieves one conversation by ID.
	// Returns ErrNotFound if it does not exist.
	GetConversation(ctx context.Context, id string) (*types.SavedConversation, error)

	// ListActiveConversations returns all active saved conversations,
	// newest first.
	ListActiveConversations(ctx context.Context) ([]types.SavedConversation, error)

	// IncrementUsageCount atomically adds 1 to a conversation's usage
	// counter. Returns ErrNotFound if the conversation does not exist.
	IncrementUsageCount(ctx context.Context, id string) error

	// UpdateConversationEmbedding back-fills the embedding for a saved
	// conversation. Same last-write-wins semantics as record back-fill.
	UpdateConversationEmbedding(ctx context.Context, id string, embedding []float32) error

	// ListConversationsMissingEmbedding returns active conversations whose
	// embedding column is NULL, oldest first, capped at limit.
	ListConversationsMissingEmbedding(ctx context.Context, limit int) ([]types.SavedConversation, error)
}

// EmotionLog persists the append-only emotional state history.
type EmotionLog interface {
	// AppendStateEvent appends one immutable state transition event.
	AppendStateEvent(ctx context.Context, event *types.EmotionalStateEvent) error

	// ListRecentStateEvents returns the most recent events, newest first,
	// capped at limit.
	ListRecentStateEvents(ctx context.Context, limit int) ([]types.EmotionalStateEvent, error)
}

// TriggerSource provides the read-only emotional trigger reference data.
// The core consults triggers on every emotion update but never writes them.
type TriggerSource interface {
	ListTriggers(ctx context.Context) ([]types.EmotionalTrigger, error)
}

// RecordStore is the full persistence collaborator: everything the memory
// core needs from a backend. Both the SQLite and Postgres stores implement
// it.
type RecordStore interface {
	MemoryStreamStore
	ConversationArchive
	EmotionLog
	TriggerSource

	// Close releases any resources held by the store.
	Close() error
}
