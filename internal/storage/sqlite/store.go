// Package sqlite implements the storage.RecordStore interface on SQLite
// via modernc.org/sqlite (pure Go, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/charlotte-agent/charlotte/internal/storage"
	"github.com/charlotte-agent/charlotte/pkg/types"
)

// Store implements storage.RecordStore using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database, configures WAL mode, and creates the
// schema. Use ":memory:" as the DSN for an in-memory store (tests).
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer. A single open connection
	// serialises writes and avoids SQLITE_BUSY errors under concurrent load.
	// WAL mode lets readers proceed without blocking the writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertRecord creates a new memory record.
func (s *Store) InsertRecord(ctx context.Context, record *types.MemoryRecord) error {
	if record == nil {
		return storage.ErrInvalidInput
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO memory_stream (
			id, user_message, agent_response, conversation_topic,
			emotional_context, importance_score, is_active, created_at, embedding
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.UserMessage,
		record.AgentResponse,
		nullString(record.ConversationTopic),
		nullString(record.EmotionalContext),
		record.ImportanceScore,
		boolToInt(record.IsActive),
		record.CreatedAt,
		storage.SerializeEmbedding(record.Embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to insert memory record: %w", err)
	}

	return nil
}

// ListRecentRecords returns active records created after since, newest first.
func (s *Store) ListRecentRecords(ctx context.Context, since time.Time, limit int) ([]types.MemoryRecord, error) {
	query := `
		SELECT id, user_message, agent_response, conversation_topic,
			emotional_context, importance_score, is_active, created_at, embedding
		FROM memory_stream
		WHERE is_active = 1 AND created_at > ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListAllRecords returns every active record, newest first.
func (s *Store) ListAllRecords(ctx context.Context) ([]types.MemoryRecord, error) {
	query := `
		SELECT id, user_message, agent_response, conversation_topic,
			emotional_context, importance_score, is_active, created_at, embedding
		FROM memory_stream
		WHERE is_active = 1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// UpdateRecordEmbedding back-fills the embedding for a record.
// Last write wins; the embedding is derived from immutable text so racing
// back-fills produce identical results anyway.
func (s *Store) UpdateRecordEmbedding(ctx context.Context, id string, embedding []float32) error {
	if id == "" {
		return fmt.Errorf("%w: record ID is required", storage.ErrInvalidInput)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE memory_stream SET embedding = ? WHERE id = ?`,
		storage.SerializeEmbedding(embedding), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update record embedding: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// ListRecordsMissingEmbedding returns active records with a NULL embedding,
// oldest first.
func (s *Store) ListRecordsMissingEmbedding(ctx context.Context, limit int) ([]types.MemoryRecord, error) {
	query := `
		SELECT id, user_message, agent_response, conversation_topic,
			emotional_context, importance_score, is_active, created_at, embedding
		FROM memory_stream
		WHERE is_active = 1 AND embedding IS NULL
		ORDER BY created_at ASC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list records missing embeddings: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// InsertConversation persists a new saved conversation.
func (s *Store) InsertConversation(ctx context.Context, conv *types.SavedConversation) error {
	if conv == nil {
		return storage.ErrInvalidInput
	}
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now()
	}

	turnsJSON, err := json.Marshal(conv.Turns)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation turns: %w", err)
	}
	topicsJSON, err := json.Marshal(conv.Topics)
	if err != nil {
		return fmt.Errorf("failed to marshal topics: %w", err)
	}
	arcJSON, err := json.Marshal(conv.EmotionalArc)
	if err != nil {
		return fmt.Errorf("failed to marshal emotional arc: %w", err)
	}

	query := `
		INSERT INTO saved_conversations (
			id, title, description, conversation_data, conversation_type,
			topics, emotional_arc, quality_score, usage_count, is_active,
			created_at, embedding
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		conv.ID,
		conv.Title,
		nullString(conv.Description),
		string(turnsJSON),
		conv.ConversationType,
		string(topicsJSON),
		string(arcJSON),
		conv.QualityScore,
		conv.UsageCount,
		boolToInt(conv.IsActive),
		conv.CreatedAt,
		storage.SerializeEmbedding(conv.Embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNoRowsWritten
	}

	return nil
}

// GetConversation retrieves one conversation by ID.
func (s *Store) GetConversation(ctx context.Context, id string) (*types.SavedConversation, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: conversation ID is required", storage.ErrInvalidInput)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, conversation_data, conversation_type,
			topics, emotional_arc, quality_score, usage_count, is_active,
			created_at, embedding
		FROM saved_conversations
		WHERE id = ?
	`, id)

	conv, err := scanConversation(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	return conv, nil
}

// ListActiveConversations returns all active saved conversations, newest first.
func (s *Store) ListActiveConversations(ctx context.Context) ([]types.SavedConversation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, conversation_data, conversation_type,
			topics, emotional_arc, quality_score, usage_count, is_active,
			created_at, embedding
		FROM saved_conversations
		WHERE is_active = 1
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []types.SavedConversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, *conv)
	}

	return conversations, rows.Err()
}

// IncrementUsageCount atomically adds 1 to a conversation's usage counter.
func (s *Store) IncrementUsageCount(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: conversation ID is required", storage.ErrInvalidInput)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE saved_conversations SET usage_count = usage_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to increment usage count: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// UpdateConversationEmbedding back-fills the embedding for a conversation.
func (s *Store) UpdateConversationEmbedding(ctx context.Context, id string, embedding []float32) error {
	if id == "" {
		return fmt.Errorf("%w: conversation ID is required", storage.ErrInvalidInput)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE saved_conversations SET embedding = ? WHERE id = ?`,
		storage.SerializeEmbedding(embedding), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update conversation embedding: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// ListConversationsMissingEmbedding returns active conversations with a NULL
// embedding, oldest first.
func (s *Store) ListConversationsMissingEmbedding(ctx context.Context, limit int) ([]types.SavedConversation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, conversation_data, conversation_type,
			topics, emotional_arc, quality_score, usage_count, is_active,
			created_at, embedding
		FROM saved_conversations
		WHERE is_active = 1 AND embedding IS NULL
		ORDER BY created_at ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations missing embeddings: %w", err)
	}
	defer rows.Close()

	var conversations []types.SavedConversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, *conv)
	}

	return conversations, rows.Err()
}

// AppendStateEvent appends one immutable emotional state transition event.
func (s *Store) AppendStateEvent(ctx context.Context, event *types.EmotionalStateEvent) error {
	if event == nil {
		return storage.ErrInvalidInput
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO emotional_states (
			id, emotion, intensity, trigger_value, transition_from,
			conversation_context, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		event.ID,
		event.Emotion,
		event.Intensity,
		nullString(event.Trigger),
		nullString(event.TransitionFrom),
		nullString(event.ConversationContext),
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append state event: %w", err)
	}

	return nil
}

// ListRecentStateEvents returns the most recent state events, newest first.
func (s *Store) ListRecentStateEvents(ctx context.Context, limit int) ([]types.EmotionalStateEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, emotion, intensity, trigger_value, transition_from,
			conversation_context, created_at
		FROM emotional_states
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list state events: %w", err)
	}
	defer rows.Close()

	var events []types.EmotionalStateEvent
	for rows.Next() {
		var (
			event                       types.EmotionalStateEvent
			trigger, transFrom, convCtx sql.NullString
		)
		if err := rows.Scan(&event.ID, &event.Emotion, &event.Intensity,
			&trigger, &transFrom, &convCtx, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan state event: %w", err)
		}
		event.Trigger = trigger.String
		event.TransitionFrom = transFrom.String
		event.ConversationContext = convCtx.String
		events = append(events, event)
	}

	return events, rows.Err()
}

// ListTriggers returns the emotional trigger reference table.
func (s *Store) ListTriggers(ctx context.Context) ([]types.EmotionalTrigger, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT trigger_value, emotion_induced, intensity_change, confidence_score
		FROM emotional_triggers
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list triggers: %w", err)
	}
	defer rows.Close()

	var triggers []types.EmotionalTrigger
	for rows.Next() {
		var t types.EmotionalTrigger
		if err := rows.Scan(&t.TriggerValue, &t.EmotionInduced,
			&t.IntensityChange, &t.ConfidenceScore); err != nil {
			return nil, fmt.Errorf("failed to scan trigger: %w", err)
		}
		triggers = append(triggers, t)
	}

	return triggers, rows.Err()
}

// SeedTriggers replaces the trigger reference table with the given set.
// Used by setup tooling; the core itself never writes triggers.
func (s *Store) SeedTriggers(ctx context.Context, triggers []types.EmotionalTrigger) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM emotional_triggers`); err != nil {
		return fmt.Errorf("failed to clear triggers: %w", err)
	}

	for _, t := range triggers {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO emotional_triggers (
				id, trigger_value, emotion_induced, intensity_change, confidence_score
			) VALUES (?, ?, ?, ?, ?)
		`, uuid.NewString(), t.TriggerValue, t.EmotionInduced, t.IntensityChange, t.ConfidenceScore); err != nil {
			return fmt.Errorf("failed to insert trigger %q: %w", t.TriggerValue, err)
		}
	}

	return tx.Commit()
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecords(rows *sql.Rows) ([]types.MemoryRecord, error) {
	var records []types.MemoryRecord
	for rows.Next() {
		var (
			record         types.MemoryRecord
			topic, emotion sql.NullString
			active         int
			blob           []byte
		)
		if err := rows.Scan(&record.ID, &record.UserMessage, &record.AgentResponse,
			&topic, &emotion, &record.ImportanceScore, &active,
			&record.CreatedAt, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan memory record: %w", err)
		}
		record.ConversationTopic = topic.String
		record.EmotionalContext = emotion.String
		record.IsActive = active != 0

		embedding, err := storage.DeserializeEmbedding(blob)
		if err != nil {
			// Malformed stored embedding reads as "no embedding"; ranking
			// treats it as zero similarity rather than failing the scan.
			embedding = nil
		}
		record.Embedding = embedding

		records = append(records, record)
	}

	return records, rows.Err()
}

func scanConversation(row scanner) (*types.SavedConversation, error) {
	var (
		conv        types.SavedConversation
		description sql.NullString
		turnsJSON   string
		topicsJSON  string
		arcJSON     string
		active      int
		blob        []byte
	)

	err := row.Scan(&conv.ID, &conv.Title, &description, &turnsJSON,
		&conv.ConversationType, &topicsJSON, &arcJSON, &conv.QualityScore,
		&conv.UsageCount, &active, &conv.CreatedAt, &blob)
	if err != nil {
		return nil, err
	}

	conv.Description = description.String
	conv.IsActive = active != 0

	if err := json.Unmarshal([]byte(turnsJSON), &conv.Turns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation turns: %w", err)
	}
	if err := json.Unmarshal([]byte(topicsJSON), &conv.Topics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal topics: %w", err)
	}
	if err := json.Unmarshal([]byte(arcJSON), &conv.EmotionalArc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal emotional arc: %w", err)
	}

	embedding, err := storage.DeserializeEmbedding(blob)
	if err != nil {
		embedding = nil
	}
	conv.Embedding = embedding

	return &conv, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Compile-time assertion that Store satisfies the full collaborator interface.
var _ storage.RecordStore = (*Store)(nil)
