package postgres

// Schema creates the four persisted tables. Embeddings are kept in a binary
// BYTEA column for portability; when the pgvector extension is installed an
// additional embedding_vec column is populated so nearest-neighbour queries
// can run inside the database.
const Schema = `
CREATE TABLE IF NOT EXISTS memory_stream (
	id TEXT PRIMARY KEY,
	user_message TEXT NOT NULL,
	agent_response TEXT NOT NULL,
	conversation_topic TEXT,
	emotional_context TEXT,
	importance_score DOUBLE PRECISION NOT NULL DEFAULT 0.5,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	embedding BYTEA
);

CREATE INDEX IF NOT EXISTS idx_memory_stream_created_at
	ON memory_stream(created_at DESC);

CREATE TABLE IF NOT EXISTS saved_conversations (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT,
	conversation_data JSONB NOT NULL,
	conversation_type TEXT NOT NULL,
	topics JSONB NOT NULL,
	emotional_arc JSONB NOT NULL,
	quality_score DOUBLE PRECISION NOT NULL DEFAULT 0.8,
	usage_count INTEGER NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	embedding BYTEA
);

CREATE INDEX IF NOT EXISTS idx_saved_conversations_active
	ON saved_conversations(is_active, created_at DESC);

CREATE TABLE IF NOT EXISTS emotional_states (
	id TEXT PRIMARY KEY,
	emotion TEXT NOT NULL,
	intensity DOUBLE PRECISION NOT NULL,
	trigger_value TEXT,
	transition_from TEXT,
	conversation_context TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_emotional_states_created_at
	ON emotional_states(created_at DESC);

CREATE TABLE IF NOT EXISTS emotional_triggers (
	id TEXT PRIMARY KEY,
	trigger_value TEXT NOT NULL,
	emotion_induced TEXT NOT NULL,
	intensity_change DOUBLE PRECISION NOT NULL,
	confidence_score DOUBLE PRECISION NOT NULL DEFAULT 0.5
);
`

// VectorSchema adds the pgvector columns. Applied only when the extension
// is available; the dimension must match the configured embedding model.
const VectorSchema = `
CREATE EXTENSION IF NOT EXISTS vector;

ALTER TABLE memory_stream
	ADD COLUMN IF NOT EXISTS embedding_vec vector(%d);
ALTER TABLE saved_conversations
	ADD COLUMN IF NOT EXISTS embedding_vec vector(%d);
`
