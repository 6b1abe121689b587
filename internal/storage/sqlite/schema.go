package sqlite

// Schema creates the four persisted tables. Embeddings are stored as binary
// BLOBs (little-endian float32); NULL means the embedding has not been
// generated yet, which the back-fill scans rely on.
const Schema = `
CREATE TABLE IF NOT EXISTS memory_stream (
	id TEXT PRIMARY KEY,
	user_message TEXT NOT NULL,
	agent_response TEXT NOT NULL,
	conversation_topic TEXT,
	emotional_context TEXT,
	importance_score REAL NOT NULL DEFAULT 0.5,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	embedding BLOB
);

CREATE INDEX IF NOT EXISTS idx_memory_stream_created_at
	ON memory_stream(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_memory_stream_active
	ON memory_stream(is_active);

CREATE TABLE IF NOT EXISTS saved_conversations (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT,
	conversation_data TEXT NOT NULL,
	conversation_type TEXT NOT NULL,
	topics TEXT NOT NULL,
	emotional_arc TEXT NOT NULL,
	quality_score REAL NOT NULL DEFAULT 0.8,
	usage_count INTEGER NOT NULL DEFAULT 0,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	embedding BLOB
);

CREATE INDEX IF NOT EXISTS idx_saved_conversations_active
	ON saved_conversations(is_active, created_at DESC);

CREATE TABLE IF NOT EXISTS emotional_states (
	id TEXT PRIMARY KEY,
	emotion TEXT NOT NULL,
	intensity REAL NOT NULL,
	trigger_value TEXT,
	transition_from TEXT,
	conversation_context TEXT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_emotional_states_created_at
	ON emotional_states(created_at DESC);

CREATE TABLE IF NOT EXISTS emotional_triggers (
	id TEXT PRIMARY KEY,
	trigger_value TEXT NOT NULL,
	emotion_induced TEXT NOT NULL,
	intensity_change REAL NOT NULL,
	confidence_score REAL NOT NULL DEFAULT 0.5
);
`
