// Package types defines the plain data structures exchanged between the
// Charlotte memory core and its callers. Nothing here touches the network
// or the database; these are the shapes the storage layer persists and the
// core hands back to the surrounding application.
package types

import "time"

// Sender values for conversation turns.
const (
	SenderUser  = "user"
	SenderAgent = "agent"
)

// Turn is a single message in a conversation: who said it, what was said,
// and when.
type Turn struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// MemoryRecord is one stored user/agent exchange in the memory stream.
// The embedding is optional: records are written first and back-filled with
// an embedding later, so a nil Embedding means "not yet generated", which is
// distinct from a present-but-useless vector.
type MemoryRecord struct {
	ID                string    `json:"id"`
	UserMessage       string    `json:"user_message"`
	AgentResponse     string    `json:"agent_response"`
	ConversationTopic string    `json:"conversation_topic,omitempty"`
	EmotionalContext  string    `json:"emotional_context,omitempty"`
	ImportanceScore   float64   `json:"importance_score"` // 0.0-1.0
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	Embedding         []float32 `json:"embedding,omitempty"`
}

// Text returns the combined exchange text used for embedding and
// keyword extraction.
func (r *MemoryRecord) Text() string {
	if r.UserMessage == "" {
		return r.AgentResponse
	}
	if r.AgentResponse == "" {
		return r.UserMessage
	}
	return r.UserMessage + " " + r.AgentResponse
}

// EmotionalArc summarizes the emotional progression of a conversation:
// the per-response labels in order, and the dominant overall tone.
type EmotionalArc struct {
	Emotions    []string `json:"emotions"`
	OverallTone string   `json:"overall_tone"`
}

// SavedConversation is a full persisted session with derived classification.
// After creation only UsageCount and the embedding back-fill ever change;
// the turns themselves are immutable.
type SavedConversation struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Description      string       `json:"description,omitempty"`
	Turns            []Turn       `json:"conversation_data"`
	ConversationType string       `json:"conversation_type"`
	Topics           []string     `json:"topics"` // at most 5
	EmotionalArc     EmotionalArc `json:"emotional_arc"`
	QualityScore     float64      `json:"quality_score"` // 0.0-1.0
	UsageCount       int          `json:"usage_count"`
	IsActive         bool         `json:"is_active"`
	CreatedAt        time.Time    `json:"created_at"`
	Embedding        []float32    `json:"embedding,omitempty"`
}

// LastTurnTime returns the timestamp of the final turn, or the zero time
// when the conversation has no turns. Used for recency boosting.
func (c *SavedConversation) LastTurnTime() time.Time {
	if len(c.Turns) == 0 {
		return time.Time{}
	}
	return c.Turns[len(c.Turns)-1].Timestamp
}

// ScoredRecord pairs a memory record with the similarity score that
// surfaced it during context assembly.
type ScoredRecord struct {
	Record     MemoryRecord `json:"record"`
	Similarity float64      `json:"similarity"`
}

// ScoredConversation pairs a saved conversation with its final relevance
// score (similarity adjusted by quality and recency boosts).
type ScoredConversation struct {
	Conversation SavedConversation `json:"conversation"`
	Relevance    float64           `json:"relevance"`
}

// ContextBundle is the ephemeral context assembled for a single turn.
// It is rebuilt fresh on every request and never persisted.
type ContextBundle struct {
	RecentContext       []MemoryRecord `json:"recent_context"`
	HistoricalContext   []ScoredRecord `json:"historical_context"`
	ConversationSummary string         `json:"conversation_summary"`
}

// IsEmpty reports whether the bundle carries any context at all.
func (b *ContextBundle) IsEmpty() bool {
	return len(b.RecentContext) == 0 && len(b.HistoricalContext) == 0
}

// Insights is the Observer's post-hoc aggregation over a finished
// conversation.
type Insights struct {
	ConversationLength   int      `json:"conversation_length"`
	UserMessageCount     int      `json:"user_message_count"`
	AgentMessageCount    int      `json:"agent_message_count"`
	AverageMessageLength float64  `json:"average_message_length"`
	ConversationTopics   []string `json:"conversation_topics"`
	EmotionalTone        string   `json:"emotional_tone"`
	ObservationID        uint64   `json:"observation_id"`
}
