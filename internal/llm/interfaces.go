package llm

import "context"

// ChatCompleter is the interface for LLM chat completion. The agent sends a
// system prompt (persona, memory context, emotion instructions) and the
// user's message as separate roles.
type ChatCompleter interface {
	Chat(ctx context.Context, system, user string) (string, error)
	GetModel() string
}

// EmbeddingGenerator is the interface for generating vector embeddings.
// A failed call returns an error, never an empty vector.
type EmbeddingGenerator interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	GetModel() string
}
