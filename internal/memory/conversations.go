package memory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/charlotte-agent/charlotte/internal/storage"
	"github.com/charlotte-agent/charlotte/pkg/types"
)

var (
	// ErrEmptyConversation is returned when a save is attempted with no turns.
	ErrEmptyConversation = errors.New("conversation has no turns")

	// ErrSaveFailed is returned when the persistence collaborator reports
	// that no row was written.
	ErrSaveFailed = errors.New("failed to save conversation")
)

// SaveOptions carries the optional fields of a conversation save. Zero
// values mean "derive it": the title comes from the first substantial user
// turn and the quality score from the classifier.
type SaveOptions struct {
	Title        string
	Description  string
	QualityScore float64 // 0 means use the classifier's score
}

// ConversationStore saves whole sessions and retrieves the ones relevant to
// a query. Classification is derived at save time and never recomputed.
type ConversationStore struct {
	archive  storage.ConversationArchive
	embedder *Embedder
	now      func() time.Time
}

// NewConversationStore creates a ConversationStore over the given archive
// and embedder.
func NewConversationStore(archive storage.ConversationArchive, embedder *Embedder) *ConversationStore {
	return &ConversationStore{
		archive:  archive,
		embedder: embedder,
		now:      time.Now,
	}
}

// SaveConversation classifies and persists a session, returning the new
// conversation ID. Empty turns fail before any write. A failed embedding
// degrades to a conversation without one; a write that lands no row is a
// save failure.
func (s *ConversationStore) SaveConversation(ctx context.Context, turns []types.Turn, opts SaveOptions) (string, error) {
	if len(turns) == 0 {
		return "", ErrEmptyConversation
	}

	title := opts.Title
	if title == "" {
		title = generateTitle(turns, s.now())
	}

	quality := opts.QualityScore
	if quality == 0 {
		quality = QualityScore(turns)
	}

	conv := &types.SavedConversation{
		Title:            title,
		Description:      opts.Description,
		Turns:            turns,
		ConversationType: ClassifyType(turns),
		Topics:           ExtractTopics(turns),
		EmotionalArc:     ExtractEmotionalArc(turns),
		QualityScore:     quality,
		IsActive:         true,
		CreatedAt:        s.now(),
	}

	if embedding, err := s.embedder.Embed(ctx, joinTurnText(turns)); err != nil {
		log.Printf("conversations: embedding failed for save, storing without: %v", err)
	} else {
		conv.Embedding = embedding
	}

	if err := s.archive.InsertConversation(ctx, conv); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	return conv.ID, nil
}

// FindRelevant embeds the query and ranks all active saved conversations by
// similarity with quality and recency boosts, returning the top limit. An
// empty store or a failed collaborator degrades to an empty result.
func (s *ConversationStore) FindRelevant(ctx context.Context, query string, limit int) []types.ScoredConversation {
	if limit <= 0 {
		limit = 3
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("conversations: query embedding failed: %v", err)
		return nil
	}

	conversations, err := s.archive.ListActiveConversations(ctx)
	if err != nil {
		log.Printf("conversations: failed to list conversations: %v", err)
		return nil
	}

	return RankConversations(queryVec, conversations, limit, s.now())
}

// Get loads one saved conversation by ID.
func (s *ConversationStore) Get(ctx context.Context, id string) (*types.SavedConversation, error) {
	return s.archive.GetConversation(ctx, id)
}

// BackfillEmbeddings embeds saved conversations stored without a vector and
// writes the vectors back. Per-conversation failures are logged and
// skipped. Returns the number of conversations updated.
func (s *ConversationStore) BackfillEmbeddings(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 50
	}

	conversations, err := s.archive.ListConversationsMissingEmbedding(ctx, batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list conversations missing embeddings: %w", err)
	}

	updated := 0
	for _, c := range conversations {
		vec, err := s.embedder.Embed(ctx, joinTurnText(c.Turns))
		if err != nil {
			log.Printf("conversations: back-fill embedding failed for %s: %v", c.ID, err)
			continue
		}
		if err := s.archive.UpdateConversationEmbedding(ctx, c.ID, vec); err != nil {
			log.Printf("conversations: back-fill update failed for %s: %v", c.ID, err)
			continue
		}
		updated++
	}

	return updated, nil
}

// RecordUsage bumps a conversation's usage counter after it contributed to
// context. Failures are logged and swallowed; usage accounting never blocks
// a response.
func (s *ConversationStore) RecordUsage(ctx context.Context, id string) {
	if err := s.archive.IncrementUsageCount(ctx, id); err != nil {
		log.Printf("conversations: failed to record usage for %s: %v", id, err)
	}
}

// generateTitle derives a title from the first user turn longer than 10
// characters: its first five words, capitalized, truncated to 50 characters
// with an ellipsis. Falls back to a timestamped title.
func generateTitle(turns []types.Turn, now time.Time) string {
	for _, t := range turns {
		if t.Sender != types.SenderUser || len(t.Text) <= 10 {
			continue
		}
		words := strings.Fields(t.Text)
		if len(words) > 5 {
			words = words[:5]
		}
		title := capitalize(strings.Join(words, " "))
		if runes := []rune(title); len(runes) > 50 {
			title = string(runes[:47]) + "..."
		}
		return title
	}

	return "Conversation " + now.Format("2006-01-02 15:04")
}

// capitalize uppercases the first letter and lowercases the rest, matching
// sentence-style titles.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
