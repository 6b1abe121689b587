package memory

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charlotte-agent/charlotte/internal/storage"
	"github.com/charlotte-agent/charlotte/pkg/types"
)

// ContextAssembler builds the per-turn context bundle: recent exchanges,
// semantically similar history, and a one-line topical summary. Read-path
// collaborator failures degrade to an empty bundle; the agent can always
// answer with no context.
type ContextAssembler struct {
	stream   storage.MemoryStreamStore
	embedder *Embedder
	now      func() time.Time

	recentWindow        time.Duration
	recentLimit         int
	historicalLimit     int
	similarityThreshold float64
	backfillBatchSize   int
}

// AssemblerOptions carries the retrieval tunables. Zero values take the
// defaults: a 24 hour recent window, 5 entries per list, a 0.5 similarity
// floor, batches of 50.
type AssemblerOptions struct {
	RecentWindow        time.Duration
	RecentLimit         int
	HistoricalLimit     int
	SimilarityThreshold float64
	BackfillBatchSize   int
}

// NewContextAssembler creates a ContextAssembler over the given memory
// stream and embedder.
func NewContextAssembler(stream storage.MemoryStreamStore, embedder *Embedder, opts AssemblerOptions) *ContextAssembler {
	if opts.RecentWindow == 0 {
		opts.RecentWindow = 24 * time.Hour
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = 5
	}
	if opts.HistoricalLimit <= 0 {
		opts.HistoricalLimit = 5
	}
	if opts.SimilarityThreshold == 0 {
		opts.SimilarityThreshold = 0.5
	}
	if opts.BackfillBatchSize == 0 {
		opts.BackfillBatchSize = 50
	}
	return &ContextAssembler{
		stream:              stream,
		embedder:            embedder,
		now:                 time.Now,
		recentWindow:        opts.RecentWindow,
		recentLimit:         opts.RecentLimit,
		historicalLimit:     opts.HistoricalLimit,
		similarityThreshold: opts.SimilarityThreshold,
		backfillBatchSize:   opts.BackfillBatchSize,
	}
}

// Assemble builds the context bundle for a user message. Recent context is
// the newest records inside the recent window; historical context is every
// record ranked by cosine similarity against the query embedding, keeping
// matches above the threshold. Missing record embeddings are back-filled on
// the fly. A positive limit overrides both configured limits.
func (a *ContextAssembler) Assemble(ctx context.Context, userText string, limit int) types.ContextBundle {
	recentLimit, historicalLimit := a.recentLimit, a.historicalLimit
	if limit > 0 {
		recentLimit, historicalLimit = limit, limit
	}

	var bundle types.ContextBundle

	since := a.now().Add(-a.recentWindow)
	recent, err := a.stream.ListRecentRecords(ctx, since, recentLimit)
	if err != nil {
		log.Printf("context: failed to load recent records: %v", err)
	} else {
		bundle.RecentContext = recent
	}

	bundle.HistoricalContext = a.historical(ctx, userText, historicalLimit)
	bundle.ConversationSummary = a.summarize(bundle.RecentContext, bundle.HistoricalContext)

	return bundle
}

// nearestSearcher is implemented by stores that can order records by vector
// distance on the database side.
type nearestSearcher interface {
	NearestRecords(ctx context.Context, query []float32, limit int) ([]types.MemoryRecord, error)
}

func (a *ContextAssembler) historical(ctx context.Context, userText string, limit int) []types.ScoredRecord {
	queryVec, err := a.embedder.Embed(ctx, userText)
	if err != nil {
		log.Printf("context: query embedding failed: %v", err)
		return nil
	}

	// Stores with a vector index narrow the candidate set server-side.
	// Records stored without an embedding are not indexed; the back-fill
	// pass covers those, so the fast path skips the in-loop back-fill.
	if searcher, ok := a.stream.(nearestSearcher); ok {
		candidates, err := searcher.NearestRecords(ctx, queryVec, limit)
		if err == nil {
			return RankRecords(queryVec, candidates, a.similarityThreshold, limit)
		}
		log.Printf("context: nearest-record search unavailable, scanning: %v", err)
	}

	records, err := a.stream.ListAllRecords(ctx)
	if err != nil {
		log.Printf("context: failed to load records: %v", err)
		return nil
	}

	// Back-fill embeddings for records that predate embedding support.
	// Last write wins; a concurrent back-fill of the same record is harmless.
	for i := range records {
		if len(records[i].Embedding) > 0 {
			continue
		}
		vec, err := a.embedder.Embed(ctx, records[i].Text())
		if err != nil {
			continue
		}
		records[i].Embedding = vec
		if err := a.stream.UpdateRecordEmbedding(ctx, records[i].ID, vec); err != nil {
			log.Printf("context: failed to back-fill embedding for %s: %v", records[i].ID, err)
		}
	}

	return RankRecords(queryVec, records, a.similarityThreshold, limit)
}

// summarize builds the one-sentence topical summary from up to 3 distinct
// topic labels across the bundle's records, falling back to keyword
// extraction when topic tags are absent.
func (a *ContextAssembler) summarize(recent []types.MemoryRecord, historical []types.ScoredRecord) string {
	seen := make(map[string]bool)
	var topics []string

	add := func(label string) {
		label = strings.TrimSpace(label)
		if label == "" || seen[label] || len(topics) >= 3 {
			return
		}
		seen[label] = true
		topics = append(topics, label)
	}

	for _, r := range recent {
		add(r.ConversationTopic)
	}
	for _, sr := range historical {
		add(sr.Record.ConversationTopic)
	}

	if len(topics) < 3 {
		var text strings.Builder
		for _, r := range recent {
			text.WriteString(r.Text())
			text.WriteString(" ")
		}
		for _, sr := range historical {
			text.WriteString(sr.Record.Text())
			text.WriteString(" ")
		}
		for _, kw := range ExtractKeywords(text.String(), 10) {
			add(kw)
		}
	}

	if len(topics) == 0 {
		return ""
	}
	return "Previous discussions about: " + strings.Join(topics, ", ")
}

// FormatForPrompt renders a bundle into the flat text block handed to the
// LLM: recent exchanges, then historical matches, then the summary,
// blank-line separated. A pure transform of the bundle.
func FormatForPrompt(bundle types.ContextBundle) string {
	var blocks []string

	if len(bundle.RecentContext) > 0 {
		var b strings.Builder
		b.WriteString("Recent conversation:\n")
		for _, r := range bundle.RecentContext {
			fmt.Fprintf(&b, "User: %s\nCharlotte: %s\n", r.UserMessage, r.AgentResponse)
		}
		blocks = append(blocks, strings.TrimRight(b.String(), "\n"))
	}

	if len(bundle.HistoricalContext) > 0 {
		var b strings.Builder
		b.WriteString("Relevant past exchanges:\n")
		for _, sr := range bundle.HistoricalContext {
			fmt.Fprintf(&b, "User: %s\nCharlotte: %s\n", sr.Record.UserMessage, sr.Record.AgentResponse)
		}
		blocks = append(blocks, strings.TrimRight(b.String(), "\n"))
	}

	if bundle.ConversationSummary != "" {
		blocks = append(blocks, bundle.ConversationSummary)
	}

	return strings.Join(blocks, "\n\n")
}

// RecordExchange appends one user/agent exchange to the memory stream with
// its embedding. Embedding failure stores the record without one for a
// later back-fill pass.
func (a *ContextAssembler) RecordExchange(ctx context.Context, userText, agentText, topic, emotion string) error {
	record := &types.MemoryRecord{
		UserMessage:       userText,
		AgentResponse:     agentText,
		ConversationTopic: topic,
		EmotionalContext:  emotion,
		ImportanceScore:   0.5,
		IsActive:          true,
		CreatedAt:         a.now(),
	}

	if vec, err := a.embedder.Embed(ctx, record.Text()); err != nil {
		log.Printf("context: embedding failed for new exchange, storing without: %v", err)
	} else {
		record.Embedding = vec
	}

	if err := a.stream.InsertRecord(ctx, record); err != nil {
		return fmt.Errorf("failed to record exchange: %w", err)
	}
	return nil
}

// BackfillEmbeddings scans for records without embeddings, embeds them, and
// writes the vectors back. Per-record failures are logged and skipped.
// Returns the number of records updated.
func (a *ContextAssembler) BackfillEmbeddings(ctx context.Context) (int, error) {
	records, err := a.stream.ListRecordsMissingEmbedding(ctx, a.backfillBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list records missing embeddings: %w", err)
	}

	updated := 0
	for _, r := range records {
		vec, err := a.embedder.Embed(ctx, r.Text())
		if err != nil {
			log.Printf("context: back-fill embedding failed for %s: %v", r.ID, err)
			continue
		}
		if err := a.stream.UpdateRecordEmbedding(ctx, r.ID, vec); err != nil {
			log.Printf("context: back-fill update failed for %s: %v", r.ID, err)
			continue
		}
		updated++
	}

	return updated, nil
}
