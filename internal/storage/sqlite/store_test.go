package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/charlotte-agent/charlotte/internal/storage"
	"github.com/charlotte-agent/charlotte/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := &types.MemoryRecord{
		UserMessage:       "what is a goroutine",
		AgentResponse:     "a lightweight thread managed by the runtime",
		ConversationTopic: "technology",
		EmotionalContext:  "curious",
		ImportanceScore:   0.5,
		IsActive:          true,
		Embedding:         []float32{0.1, 0.2, 0.3},
	}

	if err := store.InsertRecord(ctx, record); err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}
	if record.ID == "" {
		t.Fatal("InsertRecord must assign an ID")
	}

	records, err := store.ListAllRecords(ctx)
	if err != nil {
		t.Fatalf("ListAllRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	got := records[0]
	if got.UserMessage != record.UserMessage || got.AgentResponse != record.AgentResponse {
		t.Errorf("text round trip mismatch: %+v", got)
	}
	if got.ConversationTopic != "technology" || got.EmotionalContext != "curious" {
		t.Errorf("tag round trip mismatch: %+v", got)
	}
	if len(got.Embedding) != 3 {
		t.Errorf("embedding round trip = %v", got.Embedding)
	}
}

func TestListRecentRecordsWindow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	for _, r := range []*types.MemoryRecord{
		{UserMessage: "fresh", AgentResponse: "x", IsActive: true, CreatedAt: now.Add(-2 * time.Hour)},
		{UserMessage: "stale", AgentResponse: "x", IsActive: true, CreatedAt: now.Add(-48 * time.Hour)},
		{UserMessage: "inactive", AgentResponse: "x", IsActive: false, CreatedAt: now.Add(-time.Hour)},
	} {
		if err := store.InsertRecord(ctx, r); err != nil {
			t.Fatalf("InsertRecord: %v", err)
		}
	}

	records, err := store.ListRecentRecords(ctx, now.Add(-24*time.Hour), 10)
	if err != nil {
		t.Fatalf("ListRecentRecords: %v", err)
	}
	if len(records) != 1 || records[0].UserMessage != "fresh" {
		t.Errorf("recent records = %+v, want only the fresh active one", records)
	}
}

func TestEmbeddingBackfillFlow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := &types.MemoryRecord{UserMessage: "no embedding yet", AgentResponse: "x", IsActive: true}
	if err := store.InsertRecord(ctx, record); err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}

	missing, err := store.ListRecordsMissingEmbedding(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecordsMissingEmbedding: %v", err)
	}
	if len(missing) != 1 {
		t.Fatalf("got %d missing, want 1", len(missing))
	}

	if err := store.UpdateRecordEmbedding(ctx, record.ID, []float32{1, 2}); err != nil {
		t.Fatalf("UpdateRecordEmbedding: %v", err)
	}

	missing, err = store.ListRecordsMissingEmbedding(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecordsMissingEmbedding: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("record still reported missing after back-fill")
	}

	if err := store.UpdateRecordEmbedding(ctx, "no-such-id", []float32{1}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("unknown ID err = %v, want ErrNotFound", err)
	}
}

func TestConversationRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	conv := &types.SavedConversation{
		Title: "Generics discussion",
		Turns: []types.Turn{
			{Sender: types.SenderUser, Text: "explain generics", Timestamp: time.Now().UTC().Truncate(time.Second)},
			{Sender: types.SenderAgent, Text: "type parameters allow...", Timestamp: time.Now().UTC().Truncate(time.Second)},
		},
		ConversationType: "technical",
		Topics:           []string{"technology"},
		EmotionalArc:     types.EmotionalArc{Emotions: []string{"neutral"}, OverallTone: "neutral"},
		QualityScore:     0.8,
		IsActive:         true,
		Embedding:        []float32{1, 0},
	}

	if err := store.InsertConversation(ctx, conv); err != nil {
		t.Fatalf("InsertConversation: %v", err)
	}

	got, err := store.GetConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if got.Title != conv.Title || got.ConversationType != "technical" {
		t.Errorf("conversation round trip mismatch: %+v", got)
	}
	if len(got.Turns) != 2 || got.Turns[0].Text != "explain generics" {
		t.Errorf("turns round trip = %+v", got.Turns)
	}
	if got.EmotionalArc.OverallTone != "neutral" {
		t.Errorf("emotional arc round trip = %+v", got.EmotionalArc)
	}

	if _, err := store.GetConversation(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("missing conversation err = %v, want ErrNotFound", err)
	}
}

func TestIncrementUsageCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	conv := &types.SavedConversation{
		Title:    "t",
		Turns:    []types.Turn{{Sender: types.SenderUser, Text: "x", Timestamp: time.Now()}},
		IsActive: true,
	}
	if err := store.InsertConversation(ctx, conv); err != nil {
		t.Fatalf("InsertConversation: %v", err)
	}

	if err := store.IncrementUsageCount(ctx, conv.ID); err != nil {
		t.Fatalf("IncrementUsageCount: %v", err)
	}
	if err := store.IncrementUsageCount(ctx, conv.ID); err != nil {
		t.Fatalf("IncrementUsageCount: %v", err)
	}

	got, err := store.GetConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if got.UsageCount != 2 {
		t.Errorf("usage count = %d, want 2", got.UsageCount)
	}

	if err := store.IncrementUsageCount(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("missing conversation err = %v, want ErrNotFound", err)
	}
}

func TestStateEventLog(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	events := []*types.EmotionalStateEvent{
		{Emotion: "happy", Intensity: 0.7, TransitionFrom: "calm", CreatedAt: time.Now().Add(-2 * time.Minute)},
		{Emotion: "excited", Intensity: 0.8, Trigger: "great job", TransitionFrom: "happy", CreatedAt: time.Now().Add(-time.Minute)},
	}
	for _, e := range events {
		if err := store.AppendStateEvent(ctx, e); err != nil {
			t.Fatalf("AppendStateEvent: %v", err)
		}
	}

	got, err := store.ListRecentStateEvents(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecentStateEvents: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].Emotion != "excited" {
		t.Errorf("events must be newest first, got %q", got[0].Emotion)
	}
	if got[0].Trigger != "great job" {
		t.Errorf("trigger round trip = %q", got[0].Trigger)
	}
	if got[1].Trigger != "" {
		t.Errorf("nullable trigger round trip = %q", got[1].Trigger)
	}
}

func TestSeedAndListTriggers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	triggers := []types.EmotionalTrigger{
		{TriggerValue: "thank you", EmotionInduced: "happy", IntensityChange: 0.1, ConfidenceScore: 0.9},
		{TriggerValue: "urgent", EmotionInduced: "concerned", IntensityChange: 0.15, ConfidenceScore: 0.8},
	}
	if err := store.SeedTriggers(ctx, triggers); err != nil {
		t.Fatalf("SeedTriggers: %v", err)
	}

	got, err := store.ListTriggers(ctx)
	if err != nil {
		t.Fatalf("ListTriggers: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d triggers, want 2", len(got))
	}

	// Seeding again replaces, never appends.
	if err := store.SeedTriggers(ctx, triggers[:1]); err != nil {
		t.Fatalf("SeedTriggers: %v", err)
	}
	got, err = store.ListTriggers(ctx)
	if err != nil {
		t.Fatalf("ListTriggers: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d triggers after re-seed, want 1", len(got))
	}
}
