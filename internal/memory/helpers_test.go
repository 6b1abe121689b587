package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charlotte-agent/charlotte/pkg/types"
)

// fakeEmbedder returns a fixed vector per input text, or fails.
type fakeEmbedGen struct {
	vectors map[string][]float32
	fixed   []float32
	err     error
	calls   int
}

func (f *fakeEmbedGen) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return f.fixed, nil
}

func (f *fakeEmbedGen) GetModel() string { return "fake-embed" }

func newFakeEmbedder(gen *fakeEmbedGen) *Embedder {
	return NewEmbedderForGenerator(gen, 0, 0)
}

// fakeStream is an in-memory MemoryStreamStore.
type fakeStream struct {
	records []types.MemoryRecord
	listErr error
	nextID  int
}

func (f *fakeStream) InsertRecord(_ context.Context, r *types.MemoryRecord) error {
	if r.ID == "" {
		f.nextID++
		r.ID = fmt.Sprintf("rec-%d", f.nextID)
	}
	f.records = append(f.records, *r)
	return nil
}

func (f *fakeStream) ListRecentRecords(_ context.Context, since time.Time, limit int) ([]types.MemoryRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []types.MemoryRecord
	for _, r := range f.records {
		if r.IsActive && r.CreatedAt.After(since) {
			out = append(out, r)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStream) ListAllRecords(_ context.Context) ([]types.MemoryRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]types.MemoryRecord, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeStream) UpdateRecordEmbedding(_ context.Context, id string, embedding []float32) error {
	for i := range f.records {
		if f.records[i].ID == id {
			f.records[i].Embedding = embedding
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeStream) ListRecordsMissingEmbedding(_ context.Context, limit int) ([]types.MemoryRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []types.MemoryRecord
	for _, r := range f.records {
		if r.IsActive && len(r.Embedding) == 0 {
			out = append(out, r)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeArchive is an in-memory ConversationArchive.
type fakeArchive struct {
	conversations []types.SavedConversation
	insertErr     error
	listErr       error
	usageErr      error
	usageCalls    []string
}

func (f *fakeArchive) InsertConversation(_ context.Context, c *types.SavedConversation) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if c.ID == "" {
		c.ID = "conv-1"
	}
	f.conversations = append(f.conversations, *c)
	return nil
}

func (f *fakeArchive) GetConversation(_ context.Context, id string) (*types.SavedConversation, error) {
	for i := range f.conversations {
		if f.conversations[i].ID == id {
			c := f.conversations[i]
			return &c, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeArchive) ListActiveConversations(_ context.Context) ([]types.SavedConversation, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]types.SavedConversation, len(f.conversations))
	copy(out, f.conversations)
	return out, nil
}

func (f *fakeArchive) IncrementUsageCount(_ context.Context, id string) error {
	f.usageCalls = append(f.usageCalls, id)
	return f.usageErr
}

func (f *fakeArchive) UpdateConversationEmbedding(_ context.Context, id string, embedding []float32) error {
	for i := range f.conversations {
		if f.conversations[i].ID == id {
			f.conversations[i].Embedding = embedding
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeArchive) ListConversationsMissingEmbedding(_ context.Context, limit int) ([]types.SavedConversation, error) {
	var out []types.SavedConversation
	for _, c := range f.conversations {
		if c.IsActive && len(c.Embedding) == 0 {
			out = append(out, c)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeEmotionLog is an in-memory EmotionLog.
type fakeEmotionLog struct {
	events    []types.EmotionalStateEvent
	appendErr error
	listErr   error
}

func (f *fakeEmotionLog) AppendStateEvent(_ context.Context, e *types.EmotionalStateEvent) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.events = append(f.events, *e)
	return nil
}

func (f *fakeEmotionLog) ListRecentStateEvents(_ context.Context, limit int) ([]types.EmotionalStateEvent, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]types.EmotionalStateEvent, len(f.events))
	copy(out, f.events)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func userTurn(text string) types.Turn {
	return types.Turn{Sender: types.SenderUser, Text: text, Timestamp: time.Now()}
}

func agentTurn(text string) types.Turn {
	return types.Turn{Sender: types.SenderAgent, Text: text, Timestamp: time.Now()}
}
