package memory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlotte-agent/charlotte/pkg/types"
)

func TestSaveConversationEmptyTurns(t *testing.T) {
	archive := &fakeArchive{}
	store := NewConversationStore(archive, newFakeEmbedder(&fakeEmbedGen{fixed: []float32{1, 0}}))

	_, err := store.SaveConversation(context.Background(), nil, SaveOptions{})
	require.ErrorIs(t, err, ErrEmptyConversation)
	assert.Empty(t, archive.conversations, "nothing may be written for an empty conversation")
}

func TestSaveConversationDerivesClassification(t *testing.T) {
	archive := &fakeArchive{}
	store := NewConversationStore(archive, newFakeEmbedder(&fakeEmbedGen{fixed: []float32{1, 0}}))

	turns := []types.Turn{
		userTurn("I want to discuss my research methodology for the new study"),
		agentTurn("That sounds like a wonderful research topic, tell me more"),
		userTurn("The analysis covers machine learning systems"),
		agentTurn("Great, let us dig deeper into the methodology and the analysis plan"),
	}

	id, err := store.SaveConversation(context.Background(), turns, SaveOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.Len(t, archive.conversations, 1)
	saved := archive.conversations[0]
	assert.Equal(t, TypeAcademic, saved.ConversationType)
	assert.Contains(t, saved.Topics, "research")
	assert.Equal(t, "I want to discuss my", saved.Title)
	assert.True(t, saved.IsActive)
	assert.NotEmpty(t, saved.Embedding)
	assert.InDelta(t, 1.0, saved.QualityScore, 1e-9)
}

func TestSaveConversationTitleTruncation(t *testing.T) {
	archive := &fakeArchive{}
	store := NewConversationStore(archive, newFakeEmbedder(&fakeEmbedGen{fixed: []float32{1, 0}}))

	turns := []types.Turn{
		userTurn("Supercalifragilistic considerations regarding the implementation of extraordinarily verbose titles"),
	}

	_, err := store.SaveConversation(context.Background(), turns, SaveOptions{})
	require.NoError(t, err)

	title := archive.conversations[0].Title
	assert.LessOrEqual(t, len(title), 50)
	assert.True(t, len(title) < 50 || title[len(title)-3:] == "...")
}

func TestSaveConversationTitleMultibyte(t *testing.T) {
	archive := &fakeArchive{}
	store := NewConversationStore(archive, newFakeEmbedder(&fakeEmbedGen{fixed: []float32{1, 0}}))

	turns := []types.Turn{
		userTurn("überverlängerte übergangsregelungen größenordnungsmäßig außergewöhnliche übereinstimmungen"),
	}

	_, err := store.SaveConversation(context.Background(), turns, SaveOptions{})
	require.NoError(t, err)

	title := archive.conversations[0].Title
	assert.True(t, utf8.ValidString(title), "truncation must not split a rune")
	assert.Equal(t, 50, utf8.RuneCountInString(title))
	assert.True(t, strings.HasPrefix(title, "Überverlängerte"))
	assert.True(t, strings.HasSuffix(title, "..."))
}

func TestSaveConversationEmbeddingFailureDegrades(t *testing.T) {
	archive := &fakeArchive{}
	store := NewConversationStore(archive, newFakeEmbedder(&fakeEmbedGen{err: errors.New("backend down")}))

	_, err := store.SaveConversation(context.Background(), []types.Turn{userTurn("hello world out there")}, SaveOptions{})
	require.NoError(t, err, "embedding failure must not block the save")
	require.Len(t, archive.conversations, 1)
	assert.Nil(t, archive.conversations[0].Embedding)
}

func TestSaveConversationStorageFailure(t *testing.T) {
	archive := &fakeArchive{insertErr: errors.New("disk full")}
	store := NewConversationStore(archive, newFakeEmbedder(&fakeEmbedGen{fixed: []float32{1, 0}}))

	_, err := store.SaveConversation(context.Background(), []types.Turn{userTurn("hello world out there")}, SaveOptions{})
	require.ErrorIs(t, err, ErrSaveFailed)
}

func TestSaveConversationExplicitOptions(t *testing.T) {
	archive := &fakeArchive{}
	store := NewConversationStore(archive, newFakeEmbedder(&fakeEmbedGen{fixed: []float32{1, 0}}))

	_, err := store.SaveConversation(context.Background(), []types.Turn{userTurn("hello world out there")}, SaveOptions{
		Title:        "Custom title",
		Description:  "A description",
		QualityScore: 0.8,
	})
	require.NoError(t, err)

	saved := archive.conversations[0]
	assert.Equal(t, "Custom title", saved.Title)
	assert.Equal(t, "A description", saved.Description)
	assert.Equal(t, 0.8, saved.QualityScore)
}

func TestFindRelevantRanksByScore(t *testing.T) {
	now := time.Now()
	gen := &fakeEmbedGen{
		vectors: map[string][]float32{"query text": {1, 0}},
		fixed:   []float32{1, 0},
	}

	archive := &fakeArchive{conversations: []types.SavedConversation{
		{ID: "old-weak", Embedding: []float32{0.3, 1}, QualityScore: 0.2, IsActive: true,
			Turns: []types.Turn{{Sender: types.SenderUser, Text: "x", Timestamp: now.Add(-72 * time.Hour)}}},
		{ID: "recent-strong", Embedding: []float32{1, 0.05}, QualityScore: 0.9, IsActive: true,
			Turns: []types.Turn{{Sender: types.SenderUser, Text: "x", Timestamp: now.Add(-time.Hour)}}},
	}}

	store := NewConversationStore(archive, newFakeEmbedder(gen))
	results := store.FindRelevant(context.Background(), "query text", 3)

	require.NotEmpty(t, results)
	assert.Equal(t, "recent-strong", results[0].Conversation.ID)
}

func TestFindRelevantDegradesToEmpty(t *testing.T) {
	store := NewConversationStore(&fakeArchive{listErr: errors.New("db down")},
		newFakeEmbedder(&fakeEmbedGen{fixed: []float32{1, 0}}))

	results := store.FindRelevant(context.Background(), "anything", 3)
	assert.Empty(t, results, "collaborator failure degrades to an empty result")

	store = NewConversationStore(&fakeArchive{}, newFakeEmbedder(&fakeEmbedGen{err: errors.New("embed down")}))
	results = store.FindRelevant(context.Background(), "anything", 3)
	assert.Empty(t, results)
}

func TestConversationBackfillEmbeddings(t *testing.T) {
	archive := &fakeArchive{conversations: []types.SavedConversation{
		{ID: "has-vec", IsActive: true, Embedding: []float32{1, 0},
			Turns: []types.Turn{userTurn("already embedded")}},
		{ID: "missing", IsActive: true,
			Turns: []types.Turn{userTurn("needs a vector")}},
	}}
	store := NewConversationStore(archive, newFakeEmbedder(&fakeEmbedGen{fixed: []float32{0, 1}}))

	updated, err := store.BackfillEmbeddings(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	conv, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1}, conv.Embedding)
}

func TestRecordUsageSwallowsErrors(t *testing.T) {
	archive := &fakeArchive{usageErr: errors.New("db down")}
	store := NewConversationStore(archive, newFakeEmbedder(&fakeEmbedGen{fixed: []float32{1, 0}}))

	store.RecordUsage(context.Background(), "conv-1") // must not panic or propagate
	assert.Equal(t, []string{"conv-1"}, archive.usageCalls)
}
