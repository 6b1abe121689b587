package memory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlotte-agent/charlotte/pkg/types"
)

// fakeStore composes the in-memory fakes into a full RecordStore.
type fakeStore struct {
	fakeStream
	fakeArchive
	fakeEmotionLog
}

func (f *fakeStore) ListTriggers(context.Context) ([]types.EmotionalTrigger, error) {
	return testTriggers, nil
}

func (f *fakeStore) Close() error { return nil }

type fakeChat struct {
	response string
	err      error
	system   string
	user     string
}

func (f *fakeChat) Chat(_ context.Context, system, user string) (string, error) {
	f.system = system
	f.user = user
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeChat) GetModel() string { return "fake-chat" }

func newTestAgent(store *fakeStore, chat *fakeChat) *Agent {
	return NewAgent(AgentConfig{
		Store:    store,
		Embedder: newFakeEmbedder(&fakeEmbedGen{fixed: []float32{1, 0}}),
		Chat:     chat,
		Persona:  "You are Charlotte.",
		Triggers: testTriggers,
		Baseline: types.EmotionalState{Emotion: types.EmotionHappy, Intensity: 0.7},
	})
}

func TestRespondFullTurn(t *testing.T) {
	store := &fakeStore{}
	chat := &fakeChat{response: "Nice to meet you!\n[EMOTION: excited]\n[INTENSITY: 0.9]"}
	agent := newTestAgent(store, chat)

	reply := agent.Respond(context.Background(), "hello there, I am new", "")

	assert.Equal(t, "Nice to meet you!", reply.Text)
	assert.Equal(t, types.EmotionExcited, reply.Emotion.Emotion)
	assert.InDelta(t, 0.9, reply.Emotion.Intensity, 1e-9)

	// The reported state became the agent's state.
	assert.Equal(t, types.EmotionExcited, agent.CurrentEmotion().Emotion)

	// The exchange landed in the memory stream with the cleaned text.
	require.Len(t, store.fakeStream.records, 1)
	assert.Equal(t, "hello there, I am new", store.fakeStream.records[0].UserMessage)
	assert.Equal(t, "Nice to meet you!", store.fakeStream.records[0].AgentResponse)
	assert.Equal(t, types.EmotionExcited, store.fakeStream.records[0].EmotionalContext)

	// System prompt stacks persona, task, and the emotion instruction.
	assert.True(t, strings.HasPrefix(chat.system, "You are Charlotte."))
	assert.Contains(t, chat.system, defaultTaskPrompt)
	assert.Contains(t, chat.system, "[EMOTION: emotion_name]")
	assert.Equal(t, "hello there, I am new", chat.user)
}

func TestRespondGenerationFailureFallsBack(t *testing.T) {
	store := &fakeStore{}
	chat := &fakeChat{err: errors.New("model down")}
	agent := newTestAgent(store, chat)

	reply := agent.Respond(context.Background(), "hello", "")

	assert.NotEmpty(t, reply.Text)
	assert.Equal(t, types.EmotionNeutral, reply.Emotion.Emotion)
	assert.InDelta(t, 0.5, reply.Emotion.Intensity, 1e-9)
	assert.Empty(t, store.fakeStream.records, "failed generations are not recorded")
}

func TestRespondUsesContextInSystemPrompt(t *testing.T) {
	store := &fakeStore{}
	chat := &fakeChat{response: "Yes, we talked about that.\n[EMOTION: happy]\n[INTENSITY: 0.7]"}
	agent := newTestAgent(store, chat)

	// First turn populates the memory stream.
	agent.Respond(context.Background(), "remember that I like gophers", "")

	// Second turn should carry the first exchange as recent context.
	agent.Respond(context.Background(), "what do I like?", "")
	assert.Contains(t, chat.system, "remember that I like gophers")
}
