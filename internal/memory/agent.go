package memory

import (
	"context"
	"log"
	"strings"

	"github.com/charlotte-agent/charlotte/internal/llm"
	"github.com/charlotte-agent/charlotte/internal/storage"
	"github.com/charlotte-agent/charlotte/pkg/types"
)

// defaultTaskPrompt is used when the caller gives no task definition.
const defaultTaskPrompt = "You are a helpful assistant."

// Reply is the result of one agent turn: the cleaned response text and the
// emotional state the model reported alongside it.
type Reply struct {
	Text    string
	Emotion types.EmotionalState
}

// Agent composes the memory components behind one facade: context assembly,
// conversation archival, the emotion engine, and the chat model.
type Agent struct {
	Conversations *ConversationStore
	Context       *ContextAssembler
	Emotions      *EmotionEngine
	Observer      *Observer

	chat    llm.ChatCompleter
	persona string
}

// AgentConfig wires an Agent from its collaborators.
type AgentConfig struct {
	Store    storage.RecordStore
	Embedder *Embedder
	Chat     llm.ChatCompleter
	Persona  string
	Triggers []types.EmotionalTrigger
	Baseline types.EmotionalState
	Options  AssemblerOptions
}

// NewAgent builds an Agent over a record store, an embedder, and a chat
// completer.
func NewAgent(cfg AgentConfig) *Agent {
	return &Agent{
		Conversations: NewConversationStore(cfg.Store, cfg.Embedder),
		Context:       NewContextAssembler(cfg.Store, cfg.Embedder, cfg.Options),
		Emotions:      NewEmotionEngine(cfg.Store, cfg.Triggers, cfg.Baseline),
		Observer:      NewObserver(),
		chat:          cfg.Chat,
		persona:       cfg.Persona,
	}
}

// Respond runs one full agent turn: assemble memory context, build the
// system prompt, call the model, parse and strip the emotion trailer,
// commit the reported state, and record the exchange. A failed generation
// degrades to a fallback reply at neutral intensity; memory write failures
// are logged and never block the reply.
func (a *Agent) Respond(ctx context.Context, userText, taskPrompt string) Reply {
	if taskPrompt == "" {
		taskPrompt = defaultTaskPrompt
	}

	bundle := a.Context.Assemble(ctx, userText, 0)
	system := a.buildSystemPrompt(bundle, taskPrompt)

	raw, err := a.chat.Chat(ctx, system, userText)
	if err != nil {
		log.Printf("agent: generation failed: %v", err)
		return Reply{
			Text:    "I'm having trouble forming a response right now. Could you try again?",
			Emotion: types.EmotionalState{Emotion: types.EmotionNeutral, Intensity: 0.5},
		}
	}

	state := llm.ParseEmotionalState(raw)
	text := llm.StripEmotionalMarkers(raw)

	a.Emotions.Set(ctx, state)

	if err := a.Context.RecordExchange(ctx, userText, text, "general", state.Emotion); err != nil {
		log.Printf("agent: failed to record exchange: %v", err)
	}

	return Reply{Text: text, Emotion: state}
}

// buildSystemPrompt stacks persona, memory context, task definition, and
// the emotion trailer instruction, blank-line separated.
func (a *Agent) buildSystemPrompt(bundle types.ContextBundle, taskPrompt string) string {
	var parts []string
	if a.persona != "" {
		parts = append(parts, a.persona)
	}
	if contextBlock := FormatForPrompt(bundle); contextBlock != "" {
		parts = append(parts, contextBlock)
	}
	parts = append(parts, taskPrompt)

	return strings.Join(parts, "\n\n") + "\n" + llm.EmotionInstruction
}

// UpdateEmotion runs the trigger-based state transition over recent turns.
func (a *Agent) UpdateEmotion(ctx context.Context, recentTurns []types.Turn) types.EmotionalState {
	return a.Emotions.Update(ctx, recentTurns)
}

// CurrentEmotion returns a snapshot of the agent's emotional state.
func (a *Agent) CurrentEmotion() types.EmotionalState {
	return a.Emotions.Current()
}

// Observe aggregates statistics over a finished conversation.
func (a *Agent) Observe(turns []types.Turn) types.Insights {
	return a.Observer.Observe(turns)
}
