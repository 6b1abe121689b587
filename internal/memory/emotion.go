package memory

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/charlotte-agent/charlotte/internal/storage"
	"github.com/charlotte-agent/charlotte/pkg/types"
)

// decayFloor is the lowest intensity decay can reach; the agent never goes
// fully flat.
const (
	decayFloor  = 0.3
	decayFactor = 0.95
)

// EmotionEngine owns the agent's single emotional state. Updates are
// serialized through a mutex; readers get snapshot copies. State
// transitions are appended to the emotion log, but a failed append never
// loses the in-memory transition.
type EmotionEngine struct {
	mu    sync.Mutex
	state types.EmotionalState

	baseline types.EmotionalState
	logStore storage.EmotionLog
	triggers []types.EmotionalTrigger
	now      func() time.Time
}

// NewEmotionEngine creates an engine with the given baseline state and
// trigger table. The trigger slice is not copied; callers must not mutate
// it afterwards.
func NewEmotionEngine(logStore storage.EmotionLog, triggers []types.EmotionalTrigger, baseline types.EmotionalState) *EmotionEngine {
	if baseline.Emotion == "" {
		baseline = types.EmotionalState{Emotion: types.EmotionHappy, Intensity: 0.7}
	}
	return &EmotionEngine{
		state:    baseline,
		baseline: baseline,
		logStore: logStore,
		triggers: triggers,
		now:      time.Now,
	}
}

// Update scans the recent turns for emotional triggers and transitions the
// state. The strongest matching trigger (by confidence) sets the new
// emotion and shifts intensity by its delta; with no match the emotion
// returns to the baseline and intensity decays toward the floor.
func (e *EmotionEngine) Update(ctx context.Context, recentTurns []types.Turn) types.EmotionalState {
	e.mu.Lock()
	defer e.mu.Unlock()

	prior := e.state
	trigger := e.strongestTrigger(recentTurns)

	next := prior
	if trigger != nil {
		if trigger.EmotionInduced != "" {
			next.Emotion = trigger.EmotionInduced
		}
		next.Intensity = clampIntensity(prior.Intensity + trigger.IntensityChange)
	} else {
		next.Emotion = e.baseline.Emotion
		next.Intensity = prior.Intensity * decayFactor
		if next.Intensity < decayFloor {
			next.Intensity = decayFloor
		}
	}

	e.state = next
	e.appendEvent(ctx, prior, next, trigger, recentTurns)

	return next
}

// Current returns a snapshot of the emotional state.
func (e *EmotionEngine) Current() types.EmotionalState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Set replaces the state outright, used when the model reports its own
// emotion through response markers. Still logged as a transition.
func (e *EmotionEngine) Set(ctx context.Context, state types.EmotionalState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	prior := e.state
	state.Intensity = clampIntensity(state.Intensity)
	if emotion, ok := types.CanonicalEmotion(state.Emotion); ok {
		state.Emotion = emotion
	} else {
		state.Emotion = types.EmotionNeutral
	}

	e.state = state
	e.appendEvent(ctx, prior, state, nil, nil)
}

// History returns the most recent state transition events, newest first.
// A failed collaborator degrades to an empty history.
func (e *EmotionEngine) History(ctx context.Context, limit int) []types.EmotionalStateEvent {
	events, err := e.logStore.ListRecentStateEvents(ctx, limit)
	if err != nil {
		log.Printf("emotion: failed to load state history: %v", err)
		return nil
	}
	return events
}

// Tone maps the current emotion to positive, negative, or neutral.
func (e *EmotionEngine) Tone() string {
	return types.EmotionTone(e.Current().Emotion)
}

// strongestTrigger returns the matching trigger with the highest confidence
// score, or nil when nothing in the turns matches. Matching is substring,
// case-insensitive.
func (e *EmotionEngine) strongestTrigger(turns []types.Turn) *types.EmotionalTrigger {
	text := joinTurnText(turns)
	if text == "" {
		return nil
	}

	var best *types.EmotionalTrigger
	for i := range e.triggers {
		t := &e.triggers[i]
		if !strings.Contains(text, strings.ToLower(t.TriggerValue)) {
			continue
		}
		if best == nil || t.ConfidenceScore > best.ConfidenceScore {
			best = t
		}
	}
	return best
}

func (e *EmotionEngine) appendEvent(ctx context.Context, prior, next types.EmotionalState, trigger *types.EmotionalTrigger, turns []types.Turn) {
	event := &types.EmotionalStateEvent{
		Emotion:        next.Emotion,
		Intensity:      next.Intensity,
		TransitionFrom: prior.Emotion,
		CreatedAt:      e.now(),
	}
	if trigger != nil {
		event.Trigger = trigger.TriggerValue
	}
	if len(turns) > 0 {
		event.ConversationContext = turns[len(turns)-1].Text
	}

	if err := e.logStore.AppendStateEvent(ctx, event); err != nil {
		log.Printf("emotion: failed to append state event: %v", err)
	}
}

func clampIntensity(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
