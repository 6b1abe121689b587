package types

import "time"

// Canonical emotion vocabulary. This is the label set the generation prompt
// instructs the model with, and the only set the core ever stores going
// forward. Grouped by valence for tone mapping.
const (
	EmotionHappy        = "happy"
	EmotionExcited      = "excited"
	EmotionContent      = "content"
	EmotionCalm         = "calm"
	EmotionFocused      = "focused"
	EmotionThoughtful   = "thoughtful"
	EmotionConcerned    = "concerned"
	EmotionWorried      = "worried"
	EmotionSad          = "sad"
	EmotionFrustrated   = "frustrated"
	EmotionAngry        = "angry"
	EmotionSurprised    = "surprised"
	EmotionCurious      = "curious"
	EmotionEnthusiastic = "enthusiastic"
	EmotionEmpathetic   = "empathetic"
	EmotionNeutral      = "neutral"
)

// ValidEmotions contains every label in the canonical vocabulary, in
// declaration order.
var ValidEmotions = []string{
	EmotionHappy,
	EmotionExcited,
	EmotionContent,
	EmotionCalm,
	EmotionFocused,
	EmotionThoughtful,
	EmotionConcerned,
	EmotionWorried,
	EmotionSad,
	EmotionFrustrated,
	EmotionAngry,
	EmotionSurprised,
	EmotionCurious,
	EmotionEnthusiastic,
	EmotionEmpathetic,
	EmotionNeutral,
}

// LegacyEmotionAliases maps labels from the earlier, incompatible vocabulary
// onto the canonical one. Retained because previously stored emotion tags
// can still carry these labels; new writes never use them.
var LegacyEmotionAliases = map[string]string{
	"joyful":        EmotionHappy,
	"cheerful":      EmotionHappy,
	"delighted":     EmotionExcited,
	"pleased":       EmotionContent,
	"satisfied":     EmotionContent,
	"relaxed":       EmotionCalm,
	"pensive":       EmotionThoughtful,
	"contemplative": EmotionThoughtful,
	"anxious":       EmotionWorried,
	"nervous":       EmotionWorried,
	"unhappy":       EmotionSad,
	"melancholy":    EmotionSad,
	"annoyed":       EmotionFrustrated,
	"irritated":     EmotionFrustrated,
	"furious":       EmotionAngry,
	"astonished":    EmotionSurprised,
	"interested":    EmotionCurious,
	"eager":         EmotionEnthusiastic,
	"caring":        EmotionEmpathetic,
}

// IsValidEmotion reports whether the label is in the canonical vocabulary.
func IsValidEmotion(emotion string) bool {
	for _, e := range ValidEmotions {
		if e == emotion {
			return true
		}
	}
	return false
}

// CanonicalEmotion maps a label through the legacy alias table, then
// validates it against the canonical vocabulary. Unknown labels fall back
// to neutral. The second return value reports whether the input was
// recognized (directly or via an alias).
func CanonicalEmotion(emotion string) (string, bool) {
	if mapped, ok := LegacyEmotionAliases[emotion]; ok {
		return mapped, true
	}
	if IsValidEmotion(emotion) {
		return emotion, true
	}
	return EmotionNeutral, false
}

// Tone labels for emotional valence.
const (
	TonePositive = "positive"
	ToneNegative = "negative"
	ToneNeutral  = "neutral"
)

var positiveEmotions = map[string]bool{
	EmotionHappy:        true,
	EmotionExcited:      true,
	EmotionContent:      true,
	EmotionEnthusiastic: true,
	EmotionEmpathetic:   true,
}

var negativeEmotions = map[string]bool{
	EmotionSad:        true,
	EmotionAngry:      true,
	EmotionFrustrated: true,
	EmotionWorried:    true,
	EmotionConcerned:  true,
}

// EmotionTone maps an emotion label to its valence. Anything not explicitly
// positive or negative (calm, focused, thoughtful, surprised, curious,
// neutral) reads as neutral.
func EmotionTone(emotion string) string {
	switch {
	case positiveEmotions[emotion]:
		return TonePositive
	case negativeEmotions[emotion]:
		return ToneNegative
	default:
		return ToneNeutral
	}
}

// EmotionalState is the agent's current emotion and how strongly it is felt.
// Exactly one live instance exists per agent; callers only ever see copies.
type EmotionalState struct {
	Emotion   string  `json:"emotion"`
	Intensity float64 `json:"intensity"` // 0.0-1.0
}

// EmotionalStateEvent is one immutable entry in the emotional history log,
// appended on every state transition.
type EmotionalStateEvent struct {
	ID                  string    `json:"id"`
	Emotion             string    `json:"emotion"`
	Intensity           float64   `json:"intensity"`
	Trigger             string    `json:"trigger,omitempty"` // empty when decay-only
	TransitionFrom      string    `json:"transition_from"`
	ConversationContext string    `json:"conversation_context,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// EmotionalTrigger is a read-only reference rule: when TriggerValue appears
// in recent conversation text, the trigger pushes the state toward
// EmotionInduced with the given intensity delta. ConfidenceScore decides
// which trigger wins when several match.
type EmotionalTrigger struct {
	TriggerValue    string  `json:"trigger_value" yaml:"trigger"`
	EmotionInduced  string  `json:"emotion_induced" yaml:"emotion"`
	IntensityChange float64 `json:"intensity_change" yaml:"intensity_change"`
	ConfidenceScore float64 `json:"confidence_score" yaml:"confidence"` // 0.0-1.0
}
