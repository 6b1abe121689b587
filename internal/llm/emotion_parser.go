package llm

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/charlotte-agent/charlotte/pkg/types"
)

var (
	emotionMarkerRe   = regexp.MustCompile(`(?i)\[EMOTION:\s*(\w+)\]`)
	intensityMarkerRe = regexp.MustCompile(`(?i)\[INTENSITY:\s*([0-9]*\.?[0-9]+)\]`)
	blankRunRe        = regexp.MustCompile(`\n\s*\n`)
)

// EmotionInstruction is appended to every system prompt so the model reports
// its emotional state in a machine-readable trailer. ParseEmotionalState
// reads the same format back out.
const EmotionInstruction = `
IMPORTANT: At the end of your response, include your current emotional state in this exact format:
[EMOTION: emotion_name]
[INTENSITY: 0.0-1.0] The higher the intensity, the more intense the emotion.

For example:
[EMOTION: happy]
[INTENSITY: 0.8]

Valid emotions: happy, excited, content, calm, focused, thoughtful, concerned, worried, sad, frustrated, angry, surprised, curious, enthusiastic, empathetic, neutral`

// ParseEmotionalState extracts the emotion markers from a model response.
// Missing or unrecognized markers fall back to neutral at 0.5 intensity;
// the function never fails. Legacy emotion labels are mapped to the
// canonical vocabulary.
func ParseEmotionalState(response string) types.EmotionalState {
	emotion := types.EmotionNeutral
	if m := emotionMarkerRe.FindStringSubmatch(response); m != nil {
		emotion, _ = types.CanonicalEmotion(strings.ToLower(m[1]))
	}

	intensity := 0.5
	if m := intensityMarkerRe.FindStringSubmatch(response); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			intensity = clampIntensity(v)
		}
	}

	return types.EmotionalState{Emotion: emotion, Intensity: intensity}
}

// StripEmotionalMarkers removes the emotion trailer from a model response
// and tidies up the whitespace left behind. Blank-line runs collapse to a
// single blank line.
func StripEmotionalMarkers(response string) string {
	cleaned := emotionMarkerRe.ReplaceAllString(response, "")
	cleaned = intensityMarkerRe.ReplaceAllString(cleaned, "")
	cleaned = blankRunRe.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
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
