package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/charlotte-agent/charlotte/pkg/types"
)

func TestParseEmotionalState(t *testing.T) {
	tests := []struct {
		name          string
		response      string
		wantEmotion   string
		wantIntensity float64
	}{
		{
			name:          "both markers",
			response:      "Glad to help!\n[EMOTION: excited]\n[INTENSITY: 0.8]",
			wantEmotion:   types.EmotionExcited,
			wantIntensity: 0.8,
		},
		{
			name:          "case insensitive markers",
			response:      "Sure.\n[emotion: Curious]\n[intensity: 0.6]",
			wantEmotion:   types.EmotionCurious,
			wantIntensity: 0.6,
		},
		{
			name:          "extra whitespace",
			response:      "Done.\n[EMOTION:   thoughtful]\n[INTENSITY:   0.55]",
			wantEmotion:   types.EmotionThoughtful,
			wantIntensity: 0.55,
		},
		{
			name:          "no markers",
			response:      "Just a plain reply.",
			wantEmotion:   types.EmotionNeutral,
			wantIntensity: 0.5,
		},
		{
			name:          "unknown emotion falls back to neutral",
			response:      "[EMOTION: bamboozled]\n[INTENSITY: 0.9]",
			wantEmotion:   types.EmotionNeutral,
			wantIntensity: 0.9,
		},
		{
			name:          "legacy alias maps to canonical label",
			response:      "[EMOTION: joyful]\n[INTENSITY: 0.7]",
			wantEmotion:   types.EmotionHappy,
			wantIntensity: 0.7,
		},
		{
			name:          "intensity clamped to 1",
			response:      "[EMOTION: happy]\n[INTENSITY: 3.5]",
			wantEmotion:   types.EmotionHappy,
			wantIntensity: 1.0,
		},
		{
			name:          "emotion only",
			response:      "[EMOTION: calm]",
			wantEmotion:   types.EmotionCalm,
			wantIntensity: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := ParseEmotionalState(tt.response)
			assert.Equal(t, tt.wantEmotion, state.Emotion)
			assert.InDelta(t, tt.wantIntensity, state.Intensity, 1e-9)
		})
	}
}

func TestStripEmotionalMarkers(t *testing.T) {
	in := "Here is my answer.\n\n[EMOTION: happy]\n[INTENSITY: 0.8]"
	assert.Equal(t, "Here is my answer.", StripEmotionalMarkers(in))
}

func TestStripEmotionalMarkersCollapsesBlankRuns(t *testing.T) {
	in := "First paragraph.\n\n[EMOTION: happy]\n\n\nSecond paragraph.\n[INTENSITY: 0.8]"
	assert.Equal(t, "First paragraph.\n\nSecond paragraph.", StripEmotionalMarkers(in))
}

func TestStripEmotionalMarkersNoMarkers(t *testing.T) {
	assert.Equal(t, "Plain text.", StripEmotionalMarkers("  Plain text.  "))
}
