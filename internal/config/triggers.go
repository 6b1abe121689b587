package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/charlotte-agent/charlotte/pkg/types"
)

// triggerFile is the YAML document shape for a trigger override file.
type triggerFile struct {
	Triggers []types.EmotionalTrigger `yaml:"triggers"`
}

// DefaultTriggers returns the built-in emotional trigger table. Each entry
// maps a phrase to the emotion it induces, an intensity delta, and a
// confidence score; the trigger with the highest confidence wins when
// several match.
func DefaultTriggers() []types.EmotionalTrigger {
	return []types.EmotionalTrigger{
		{TriggerValue: "thank you", EmotionInduced: types.EmotionHappy, IntensityChange: 0.10, ConfidenceScore: 0.90},
		{TriggerValue: "thanks", EmotionInduced: types.EmotionHappy, IntensityChange: 0.05, ConfidenceScore: 0.70},
		{TriggerValue: "great job", EmotionInduced: types.EmotionExcited, IntensityChange: 0.15, ConfidenceScore: 0.85},
		{TriggerValue: "well done", EmotionInduced: types.EmotionContent, IntensityChange: 0.10, ConfidenceScore: 0.80},
		{TriggerValue: "this is amazing", EmotionInduced: types.EmotionExcited, IntensityChange: 0.20, ConfidenceScore: 0.90},
		{TriggerValue: "i love", EmotionInduced: types.EmotionHappy, IntensityChange: 0.15, ConfidenceScore: 0.75},
		{TriggerValue: "interesting", EmotionInduced: types.EmotionCurious, IntensityChange: 0.10, ConfidenceScore: 0.65},
		{TriggerValue: "tell me more", EmotionInduced: types.EmotionCurious, IntensityChange: 0.10, ConfidenceScore: 0.70},
		{TriggerValue: "help me", EmotionInduced: types.EmotionFocused, IntensityChange: 0.10, ConfidenceScore: 0.70},
		{TriggerValue: "urgent", EmotionInduced: types.EmotionConcerned, IntensityChange: 0.15, ConfidenceScore: 0.80},
		{TriggerValue: "worried", EmotionInduced: types.EmotionEmpathetic, IntensityChange: 0.15, ConfidenceScore: 0.80},
		{TriggerValue: "frustrated", EmotionInduced: types.EmotionEmpathetic, IntensityChange: 0.15, ConfidenceScore: 0.80},
		{TriggerValue: "not working", EmotionInduced: types.EmotionConcerned, IntensityChange: 0.10, ConfidenceScore: 0.70},
		{TriggerValue: "this is wrong", EmotionInduced: types.EmotionThoughtful, IntensityChange: 0.10, ConfidenceScore: 0.70},
		{TriggerValue: "sad", EmotionInduced: types.EmotionEmpathetic, IntensityChange: 0.15, ConfidenceScore: 0.75},
		{TriggerValue: "angry", EmotionInduced: types.EmotionCalm, IntensityChange: 0.10, ConfidenceScore: 0.75},
		{TriggerValue: "goodbye", EmotionInduced: types.EmotionContent, IntensityChange: 0.05, ConfidenceScore: 0.60},
	}
}

// LoadTriggers reads a trigger table from a YAML file. When path is empty the
// built-in defaults are returned.
func LoadTriggers(path string) ([]types.EmotionalTrigger, error) {
	if path == "" {
		return DefaultTriggers(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read triggers file: %w", err)
	}

	var file triggerFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse triggers file: %w", err)
	}

	for i, t := range file.Triggers {
		if t.TriggerValue == "" {
			return nil, fmt.Errorf("trigger %d: trigger value is required", i)
		}
		if !types.IsValidEmotion(t.EmotionInduced) {
			return nil, fmt.Errorf("trigger %q: unknown emotion %q", t.TriggerValue, t.EmotionInduced)
		}
		if t.ConfidenceScore < 0 || t.ConfidenceScore > 1 {
			return nil, fmt.Errorf("trigger %q: confidence score must be in [0, 1]", t.TriggerValue)
		}
	}

	return file.Triggers, nil
}
