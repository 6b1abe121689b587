package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlotte-agent/charlotte/pkg/types"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "Charlotte", cfg.Agent.Name)
	assert.Equal(t, "sqlite", cfg.Storage.StorageEngine)
	assert.Equal(t, "./data", cfg.Storage.DataPath)
	assert.Equal(t, "ollama", cfg.LLM.LLMProvider)
	assert.Equal(t, "http://localhost:11434", cfg.LLM.OllamaURL)
	assert.Equal(t, 768, cfg.LLM.EmbeddingDimension)
	assert.Equal(t, 24, cfg.Memory.RecentWindowHours)
	assert.Equal(t, 0.5, cfg.Memory.SimilarityThreshold)
	assert.Equal(t, "happy", cfg.Emotion.DefaultEmotion)
	assert.Equal(t, 0.7, cfg.Emotion.DefaultIntensity)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("CHARLOTTE_STORAGE_ENGINE", "postgres")
	t.Setenv("CHARLOTTE_LLM_PROVIDER", "openai")
	t.Setenv("CHARLOTTE_EMBEDDING_DIMENSION", "1536")
	t.Setenv("CHARLOTTE_SIMILARITY_THRESHOLD", "0.65")
	t.Setenv("CHARLOTTE_DEFAULT_EMOTION", "calm")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Storage.StorageEngine)
	assert.Equal(t, "openai", cfg.LLM.LLMProvider)
	assert.Equal(t, 1536, cfg.LLM.EmbeddingDimension)
	assert.Equal(t, 0.65, cfg.Memory.SimilarityThreshold)
	assert.Equal(t, "calm", cfg.Emotion.DefaultEmotion)
}

func TestLoadConfigUnparsableValuesUseDefaults(t *testing.T) {
	t.Setenv("CHARLOTTE_EMBEDDING_DIMENSION", "not-a-number")
	t.Setenv("CHARLOTTE_DEFAULT_INTENSITY", "very high")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 768, cfg.LLM.EmbeddingDimension)
	assert.Equal(t, 0.7, cfg.Emotion.DefaultIntensity)
}

func TestLoadTriggersDefaults(t *testing.T) {
	triggers, err := LoadTriggers("")
	require.NoError(t, err)
	require.NotEmpty(t, triggers)

	for _, tr := range triggers {
		assert.NotEmpty(t, tr.TriggerValue)
		assert.True(t, types.IsValidEmotion(tr.EmotionInduced), "trigger %q induces unknown emotion %q", tr.TriggerValue, tr.EmotionInduced)
		assert.GreaterOrEqual(t, tr.ConfidenceScore, 0.0)
		assert.LessOrEqual(t, tr.ConfidenceScore, 1.0)
	}
}

func TestLoadTriggersFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triggers.yaml")
	content := `triggers:
  - trigger: "good morning"
    emotion: happy
    intensity_change: 0.1
    confidence: 0.8
  - trigger: "deadline"
    emotion: focused
    intensity_change: 0.2
    confidence: 0.9
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	triggers, err := LoadTriggers(path)
	require.NoError(t, err)
	require.Len(t, triggers, 2)

	assert.Equal(t, "good morning", triggers[0].TriggerValue)
	assert.Equal(t, "happy", triggers[0].EmotionInduced)
	assert.Equal(t, 0.1, triggers[0].IntensityChange)
	assert.Equal(t, 0.8, triggers[0].ConfidenceScore)
}

func TestLoadTriggersRejectsUnknownEmotion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triggers.yaml")
	content := `triggers:
  - trigger: "hello"
    emotion: bamboozled
    intensity_change: 0.1
    confidence: 0.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadTriggers(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown emotion")
}

func TestLoadTriggersMissingFile(t *testing.T) {
	_, err := LoadTriggers(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
