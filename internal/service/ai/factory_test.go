package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/zhouzirui/funds-assistant/backend/internal/config"
)

func TestSafetySettingsThresholds(t *testing.T) {
	got := map[genai.HarmCategory]genai.HarmBlockThreshold{}
	for _, s := range SafetySettings() {
		got[s.Category] = s.Threshold
	}

	assert.Equal(t, genai.HarmBlockThresholdBlockNone, got[genai.HarmCategoryDangerousContent])
	assert.Equal(t, genai.HarmBlockThresholdBlockOnlyHigh, got[genai.HarmCategoryHarassment])
	assert.Equal(t, genai.HarmBlockThresholdBlockOnlyHigh, got[genai.HarmCategoryHateSpeech])
	assert.Equal(t, genai.HarmBlockThresholdBlockOnlyHigh, got[genai.HarmCategorySexuallyExplicit])
}

func TestNewChatModelRequiresCredentials(t *testing.T) {
	_, err := NewChatModel(context.Background(), config.AIConfig{Provider: config.ProviderGemini, GeminiModel: "gemini-1.5-pro"})
	assert.Error(t, err)
}

func TestNewChatModelOpenAI(t *testing.T) {
	temp := 0.2
	m, err := NewChatModel(context.Background(), config.AIConfig{
		Provider:     config.ProviderOpenAI,
		OpenAIAPIKey: "k",
		OpenAIModel:  "gpt-4o-mini",
		Temperature:  &temp,
	})
	require.NoError(t, err)

	adapter, ok := m.(*OpenAIChatModel)
	require.True(t, ok)
	require.NotNil(t, adapter.temperature)
	assert.InDelta(t, 0.2, *adapter.temperature, 1e-6)
}
