package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"github.com/zhouzirui/funds-assistant/backend/internal/config"
)

// SafetySettings 只拦截高风险的骚扰、仇恨与色情内容，危险内容类别不拦截。
func SafetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
	}
}

// NewChatModel 按配置的供应商创建模型实例。
func NewChatModel(ctx context.Context, cfg config.AIConfig) (model.BaseChatModel, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("%s 凭证或模型配置缺失", cfg.Provider)
	}

	switch cfg.Provider {
	case config.ProviderGemini:
		return newGeminiModel(ctx, cfg)
	case config.ProviderArk:
		return newArkModel(ctx, cfg)
	case config.ProviderOpenAI:
		return NewOpenAIChatModel(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, temperature32(cfg)), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider %q", cfg.Provider)
	}
}

func newGeminiModel(ctx context.Context, cfg config.AIConfig) (model.BaseChatModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:         client,
		Model:          cfg.GeminiModel,
		MaxTokens:      cfg.MaxTokens,
		Temperature:    temperature32(cfg),
		SafetySettings: SafetySettings(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini chat model: %w", err)
	}
	return chatModel, nil
}

func newArkModel(ctx context.Context, cfg config.AIConfig) (model.BaseChatModel, error) {
	chatModel, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:     cfg.BaseURL,
		Region:      cfg.Region,
		APIKey:      cfg.APIKey,
		AccessKey:   cfg.AccessKey,
		SecretKey:   cfg.SecretKey,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: temperature32(cfg),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ark chat model: %w", err)
	}
	return chatModel, nil
}

func temperature32(cfg config.AIConfig) *float32 {
	if cfg.Temperature == nil {
		return nil
	}
	val := float32(*cfg.Temperature)
	return &val
}
