package app

import (
	"context"

	"career-planner/internal/model/llm"
	"career-planner/pkg/config"
	"career-planner/pkg/secrets"
)

// NewLLMClientFromConfig 根据 config.Model 创建带限流的 LLM 客户端；凭据缺失时返回 (nil, nil)
func NewLLMClientFromConfig(ctx context.Context, cfg *config.Config, store secrets.Store) (llm.Client, error) {
	if cfg == nil {
		return nil, nil
	}
	apiKey := resolveAPIKey(ctx, cfg.Model, store)
	if apiKey == "" {
		return nil, nil
	}
	client, err := llm.NewClient(ctx, cfg.Model.Provider, cfg.Model.Name, apiKey, cfg.Model.BaseURL)
	if err != nil {
		return nil, err
	}
	return llm.NewRateLimitedClient(client, newLLMRateLimiter(cfg.RateLimits)), nil
}

// resolveAPIKey 优先使用配置中的 api_key，否则从 secrets store 读取 api_key_env
func resolveAPIKey(ctx context.Context, mc config.ModelConfig, store secrets.Store) string {
	if mc.APIKey != "" {
		return mc.APIKey
	}
	return secrets.Lookup(ctx, store, mc.APIKeyEnv)
}

func newLLMRateLimiter(rl config.RateLimitsConfig) *llm.LLMRateLimiter {
	configs := make(map[string]llm.LLMLimitConfig, len(rl.LLM))
	for provider, c := range rl.LLM {
		configs[provider] = llm.LLMLimitConfig{
			TokensPerMinute:   c.TokensPerMinute,
			RequestsPerMinute: c.RequestsPerMinute,
			MaxConcurrent:     c.MaxConcurrent,
		}
	}
	return llm.NewLLMRateLimiter(configs, llm.LLMLimitConfig{})
}
