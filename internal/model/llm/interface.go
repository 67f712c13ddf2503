package llm

import (
	"context"
	"fmt"
	"os"
)

// 消息角色
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Client LLM 客户端接口
type Client interface {
	// Chat 聊天
	Chat(messages []Message, options GenerateOptions) (string, error)
	// ChatWithContext 使用上下文聊天，返回模型的原始文本
	ChatWithContext(ctx context.Context, messages []Message, options GenerateOptions) (string, error)
	// Model 返回模型名称
	Model() string
	// Provider 返回提供商名称
	Provider() string
}

// GenerateOptions 生成选项；零值字段表示使用提供商默认值
type GenerateOptions struct {
	Temperature float64  `json:"temperature"`
	MaxTokens   int      `json:"max_tokens"`
	TopP        float64  `json:"top_p"`
	Stop        []string `json:"stop"`
}

// Message 聊天消息
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// NewClient 创建新的 LLM 客户端；baseURL 为空时使用提供商默认端点
func NewClient(ctx context.Context, provider, model, apiKey, baseURL string) (Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("LLM provider %q 的 api_key 未配置", provider)
	}
	switch provider {
	case "", "gemini":
		return NewGeminiClient(ctx, model, apiKey, baseURL)
	case "openai", "qwen":
		return NewOpenAIClient(ctx, model, apiKey, baseURL)
	case "claude":
		return NewClaudeClient(model, apiKey, baseURL)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

func getEnv(key string) string {
	return os.Getenv(key)
}
