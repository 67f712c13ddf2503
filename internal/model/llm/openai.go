// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// OpenAIClient 基于 eino-ext ChatModel 的 OpenAI 兼容客户端（openai / qwen 等）
type OpenAIClient struct {
	provider  string
	model     string
	chatModel model.BaseChatModel
}

// NewOpenAIClient 创建 OpenAI 兼容客户端；baseURL 为空时用 OPENAI_BASE_URL 或官方端点
func NewOpenAIClient(ctx context.Context, modelName, apiKey, baseURL string) (*OpenAIClient, error) {
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}
	if baseURL == "" {
		baseURL = getEnv("OPENAI_BASE_URL")
	}

	cfg := &openai.ChatModelConfig{
		Model:  modelName,
		APIKey: apiKey,
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	chatModel, err := openai.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("创建 OpenAI ChatModel failed: %w", err)
	}

	return &OpenAIClient{
		provider:  "openai",
		model:     modelName,
		chatModel: chatModel,
	}, nil
}

// Chat 聊天
func (c *OpenAIClient) Chat(messages []Message, options GenerateOptions) (string, error) {
	return c.ChatWithContext(context.Background(), messages, options)
}

// ChatWithContext 使用上下文聊天
func (c *OpenAIClient) ChatWithContext(ctx context.Context, messages []Message, options GenerateOptions) (string, error) {
	input := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			input = append(input, schema.SystemMessage(msg.Content))
		case RoleAssistant:
			input = append(input, schema.AssistantMessage(msg.Content, nil))
		default:
			input = append(input, schema.UserMessage(msg.Content))
		}
	}

	opts := []model.Option{model.WithTemperature(float32(options.Temperature))}
	if options.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(options.MaxTokens))
	}
	if options.TopP > 0 {
		opts = append(opts, model.WithTopP(float32(options.TopP)))
	}
	if len(options.Stop) > 0 {
		opts = append(opts, model.WithStop(options.Stop))
	}

	out, err := c.chatModel.Generate(ctx, input, opts...)
	if err != nil {
		return "", fmt.Errorf("调用 OpenAI API failed: %w", err)
	}
	if out == nil {
		return "", fmt.Errorf("OpenAI API 没有返回结果")
	}
	return out.Content, nil
}

// Model 返回模型名称
func (c *OpenAIClient) Model() string {
	return c.model
}

// Provider 返回提供商名称
func (c *OpenAIClient) Provider() string {
	return c.provider
}
