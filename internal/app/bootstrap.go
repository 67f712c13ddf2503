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

package app

import (
	"context"
	"fmt"
	"path/filepath"

	"career-planner/internal/advisor"
	"career-planner/internal/memory"
	"career-planner/internal/model/llm"
	"career-planner/internal/plan"
	"career-planner/internal/schedule"
	"career-planner/internal/search"
	"career-planner/pkg/config"
	"career-planner/pkg/log"
	"career-planner/pkg/secrets"
	"career-planner/pkg/utils"
)

// Bootstrap 统一初始化：供 api 与 cli 复用，避免在 cmd 内写业务装配
type Bootstrap struct {
	Config    *config.Config
	Logger    *log.Logger
	Secrets   secrets.Store
	LLM       llm.Client // 凭据缺失时为 nil
	Requester *plan.Requester
	Scheduler *schedule.Builder
	Lookup    *search.Lookup
	Memory    memory.Provider
	Advisor   *advisor.Advisor
}

// NewBootstrap 根据配置创建 Bootstrap（Logger/Secrets/Models/Search/Memory），cfg 为 nil 时使用默认配置
func NewBootstrap(cfg *config.Config) (*Bootstrap, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	logger, err := log.NewLogger(&log.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化日志failed: %w", err)
	}

	ctx := context.Background()

	secretStore, err := secrets.NewStore(secrets.Config{
		Provider: cfg.Secrets.Provider,
		Vault: secrets.VaultConfig{
			Address:    cfg.Secrets.Vault.Address,
			Token:      cfg.Secrets.Vault.Token,
			PathPrefix: cfg.Secrets.Vault.PathPrefix,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 secrets store failed: %w", err)
	}

	llmClient, err := NewLLMClientFromConfig(ctx, cfg, secretStore)
	if err != nil {
		return nil, fmt.Errorf("初始化 LLM 客户端failed: %w", err)
	}
	if llmClient == nil {
		logger.Warn("模型凭据未配置，/chat 将返回错误", "provider", cfg.Model.Provider, "api_key_env", cfg.Model.APIKeyEnv)
	}

	searchClient, err := search.NewClient(cfg.Search)
	if err != nil {
		return nil, fmt.Errorf("初始化资源检索failed: %w", err)
	}

	memProvider, err := memory.NewProvider(ctx, cfg.Memory)
	if err != nil {
		return nil, fmt.Errorf("初始化记忆存储failed: %w", err)
	}

	reqOpts := []plan.Option{plan.WithLogger(logger)}
	if cfg.Model.Temperature > 0 {
		reqOpts = append(reqOpts, plan.WithTemperature(cfg.Model.Temperature))
	}
	requester := plan.NewRequester(llmClient, reqOpts...)
	builder := schedule.NewBuilder(cfg.Schedule.Weeks)
	lookup := search.NewLookup(searchClient, logger)
	adv := advisor.New(requester, builder, lookup, memProvider,
		advisor.WithLogger(logger),
		advisor.WithMaxTasks(cfg.Schedule.MaxTasks),
		advisor.WithMaxResources(cfg.Search.MaxResults),
	)

	return &Bootstrap{
		Config:    cfg,
		Logger:    logger,
		Secrets:   secretStore,
		LLM:       llmClient,
		Requester: requester,
		Scheduler: builder,
		Lookup:    lookup,
		Memory:    memProvider,
		Advisor:   adv,
	}, nil
}

// OpenConsoleMemory 打开 console 流程使用的记忆：file 后端为单个 default_file，其余后端使用 default_user
func (b *Bootstrap) OpenConsoleMemory(ctx context.Context) (memory.Store, error) {
	if b.Config.Memory.Type == "" || b.Config.Memory.Type == "file" {
		name := utils.CoalesceString(b.Config.Memory.DefaultFile, "user_memory.json")
		return memory.OpenFile(filepath.Join(b.Config.Memory.Dir, name))
	}
	return b.Memory.Open(ctx, memory.DefaultUserID)
}

// Close 释放记忆存储连接
func (b *Bootstrap) Close() error {
	if b.Memory == nil {
		return nil
	}
	return b.Memory.Close()
}
