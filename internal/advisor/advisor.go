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

// Package advisor 组合规划、排期、检索与用户记忆，服务 HTTP 对话入口
package advisor

import (
	"context"
	"fmt"
	"strings"

	"career-planner/internal/memory"
	"career-planner/internal/plan"
	"career-planner/internal/schedule"
	"career-planner/internal/search"
	"career-planner/pkg/log"
)

const (
	// DefaultMaxTasks 参与排期的最大步骤数
	DefaultMaxTasks = 10
	// DefaultMaxResources 检索返回的最大资源数
	DefaultMaxResources = 5
)

const (
	greetingReply       = "Merhaba! Ben Kariyer Gelişim Ajanı. Size kariyer hedeflerinizde yardımcı olabilirim. Kariyer hedefinizi benimle paylaşır mısınız?"
	streamGreetingReply = "👋 Merhaba! Ben Kariyer Gelişim Ajanı.\n\n✨ Size kariyer hedeflerinizde yardımcı olabilirim. Kariyer hedefinizi benimle paylaşır mısınız?"
	planReplyTemplate   = "Harika! '%s' hedefi için detaylı bir kariyer planı hazırladım. Aşağıda adımları, becerileri ve önerilen eğitimleri bulabilirsiniz."
	resourceQuerySuffix = " için kaynaklar"
)

var greetingKeywords = []string{"merhaba", "selam", "hey", "hello"}

// IsGreeting 小写后包含任一问候关键词即视为问候
func IsGreeting(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range greetingKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ChatReply /chat 的响应体
type ChatReply struct {
	Response   string             `json:"response"`
	CareerPlan *plan.CareerPlan   `json:"career_plan,omitempty"`
	Schedule   *schedule.Schedule `json:"schedule,omitempty"`
	Resources  []search.Result    `json:"resources,omitzero"`
}

// Advisor 每次请求按顺序执行：规划 → 记忆 → 排期 → 检索
type Advisor struct {
	requester    *plan.Requester
	builder      *schedule.Builder
	lookup       *search.Lookup
	memory       memory.Provider
	logger       *log.Logger
	maxTasks     int
	maxResources int
}

// Option Advisor 选项
type Option func(*Advisor)

// WithLogger 设置日志
func WithLogger(l *log.Logger) Option {
	return func(a *Advisor) { a.logger = l }
}

// WithMaxTasks 覆盖参与排期的最大步骤数
func WithMaxTasks(n int) Option {
	return func(a *Advisor) {
		if n > 0 {
			a.maxTasks = n
		}
	}
}

// WithMaxResources 覆盖检索返回的最大资源数
func WithMaxResources(n int) Option {
	return func(a *Advisor) {
		if n > 0 {
			a.maxResources = n
		}
	}
}

// New 创建 Advisor
func New(requester *plan.Requester, builder *schedule.Builder, lookup *search.Lookup, provider memory.Provider, opts ...Option) *Advisor {
	a := &Advisor{
		requester:    requester,
		builder:      builder,
		lookup:       lookup,
		memory:       provider,
		maxTasks:     DefaultMaxTasks,
		maxResources: DefaultMaxResources,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = log.OrDiscard(a.logger)
	return a
}

// Configured 模型凭据是否可用
func (a *Advisor) Configured() bool {
	return a.requester.Configured()
}

// Chat 问候直接返回固定回复；否则生成规划、写入记忆并附带排期与资源
func (a *Advisor) Chat(ctx context.Context, message, userID string) (*ChatReply, error) {
	if !a.Configured() {
		return nil, plan.ErrMissingCredential
	}
	message = strings.TrimSpace(message)
	if IsGreeting(message) {
		return &ChatReply{Response: greetingReply}, nil
	}

	p, err := a.requester.Ask(ctx, message)
	if err != nil {
		return nil, err
	}
	if err := a.remember(ctx, userID, message, p); err != nil {
		return nil, err
	}

	reply := &ChatReply{
		Response:   fmt.Sprintf(planReplyTemplate, message),
		CareerPlan: p,
	}
	if tasks := p.FirstSteps(a.maxTasks); len(tasks) > 0 {
		reply.Schedule = a.builder.Build(tasks)
	}
	reply.Resources = a.lookup.Resources(ctx, message+resourceQuerySuffix, a.maxResources)

	a.logger.Info("kariyer planı hazırlandı",
		"user_id", memory.SanitizeUserID(userID),
		"steps", len(p.Steps),
		"resources", len(reply.Resources),
	)
	return reply, nil
}

// StreamText 返回供逐词推送的完整文本；非问候时写入目标与规划
func (a *Advisor) StreamText(ctx context.Context, message, userID string) (string, error) {
	if !a.Configured() {
		return "", plan.ErrMissingCredential
	}
	message = strings.TrimSpace(message)
	if IsGreeting(message) {
		return streamGreetingReply, nil
	}

	p, err := a.requester.Ask(ctx, message)
	if err != nil {
		return "", err
	}
	text := FormatPlan(message, p)
	if err := a.remember(ctx, userID, message, p); err != nil {
		return "", err
	}
	return text, nil
}

// remember 打开用户记忆，写入 career_goal 与 last_career_plan 后关闭
func (a *Advisor) remember(ctx context.Context, userID, goal string, p *plan.CareerPlan) error {
	store, err := a.memory.Open(ctx, userID)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.UpdateGoal(ctx, goal); err != nil {
		return err
	}
	return store.Set(ctx, memory.KeyLastCareerPlan, p)
}
