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

package plan

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"career-planner/internal/model/llm"
	perrors "career-planner/pkg/errors"
	"career-planner/pkg/log"
	"career-planner/pkg/tracing"
)

// DefaultTemperature 规划请求的采样温度
const DefaultTemperature = 0.5

// ErrMissingCredential 未配置模型凭据，无法创建客户端
var ErrMissingCredential = errors.New("API anahtarı yapılandırılmamış. Lütfen GOOGLE_GEMINI_API_KEY ayarlayın.")

// Requester 向模型请求职业规划
type Requester struct {
	client      llm.Client
	temperature float64
	logger      *log.Logger
}

// Option Requester 选项
type Option func(*Requester)

// WithTemperature 覆盖采样温度
func WithTemperature(t float64) Option {
	return func(r *Requester) { r.temperature = t }
}

// WithLogger 设置日志
func WithLogger(l *log.Logger) Option {
	return func(r *Requester) { r.logger = l }
}

// NewRequester client 为 nil 表示凭据缺失，Ask 将返回 ErrMissingCredential
func NewRequester(client llm.Client, opts ...Option) *Requester {
	r := &Requester{client: client, temperature: DefaultTemperature}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = log.OrDiscard(r.logger)
	return r
}

// Configured 是否已配置模型客户端
func (r *Requester) Configured() bool {
	return r != nil && r.client != nil
}

// Ask 发送两轮提示并解析回复；模型调用失败不重试
func (r *Requester) Ask(ctx context.Context, goal string) (_ *CareerPlan, err error) {
	if !r.Configured() {
		return nil, ErrMissingCredential
	}
	if strings.TrimSpace(goal) == "" {
		return nil, perrors.InvalidArgf("career goal is empty")
	}

	ctx, span := tracing.StartSpan(ctx, "plan.ask",
		attribute.String("llm.provider", r.client.Provider()),
		attribute.String("llm.model", r.client.Model()),
	)
	defer func() { tracing.EndSpan(span, err) }()

	raw, err := r.client.ChatWithContext(ctx, BuildMessages(goal), llm.GenerateOptions{Temperature: r.temperature})
	if err != nil {
		return nil, perrors.Wrap(err, "kariyer planı isteği başarısız")
	}

	var p CareerPlan
	if err := Extract(raw, &p); err != nil {
		r.logger.Warn("模型回复解析失败", "provider", r.client.Provider(), "error", err)
		return nil, err
	}
	r.logger.Debug("职业规划已生成", "steps", len(p.Steps), "skills", len(p.Skills))
	return &p, nil
}
