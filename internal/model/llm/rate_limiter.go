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
	"sync"

	"golang.org/x/time/rate"
)

// LLMLimitConfig 单个 provider 的限流配置；零值字段表示不限制该维度
type LLMLimitConfig struct {
	TokensPerMinute   int
	RequestsPerMinute float64
	MaxConcurrent     int
}

// LLMRateLimiter 按 provider 维度做 RPS + token budget + 并发控制
type LLMRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*providerLimiter
	defaults LLMLimitConfig
}

type providerLimiter struct {
	requests  *rate.Limiter
	tokens    *rate.Limiter
	semaphore chan struct{}
}

// NewLLMRateLimiter 创建 LLM 限流器；未配置的 provider 使用 defaults
func NewLLMRateLimiter(configs map[string]LLMLimitConfig, defaults LLMLimitConfig) *LLMRateLimiter {
	l := &LLMRateLimiter{
		limiters: make(map[string]*providerLimiter, len(configs)),
		defaults: defaults,
	}
	for provider, cfg := range configs {
		l.limiters[provider] = newProviderLimiter(cfg)
	}
	return l
}

func newProviderLimiter(cfg LLMLimitConfig) *providerLimiter {
	p := &providerLimiter{}
	// burst 取 2 秒配额
	if cfg.RequestsPerMinute > 0 {
		burst := int(cfg.RequestsPerMinute / 30)
		if burst < 1 {
			burst = 1
		}
		p.requests = rate.NewLimiter(rate.Limit(cfg.RequestsPerMinute/60), burst)
	}
	if cfg.TokensPerMinute > 0 {
		burst := cfg.TokensPerMinute / 30
		if burst < 1 {
			burst = 1
		}
		p.tokens = rate.NewLimiter(rate.Limit(float64(cfg.TokensPerMinute)/60), burst)
	}
	if cfg.MaxConcurrent > 0 {
		p.semaphore = make(chan struct{}, cfg.MaxConcurrent)
	}
	return p
}

func (l *LLMRateLimiter) get(provider string) *providerLimiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.limiters[provider]
	if !ok {
		p = newProviderLimiter(l.defaults)
		l.limiters[provider] = p
	}
	return p
}

// Wait 阻塞直到 provider 允许发起一次调用；成功后必须调用 Release
func (l *LLMRateLimiter) Wait(ctx context.Context, provider string, estimatedTokens int) error {
	p := l.get(provider)

	if p.requests != nil {
		if err := p.requests.Wait(ctx); err != nil {
			return fmt.Errorf("request rate limit wait failed: %w", err)
		}
	}
	if p.tokens != nil && estimatedTokens > 0 {
		n := estimatedTokens
		if b := p.tokens.Burst(); n > b {
			n = b
		}
		if err := p.tokens.WaitN(ctx, n); err != nil {
			return fmt.Errorf("token budget wait failed: %w", err)
		}
	}
	if p.semaphore != nil {
		select {
		case p.semaphore <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Release 释放并发 slot
func (l *LLMRateLimiter) Release(provider string) {
	p := l.get(provider)
	if p.semaphore == nil {
		return
	}
	select {
	case <-p.semaphore:
	default:
	}
}

// InFlight 当前占用的并发 slot 数
func (l *LLMRateLimiter) InFlight(provider string) int {
	return len(l.get(provider).semaphore)
}
