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

// Package memory 用户记忆：string → 任意 JSON 值，每个用户一份，写入即持久化
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// 约定的记忆键
const (
	KeyCareerGoal           = "career_goal"
	KeyLastCareerPlan       = "last_career_plan"
	KeyRecommendedResources = "recommended_resources"
)

// Store 单个用户的记忆；Set 返回前已完成持久化
type Store interface {
	// Get 键不存在时返回 (nil, false)
	Get(key string) (any, bool)
	// GetInto 将值解码到 dest；键不存在时返回 (false, nil)
	GetInto(key string, dest any) (bool, error)
	// Set 写入并持久化；失败时内存副本保持不变
	Set(ctx context.Context, key string, value any) error
	// UpdateGoal 写入 career_goal
	UpdateGoal(ctx context.Context, goal string) error
	// Snapshot 返回当前映射的浅拷贝
	Snapshot() map[string]any
	// Close 释放后端资源
	Close() error
}

// flushFunc 在持有写锁时调用；raw 为该键规范化后的 JSON，data 为已更新的完整映射
type flushFunc func(ctx context.Context, key string, raw []byte, data map[string]any) error

// kv 各后端共享的内存副本与写穿逻辑
type kv struct {
	mu    sync.RWMutex
	data  map[string]any
	flush flushFunc
}

func newKV(data map[string]any, flush flushFunc) *kv {
	if data == nil {
		data = make(map[string]any)
	}
	return &kv{data: data, flush: flush}
}

func (s *kv) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *kv) GetInto(key string, dest any) (bool, error) {
	v, ok := s.Get(key)
	if !ok {
		return false, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return true, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return true, fmt.Errorf("decode memory key %q: %w", key, err)
	}
	return true, nil
}

func (s *kv) Set(ctx context.Context, key string, value any) error {
	v, raw, err := normalize(value)
	if err != nil {
		return fmt.Errorf("memory value for %q is not JSON serializable: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev, existed := s.data[key]
	s.data[key] = v
	if err := s.flush(ctx, key, raw, s.data); err != nil {
		if existed {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		return err
	}
	return nil
}

func (s *kv) UpdateGoal(ctx context.Context, goal string) error {
	return s.Set(ctx, KeyCareerGoal, goal)
}

func (s *kv) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// normalize 经 JSON 往返，使内存中的值与重新加载后的值一致
func normalize(value any) (any, []byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, nil, err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, nil, err
	}
	return v, raw, nil
}
