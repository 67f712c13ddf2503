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

package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	perrors "career-planner/pkg/errors"
)

// RedisStore 每个用户一个 hash，每个键一个 field（值为 JSON 文本）
type RedisStore struct {
	*kv
	client  redis.Cmdable
	hashKey string
}

// OpenRedis 加载 hashKey 下的全部 field
func OpenRedis(ctx context.Context, client redis.Cmdable, hashKey string) (*RedisStore, error) {
	fields, err := client.HGetAll(ctx, hashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("读取 redis 记忆 %s 失败: %w", hashKey, err)
	}
	data := make(map[string]any, len(fields))
	for k, raw := range fields {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, perrors.Wrapf(err, "解析 redis 记忆 %s/%s 失败", hashKey, k)
		}
		data[k] = v
	}

	s := &RedisStore{client: client, hashKey: hashKey}
	s.kv = newKV(data, s.write)
	return s, nil
}

// Close 连接由 RedisProvider 持有
func (s *RedisStore) Close() error { return nil }

func (s *RedisStore) write(ctx context.Context, key string, raw []byte, _ map[string]any) error {
	if err := s.client.HSet(ctx, s.hashKey, key, string(raw)).Err(); err != nil {
		return fmt.Errorf("写入 redis 记忆失败: %w", err)
	}
	return nil
}
