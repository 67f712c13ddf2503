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

	"github.com/jackc/pgx/v5/pgxpool"

	perrors "career-planner/pkg/errors"
)

const createUserMemoryTable = `CREATE TABLE IF NOT EXISTS user_memory (
	user_id    TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (user_id, key)
)`

// PostgresStore user_memory 表中属于同一 user_id 的行
type PostgresStore struct {
	*kv
	pool   *pgxpool.Pool
	userID string
}

// OpenPostgres 加载 userID 的全部键
func OpenPostgres(ctx context.Context, pool *pgxpool.Pool, userID string) (*PostgresStore, error) {
	rows, err := pool.Query(ctx, `SELECT key, value FROM user_memory WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("读取用户记忆失败: %w", err)
	}
	defer rows.Close()

	data := make(map[string]any)
	for rows.Next() {
		var key string
		var raw []byte
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, err
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, perrors.Wrapf(err, "解析用户记忆 %s/%s 失败", userID, key)
		}
		data[key] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s := &PostgresStore{pool: pool, userID: userID}
	s.kv = newKV(data, s.write)
	return s, nil
}

// Close 连接池由 PostgresProvider 持有
func (s *PostgresStore) Close() error { return nil }

func (s *PostgresStore) write(ctx context.Context, key string, raw []byte, _ map[string]any) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_memory (user_id, key, value, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (user_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		s.userID, key, string(raw))
	if err != nil {
		return fmt.Errorf("写入用户记忆失败: %w", err)
	}
	return nil
}
