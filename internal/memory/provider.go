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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"career-planner/pkg/config"
)

// DefaultUserID 请求未携带 user_id 时使用
const DefaultUserID = "default_user"

// Provider 按用户打开 Store；调用方在请求结束时关闭 Store
type Provider interface {
	Open(ctx context.Context, userID string) (Store, error)
	Close() error
}

// NewProvider 根据配置创建 Provider（file | redis | postgres）
func NewProvider(ctx context.Context, cfg config.MemoryConfig) (Provider, error) {
	switch cfg.Type {
	case "", "file":
		return NewFileProvider(cfg.Dir)
	case "redis":
		addr := cfg.Addr
		if addr == "" {
			addr = "localhost:6379"
		}
		return NewRedisProvider(ctx, &redis.Options{
			Addr:     addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}, cfg.KeyPrefix)
	case "postgres":
		return NewPostgresProvider(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported memory type: %s", cfg.Type)
	}
}

// SanitizeUserID 空值映射为 default_user，路径不安全字符替换为 _；
// 发生替换时追加原始 ID 的 sha256 前 8 位，避免 "a/b" 与 "a_b" 落到同一文件
func SanitizeUserID(userID string) string {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return DefaultUserID
	}
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, userID)
	if safe == userID {
		return safe
	}
	sum := sha256.Sum256([]byte(userID))
	return safe + "_" + hex.EncodeToString(sum[:4])
}

// FileProvider 每个用户一个 <dir>/memory_<user_id>.json
type FileProvider struct {
	dir string
}

// NewFileProvider dir 不存在时创建
func NewFileProvider(dir string) (*FileProvider, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建记忆目录失败: %w", err)
	}
	return &FileProvider{dir: dir}, nil
}

// Path 返回用户记忆文件路径
func (p *FileProvider) Path(userID string) string {
	return filepath.Join(p.dir, "memory_"+SanitizeUserID(userID)+".json")
}

// Open 打开（必要时创建）用户记忆文件
func (p *FileProvider) Open(_ context.Context, userID string) (Store, error) {
	return OpenFile(p.Path(userID))
}

// Close 无资源需要释放
func (p *FileProvider) Close() error { return nil }

// RedisProvider 共享一个 redis 客户端，hash key = prefix + user_id
type RedisProvider struct {
	client *redis.Client
	prefix string
}

// NewRedisProvider 创建并 Ping redis
func NewRedisProvider(ctx context.Context, opts *redis.Options, prefix string) (*RedisProvider, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("连接 redis 失败: %w", err)
	}
	return &RedisProvider{client: client, prefix: prefix}, nil
}

// Open 打开用户记忆
func (p *RedisProvider) Open(ctx context.Context, userID string) (Store, error) {
	return OpenRedis(ctx, p.client, p.prefix+SanitizeUserID(userID))
}

// Close 关闭 redis 客户端
func (p *RedisProvider) Close() error { return p.client.Close() }

// PostgresProvider 共享连接池，启动时建表
type PostgresProvider struct {
	pool *pgxpool.Pool
}

// NewPostgresProvider 创建连接池并确保 user_memory 表存在
func NewPostgresProvider(ctx context.Context, dsn string) (*PostgresProvider, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, createUserMemoryTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("创建 user_memory 表失败: %w", err)
	}
	return &PostgresProvider{pool: pool}, nil
}

// Open 打开用户记忆
func (p *PostgresProvider) Open(ctx context.Context, userID string) (Store, error) {
	return OpenPostgres(ctx, p.pool, SanitizeUserID(userID))
}

// Close 关闭连接池
func (p *PostgresProvider) Close() error {
	p.pool.Close()
	return nil
}
