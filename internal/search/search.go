// Package search 职业资源检索（尽力而为，失败时返回空列表）
package search

import (
	"context"
	"fmt"
	"time"

	"career-planner/pkg/config"
)

// Result 检索结果；字段由检索提供方决定（DuckDuckGo 为 title / href / body）
type Result = map[string]any

// Client 检索提供方
type Client interface {
	Text(ctx context.Context, query string, maxResults int) ([]Result, error)
}

// NewClient 根据配置创建 Client；provider 为 none 时返回 nil（Lookup 将始终返回空列表）
func NewClient(cfg config.SearchConfig) (Client, error) {
	switch cfg.Provider {
	case "", "duckduckgo":
		timeout := 10 * time.Second
		if cfg.Timeout != "" {
			d, err := time.ParseDuration(cfg.Timeout)
			if err != nil {
				return nil, fmt.Errorf("invalid search.timeout %q: %w", cfg.Timeout, err)
			}
			timeout = d
		}
		return NewDuckDuckGo(DuckDuckGoConfig{
			BaseURL:   cfg.BaseURL,
			Timeout:   timeout,
			UserAgent: cfg.UserAgent,
		}), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported search provider: %s", cfg.Provider)
	}
}
