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

package search

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"career-planner/pkg/log"
	"career-planner/pkg/metrics"
	"career-planner/pkg/tracing"
)

// Lookup 包装 Client：任何失败（错误或 panic）只记录日志并计数，返回空列表
type Lookup struct {
	client Client
	logger *log.Logger
}

// NewLookup client 可为 nil
func NewLookup(client Client, logger *log.Logger) *Lookup {
	return &Lookup{client: client, logger: log.OrDiscard(logger)}
}

// Resources 返回至多 max 条结果；从不返回 nil
func (l *Lookup) Resources(ctx context.Context, query string, max int) []Result {
	if max <= 0 || l.client == nil {
		return []Result{}
	}

	ctx, span := tracing.StartSpan(ctx, "search.lookup", attribute.Int("search.max_results", max))
	results, err := l.search(ctx, query, max)
	tracing.EndSpan(span, err)
	if err != nil {
		metrics.SearchFailuresTotal.Inc()
		l.logger.Warn("⚠ Arama sırasında hata oluştu", "query", query, "error", err)
		return []Result{}
	}

	if len(results) > max {
		results = results[:max]
	}
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (l *Lookup) search(ctx context.Context, query string, max int) (results []Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			results, err = nil, fmt.Errorf("search provider panic: %v", r)
		}
	}()
	return l.client.Text(ctx, query, max)
}
