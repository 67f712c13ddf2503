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

package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"

	"career-planner/pkg/config"
	"career-planner/pkg/log"
)

// RequestIDKey 请求 ID 在 RequestContext 中的 key，同时也是请求/响应头名
const RequestIDKey = "X-Request-ID"

// Middleware 中间件管理器
type Middleware struct {
	cors    config.CORSConfig
	origins map[string]struct{}
	logger  *log.Logger
}

// NewMiddleware 创建新的中间件管理器
func NewMiddleware(cors config.CORSConfig, logger *log.Logger) *Middleware {
	origins := make(map[string]struct{}, len(cors.AllowOrigins))
	for _, o := range cors.AllowOrigins {
		origins[strings.TrimRight(o, "/")] = struct{}{}
	}
	return &Middleware{cors: cors, origins: origins, logger: log.OrDiscard(logger)}
}

// CORS 仅对白名单 Origin 回写允许头；预检请求直接返回 204
func (m *Middleware) CORS() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		origin := string(c.GetHeader("Origin"))
		if !m.cors.Enable || origin == "" {
			c.Next(ctx)
			return
		}
		if !m.allowed(origin) {
			if string(c.Method()) == consts.MethodOptions {
				c.AbortWithStatus(consts.StatusForbidden)
				return
			}
			c.Next(ctx)
			return
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Vary", "Origin")
		if string(c.Method()) == consts.MethodOptions {
			reqHeaders := string(c.GetHeader("Access-Control-Request-Headers"))
			if reqHeaders == "" {
				reqHeaders = "Origin, Content-Type, Accept, Authorization, X-Request-ID"
			}
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", reqHeaders)
			c.Header("Access-Control-Max-Age", "600")
			c.AbortWithStatus(consts.StatusNoContent)
			return
		}
		c.Next(ctx)
	}
}

func (m *Middleware) allowed(origin string) bool {
	if _, ok := m.origins["*"]; ok {
		return true
	}
	_, ok := m.origins[strings.TrimRight(origin, "/")]
	return ok
}

// RequestID 透传或生成请求 ID
func (m *Middleware) RequestID() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		id := string(c.GetHeader(RequestIDKey))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDKey, id)
		c.Next(ctx)
	}
}

// AccessLog 请求完成后记录一条访问日志
func (m *Middleware) AccessLog() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		c.Next(ctx)
		m.logger.Info("http request",
			"method", string(c.Method()),
			"path", string(c.Path()),
			"status", c.Response.StatusCode(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
			"request_id", c.GetString(RequestIDKey),
		)
	}
}
