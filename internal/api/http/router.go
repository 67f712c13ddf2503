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

package http

import (
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/config"

	"career-planner/internal/api/http/middleware"
)

// Router 路由管理器
type Router struct {
	handler        *Handler
	middleware     *middleware.Middleware
	metricsEnabled bool
}

// NewRouter 创建新的路由管理器
func NewRouter(handler *Handler, mw *middleware.Middleware) *Router {
	return &Router{handler: handler, middleware: mw}
}

// SetMetricsEnabled 是否暴露 GET /metrics
func (r *Router) SetMetricsEnabled(enabled bool) {
	r.metricsEnabled = enabled
}

// Build 创建 Hertz 实例并注册路由，addr 如 ":8000"
func (r *Router) Build(addr string, opts ...config.Option) *server.Hertz {
	opts = append([]config.Option{server.WithHostPorts(addr)}, opts...)
	h := server.Default(opts...)

	h.Use(r.middleware.RequestID(), r.middleware.CORS(), r.middleware.AccessLog())

	h.GET("/", r.handler.Root)
	h.GET("/health", r.handler.Health)
	h.POST("/chat", r.handler.Chat)
	h.POST("/chat/stream", r.handler.ChatStream)
	if r.metricsEnabled {
		h.GET("/metrics", r.handler.Metrics)
	}
	return h
}
