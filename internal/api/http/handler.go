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
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/protocol/sse"

	"career-planner/internal/advisor"
	"career-planner/internal/memory"
	perrors "career-planner/pkg/errors"
	"career-planner/pkg/log"
	"career-planner/pkg/metrics"
)

const (
	bannerMessage      = "Kariyer Gelişim Ajanı API'sine hoş geldiniz!"
	defaultVersion     = "1.0.0"
	defaultStreamDelay = 50 * time.Millisecond
)

// Handler HTTP 处理器
type Handler struct {
	advisor     *advisor.Advisor
	version     string
	streamDelay time.Duration
	logger      *log.Logger
}

// HandlerOption Handler 选项
type HandlerOption func(*Handler)

// WithVersion 设置 GET / 返回的版本号
func WithVersion(v string) HandlerOption {
	return func(h *Handler) {
		if v != "" {
			h.version = v
		}
	}
}

// WithStreamDelay 设置流式输出每个词之间的间隔；0 表示不等待
func WithStreamDelay(d time.Duration) HandlerOption {
	return func(h *Handler) {
		if d >= 0 {
			h.streamDelay = d
		}
	}
}

// WithLogger 设置日志
func WithLogger(l *log.Logger) HandlerOption {
	return func(h *Handler) { h.logger = l }
}

// NewHandler 创建新的处理器
func NewHandler(adv *advisor.Advisor, opts ...HandlerOption) *Handler {
	h := &Handler{
		advisor:     adv,
		version:     defaultVersion,
		streamDelay: defaultStreamDelay,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = log.OrDiscard(h.logger)
	return h
}

type chatRequest struct {
	Message *string `json:"message"`
	UserID  *string `json:"user_id"`
}

func (r chatRequest) userID() string {
	if r.UserID == nil || *r.UserID == "" {
		return memory.DefaultUserID
	}
	return *r.UserID
}

// Root GET /
func (h *Handler) Root(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{
		"message": bannerMessage,
		"version": h.version,
		"status":  "active",
	})
}

// Health GET /health
func (h *Handler) Health(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{
		"status":             "healthy",
		"api_key_configured": h.advisor.Configured(),
	})
}

// Chat POST /chat
func (h *Handler) Chat(ctx context.Context, c *app.RequestContext) {
	req, ok := h.bindChat(c, "chat")
	if !ok {
		return
	}
	reply, err := h.advisor.Chat(ctx, *req.Message, req.userID())
	if err != nil {
		h.fail(c, "chat", err)
		return
	}
	metrics.ChatRequestsTotal.WithLabelValues("chat", outcome(*req.Message)).Inc()
	c.JSON(consts.StatusOK, reply)
}

// ChatStream POST /chat/stream，以 SSE 逐词推送回复；响应头在第一帧写出前固定为 200
func (h *Handler) ChatStream(ctx context.Context, c *app.RequestContext) {
	req, ok := h.bindChat(c, "chat_stream")
	if !ok {
		return
	}
	text, err := h.advisor.StreamText(ctx, *req.Message, req.userID())
	if err != nil {
		h.fail(c, "chat_stream", err)
		return
	}
	metrics.ChatRequestsTotal.WithLabelValues("chat_stream", outcome(*req.Message)).Inc()

	c.SetStatusCode(consts.StatusOK)
	c.Response.Header.Set("X-Accel-Buffering", "no")
	w := sse.NewWriter(c)
	// 客户端断开后写入失败，循环随之结束
	if err := writeFrames(ctx, w, text, h.streamDelay); err != nil {
		h.logger.Warn("stream aborted", "error", err)
	}
	if err := w.Close(); err != nil {
		h.logger.Warn("close stream failed", "error", err)
	}
}

// Metrics GET /metrics，Prometheus 文本格式
func (h *Handler) Metrics(ctx context.Context, c *app.RequestContext) {
	var buf bytes.Buffer
	if err := metrics.WritePrometheus(&buf); err != nil {
		c.JSON(consts.StatusInternalServerError, utils.H{"detail": err.Error()})
		return
	}
	c.Data(consts.StatusOK, "text/plain; version=0.0.4; charset=utf-8", buf.Bytes())
}

func (h *Handler) bindChat(c *app.RequestContext, endpoint string) (chatRequest, bool) {
	var req chatRequest
	if err := c.BindJSON(&req); err != nil {
		metrics.ChatRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		c.JSON(consts.StatusBadRequest, utils.H{"detail": "invalid request body: " + err.Error()})
		return req, false
	}
	if req.Message == nil {
		metrics.ChatRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		c.JSON(consts.StatusBadRequest, utils.H{"detail": "message is required"})
		return req, false
	}
	return req, true
}

// fail 参数错误返回 400，其余（含凭据缺失）返回 500
func (h *Handler) fail(c *app.RequestContext, endpoint string, err error) {
	metrics.ChatRequestsTotal.WithLabelValues(endpoint, "error").Inc()
	status := consts.StatusInternalServerError
	if errors.Is(err, perrors.ErrInvalidArg) {
		status = consts.StatusBadRequest
	}
	h.logger.Error("chat request failed", "endpoint", endpoint, "status", status, "error", err)
	c.JSON(status, utils.H{"detail": err.Error()})
}

func outcome(message string) string {
	if advisor.IsGreeting(message) {
		return "greeting"
	}
	return "ok"
}
