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
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/protocol/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"career-planner/internal/advisor"
	"career-planner/internal/memory"
	"career-planner/internal/model/llm"
	"career-planner/internal/plan"
	"career-planner/internal/schedule"
	"career-planner/internal/search"
)

const testPlanReply = "```json\n{\"adımlar\": [\"Python öğren\", \"Proje yap\"], \"gerekli_beceriler\": [\"SQL\"]," +
	" \"önerilen_egitim\": [\"Coursera\"], \"deneyim\": [\"Staj\"]}\n```"

type fakeLLM struct {
	calls int
	reply string
}

func (f *fakeLLM) Chat(m []llm.Message, o llm.GenerateOptions) (string, error) {
	return f.ChatWithContext(context.Background(), m, o)
}

func (f *fakeLLM) ChatWithContext(context.Context, []llm.Message, llm.GenerateOptions) (string, error) {
	f.calls++
	return f.reply, nil
}

func (f *fakeLLM) Model() string    { return "fake" }
func (f *fakeLLM) Provider() string { return "fake" }

type fakeSearch struct{}

func (fakeSearch) Text(context.Context, string, int) ([]search.Result, error) {
	return []search.Result{{"title": "Kurs", "href": "https://example.org"}}, nil
}

type failingSearch struct{}

func (failingSearch) Text(context.Context, string, int) ([]search.Result, error) {
	return nil, errors.New("ratelimit")
}

// newTestHandler client 为 nil 时模拟未配置凭据
func newTestHandler(t *testing.T, client llm.Client) (*Handler, string) {
	t.Helper()
	return newTestHandlerWithSearch(t, client, fakeSearch{})
}

func newTestHandlerWithSearch(t *testing.T, client llm.Client, sc search.Client) (*Handler, string) {
	t.Helper()
	dir := t.TempDir()
	files, err := memory.NewFileProvider(dir)
	require.NoError(t, err)
	clock := schedule.WithClock(func() time.Time { return time.Date(2026, time.January, 21, 0, 0, 0, 0, time.UTC) })
	adv := advisor.New(
		plan.NewRequester(client),
		schedule.NewBuilder(4, clock),
		search.NewLookup(sc, nil),
		files,
	)
	return NewHandler(adv, WithStreamDelay(0)), dir
}

func perform(h *server.Hertz, method, path, body string) *ut.ResponseRecorder {
	return ut.PerformRequest(h.Engine, method, path,
		&ut.Body{Body: bytes.NewReader([]byte(body)), Len: len(body)},
		ut.Header{Key: "Content-Type", Value: "application/json"})
}

func serve(method, path string, fn app.HandlerFunc) *server.Hertz {
	h := server.Default(server.WithHostPorts(":0"))
	h.Handle(method, path, fn)
	return h
}

func TestRoot(t *testing.T) {
	handler, _ := newTestHandler(t, nil)
	h := serve("GET", "/", handler.Root)

	w := perform(h, "GET", "/", "")
	resp := w.Result()
	if resp.StatusCode() != 200 {
		t.Fatalf("Root status: got %d", resp.StatusCode())
	}
	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body(), &body))
	assert.Equal(t, "Kariyer Gelişim Ajanı API'sine hoş geldiniz!", body["message"])
	assert.Equal(t, "1.0.0", body["version"])
	assert.Equal(t, "active", body["status"])
}

func TestHealth(t *testing.T) {
	for _, tc := range []struct {
		name   string
		client llm.Client
		want   bool
	}{
		{"configured", &fakeLLM{}, true},
		{"missing key", nil, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			handler, _ := newTestHandler(t, tc.client)
			h := serve("GET", "/health", handler.Health)
			w := perform(h, "GET", "/health", "")
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Result().Body(), &body))
			assert.Equal(t, "healthy", body["status"])
			assert.Equal(t, tc.want, body["api_key_configured"])
		})
	}
}

func TestChat_Greeting(t *testing.T) {
	fake := &fakeLLM{reply: testPlanReply}
	handler, dir := newTestHandler(t, fake)
	h := serve("POST", "/chat", handler.Chat)

	w := perform(h, "POST", "/chat", `{"message": "merhaba", "user_id": "u1"}`)
	resp := w.Result()
	require.Equal(t, 200, resp.StatusCode(), string(resp.Body()))

	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body(), &body))
	assert.Equal(t, "Merhaba! Ben Kariyer Gelişim Ajanı. Size kariyer hedeflerinizde yardımcı olabilirim. "+
		"Kariyer hedefinizi benimle paylaşır mısınız?", body["response"])
	assert.NotContains(t, body, "career_plan")
	assert.Equal(t, 0, fake.calls)

	_, err := os.Stat(filepath.Join(dir, "memory_u1.json"))
	assert.True(t, os.IsNotExist(err), "greeting must not touch user memory")
}

func TestChat_Plan(t *testing.T) {
	handler, dir := newTestHandler(t, &fakeLLM{reply: testPlanReply})
	h := serve("POST", "/chat", handler.Chat)

	w := perform(h, "POST", "/chat", `{"message": "Veri Bilimci"}`)
	resp := w.Result()
	require.Equal(t, 200, resp.StatusCode(), string(resp.Body()))

	var body struct {
		Response   string            `json:"response"`
		CareerPlan map[string]any    `json:"career_plan"`
		Schedule   map[string]string `json:"schedule"`
		Resources  []map[string]any  `json:"resources"`
	}
	require.NoError(t, json.Unmarshal(resp.Body(), &body))
	assert.Contains(t, body.Response, "'Veri Bilimci' hedefi")
	assert.Equal(t, []any{"Python öğren", "Proje yap"}, body.CareerPlan["adımlar"])
	assert.Equal(t, map[string]string{"Python öğren": "2026-02-18", "Proje yap": "2026-02-19"}, body.Schedule)
	assert.Len(t, body.Resources, 1)

	// 未携带 user_id 时写入 default_user
	data, err := os.ReadFile(filepath.Join(dir, "memory_default_user.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"career_goal": "Veri Bilimci"`)
	assert.Contains(t, string(data), `"last_career_plan"`)
}

func TestChat_PartialPlanAndFailedSearch(t *testing.T) {
	handler, _ := newTestHandlerWithSearch(t, &fakeLLM{reply: `{"adımlar": []}`}, failingSearch{})
	h := serve("POST", "/chat", handler.Chat)

	w := perform(h, "POST", "/chat", `{"message": "Veri Bilimci"}`)
	resp := w.Result()
	require.Equal(t, 200, resp.StatusCode(), string(resp.Body()))

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(resp.Body(), &body))
	assert.JSONEq(t, `{"adımlar": []}`, string(body["career_plan"]))
	assert.Equal(t, "[]", string(body["resources"]))
	assert.NotContains(t, body, "schedule")
}

func TestChat_MissingCredential(t *testing.T) {
	handler, _ := newTestHandler(t, nil)
	h := serve("POST", "/chat", handler.Chat)

	w := perform(h, "POST", "/chat", `{"message": "Veri Bilimci"}`)
	resp := w.Result()
	assert.Equal(t, 500, resp.StatusCode())
	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body(), &body))
	assert.Equal(t, "API anahtarı yapılandırılmamış. Lütfen GOOGLE_GEMINI_API_KEY ayarlayın.", body["detail"])
}

func TestChat_MalformedModelReplyIs500(t *testing.T) {
	handler, _ := newTestHandler(t, &fakeLLM{reply: "bunu JSON yapamam"})
	h := serve("POST", "/chat", handler.Chat)

	w := perform(h, "POST", "/chat", `{"message": "Veri Bilimci"}`)
	assert.Equal(t, 500, w.Result().StatusCode())
	assert.Contains(t, string(w.Result().Body()), "bunu JSON yapamam")
}

func TestChat_BadRequests(t *testing.T) {
	handler, _ := newTestHandler(t, &fakeLLM{reply: testPlanReply})
	h := serve("POST", "/chat", handler.Chat)

	for _, body := range []string{`not json`, `{"user_id": "u1"}`, `{"message": "   "}`} {
		w := perform(h, "POST", "/chat", body)
		assert.Equal(t, 400, w.Result().StatusCode(), body)
	}
}

func TestChat_BodyWithoutContentType(t *testing.T) {
	handler, _ := newTestHandler(t, &fakeLLM{reply: testPlanReply})
	h := serve("POST", "/chat", handler.Chat)

	body := `{"message": "merhaba"}`
	w := ut.PerformRequest(h.Engine, "POST", "/chat", &ut.Body{Body: bytes.NewReader([]byte(body)), Len: len(body)})
	require.Equal(t, 200, w.Result().StatusCode(), string(w.Result().Body()))
	assert.Contains(t, string(w.Result().Body()), "Kariyer hedefinizi")
}

func TestChatStream_Greeting(t *testing.T) {
	fake := &fakeLLM{reply: testPlanReply}
	handler, _ := newTestHandler(t, fake)

	resp := streamChat(t, handler, `{"message": "Selam"}`)
	require.Equal(t, 200, resp.StatusCode())
	assert.True(t, strings.HasPrefix(string(resp.Header.ContentType()), "text/event-stream"))
	assert.Equal(t, "no-cache", string(resp.Header.Peek("Cache-Control")))

	frames := readFrames(t, resp)
	require.NotEmpty(t, frames)
	last := frames[len(frames)-1]
	assert.True(t, last.Done)
	assert.Equal(t, "", last.Text)

	var sb strings.Builder
	for _, f := range frames[:len(frames)-1] {
		assert.False(t, f.Done)
		sb.WriteString(f.Text)
	}
	assert.Equal(t, "👋 Merhaba! Ben Kariyer Gelişim Ajanı. ✨ Size kariyer hedeflerinizde yardımcı olabilirim. "+
		"Kariyer hedefinizi benimle paylaşır mısınız?", sb.String())
	assert.Equal(t, 0, fake.calls)
}

func TestChatStream_WireFormat(t *testing.T) {
	handler, _ := newTestHandler(t, &fakeLLM{reply: testPlanReply})

	resp := streamChat(t, handler, `{"message": "Merhaba"}`)
	require.Equal(t, 200, resp.StatusCode())
	assert.True(t, strings.HasPrefix(string(resp.Body()), `data: {"text":"👋 ","done":false}`+"\n\n"))
	assert.True(t, strings.HasSuffix(string(resp.Body()), `data: {"text":"","done":true}`+"\n\n"))
}

func TestChatStream_PlanPersists(t *testing.T) {
	handler, dir := newTestHandler(t, &fakeLLM{reply: testPlanReply})

	resp := streamChat(t, handler, `{"message": "Veri Bilimci", "user_id": "s1"}`)
	require.Equal(t, 200, resp.StatusCode())
	frames := readFrames(t, resp)
	assert.Equal(t, "🎯 ", frames[0].Text)
	assert.True(t, frames[len(frames)-1].Done)

	data, err := os.ReadFile(filepath.Join(dir, "memory_s1.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "last_career_plan")
}

func TestChatStream_MissingCredential(t *testing.T) {
	handler, _ := newTestHandler(t, nil)
	h := serve("POST", "/chat/stream", handler.ChatStream)
	w := perform(h, "POST", "/chat/stream", `{"message": "Veri Bilimci"}`)
	assert.Equal(t, 500, w.Result().StatusCode())
}

// streamChat 在真实监听端口上调用 ChatStream；ut.PerformRequest 不提供连接，无法承载 SSE 写出
func streamChat(t *testing.T, handler *Handler, body string) *protocol.Response {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	h := server.New(server.WithListener(ln))
	h.POST("/chat/stream", handler.ChatStream)
	go h.Run()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = h.Shutdown(ctx)
	})

	c, err := client.NewClient()
	require.NoError(t, err)
	req, resp := protocol.AcquireRequest(), &protocol.Response{}
	defer protocol.ReleaseRequest(req)
	req.SetMethod(consts.MethodPost)
	req.SetRequestURI("http://" + ln.Addr().String() + "/chat/stream")
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.SetBodyString(body)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Do(ctx, req, resp))
	return resp
}

func readFrames(t *testing.T, resp *protocol.Response) []streamFrame {
	t.Helper()
	r, err := sse.NewReader(resp)
	require.NoError(t, err)
	defer r.Close()
	var frames []streamFrame
	err = r.ForEach(context.Background(), func(e *sse.Event) error {
		var f streamFrame
		if err := json.Unmarshal(e.Data, &f); err != nil {
			return err
		}
		frames = append(frames, f)
		return nil
	})
	require.NoError(t, err)
	return frames
}
