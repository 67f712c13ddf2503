package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_MissingKey(t *testing.T) {
	_, err := NewClient(context.Background(), "gemini", "gemini-2.5-flash", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestNewClient_UnknownProvider(t *testing.T) {
	_, err := NewClient(context.Background(), "mistral", "m", "k", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported LLM provider")
}

func TestClaudeClient_SystemMovedToTopLevel(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("x-api-key"))
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"adımlar\":[\"a\"]}"}]}`))
	}))
	defer srv.Close()

	c, err := NewClaudeClient("claude-test", "k", srv.URL)
	require.NoError(t, err)
	out, err := c.ChatWithContext(context.Background(), []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "goal"},
	}, GenerateOptions{Temperature: 0.5})
	require.NoError(t, err)
	assert.Equal(t, `{"adımlar":["a"]}`, out)
	assert.Equal(t, "sys", body["system"])
	assert.EqualValues(t, claudeDefaultMaxTokens, body["max_tokens"])
	msgs, _ := body["messages"].([]any)
	assert.Len(t, msgs, 1)
}

func TestClaudeClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer srv.Close()

	c, err := NewClaudeClient("", "k", srv.URL)
	require.NoError(t, err)
	_, err = c.Chat([]Message{{Role: RoleUser, Content: "x"}}, GenerateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestClaudeClient_NoRetryOnFailure(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		_ = conn.Close()
	}))
	defer srv.Close()

	c, err := NewClaudeClient("", "k", srv.URL)
	require.NoError(t, err)
	_, err = c.ChatWithContext(context.Background(), []Message{{Role: RoleUser, Content: "x"}}, GenerateOptions{})
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClaudeClient_NoRetryOnServerError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := NewClaudeClient("", "k", srv.URL)
	require.NoError(t, err)
	_, err = c.ChatWithContext(context.Background(), []Message{{Role: RoleUser, Content: "x"}}, GenerateOptions{})
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestGeminiClient_GenerateContent(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-2.5-flash:generateContent")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"plan text"}]}}]}`))
	}))
	defer srv.Close()

	c, err := NewGeminiClient(context.Background(), "", "k", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", c.Model())
	out, err := c.ChatWithContext(context.Background(), []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "goal"},
	}, GenerateOptions{Temperature: 0.5})
	require.NoError(t, err)
	assert.Equal(t, "plan text", out)
	assert.Contains(t, body, "systemInstruction")
	contents, _ := body["contents"].([]any)
	assert.Len(t, contents, 1)
}

func TestOpenAIClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/chat/completions")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-test",` +
			`"choices":[{"index":0,"message":{"role":"assistant","content":"hello"},"finish_reason":"stop"}],` +
			`"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`))
	}))
	defer srv.Close()

	c, err := NewOpenAIClient(context.Background(), "gpt-test", "k", srv.URL)
	require.NoError(t, err)
	out, err := c.ChatWithContext(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, GenerateOptions{Temperature: 0.2})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, "openai", c.Provider())
}
