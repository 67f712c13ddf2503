package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"healthy","api_key_configured":true}`)
	})
	mux.HandleFunc("/chat", func(w http.ResponseWriter, r *http.Request) {
		var body chatBody
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		if body.Message == "boom" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"detail":"API anahtarı yapılandırılmamış."}`)
			return
		}
		_, _ = io.WriteString(w, `{"response":"ok `+body.UserID+`","schedule":{"A":"2026-02-18"}}`)
	})
	mux.HandleFunc("/chat/stream", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: {\"text\":\"Merhaba \",\"done\":false}\n\n"+
			"data: {\"text\":\"dünya\",\"done\":false}\n\n"+
			"data: {\"text\":\"\",\"done\":true}\n\n")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	t.Setenv("CAREER_API_URL", srv.URL)
	return srv
}

func TestGetHealth(t *testing.T) {
	newTestAPI(t)
	h, err := getHealth()
	require.NoError(t, err)
	assert.Equal(t, "healthy", h["status"])
	assert.Equal(t, true, h["api_key_configured"])
}

func TestPostChat(t *testing.T) {
	newTestAPI(t)
	reply, err := postChat("Veri Bilimci", "u1")
	require.NoError(t, err)
	assert.Equal(t, "ok u1", reply.Response)
	assert.Equal(t, map[string]string{"A": "2026-02-18"}, reply.Schedule)

	_, err = postChat("boom", "")
	assert.EqualError(t, err, "POST /chat: API anahtarı yapılandırılmamış.")
}

func TestPostChatStream(t *testing.T) {
	newTestAPI(t)
	var sb strings.Builder
	require.NoError(t, postChatStream("selam", "", func(s string) { sb.WriteString(s) }))
	assert.Equal(t, "Merhaba dünya", sb.String())
}

func TestAPIBaseURLDefault(t *testing.T) {
	t.Setenv("CAREER_API_URL", "")
	assert.Equal(t, "http://localhost:8000", apiBaseURL())
}
