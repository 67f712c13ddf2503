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

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

func apiBaseURL() string {
	if u := os.Getenv("CAREER_API_URL"); u != "" {
		return u
	}
	return "http://localhost:8000"
}

func newClient() *resty.Client {
	return resty.New().
		SetBaseURL(apiBaseURL()).
		SetTimeout(120 * time.Second).
		SetHeader("Content-Type", "application/json")
}

type chatReply struct {
	Response   string                   `json:"response"`
	CareerPlan map[string]interface{}   `json:"career_plan"`
	Schedule   map[string]string        `json:"schedule"`
	Resources  []map[string]interface{} `json:"resources"`
}

type chatBody struct {
	Message string `json:"message"`
	UserID  string `json:"user_id,omitempty"`
}

func getHealth() (map[string]interface{}, error) {
	var out map[string]interface{}
	resp, err := newClient().R().
		SetResult(&out).
		Get("/health")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("GET /health: %s", resp.String())
	}
	return out, nil
}

func postChat(message, userID string) (*chatReply, error) {
	var out chatReply
	resp, err := newClient().R().
		SetBody(chatBody{Message: message, UserID: userID}).
		SetResult(&out).
		Post("/chat")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("POST /chat: %s", detail(resp.Body()))
	}
	return &out, nil
}

// postChatStream 读取 SSE 帧，收到 done 帧后返回
func postChatStream(message, userID string, onText func(string)) error {
	resp, err := newClient().R().
		SetBody(chatBody{Message: message, UserID: userID}).
		SetDoNotParseResponse(true).
		Post("/chat/stream")
	if err != nil {
		return err
	}
	body := resp.RawBody()
	defer body.Close()
	if resp.StatusCode() != http.StatusOK {
		raw, _ := io.ReadAll(body)
		return fmt.Errorf("POST /chat/stream: %s", detail(raw))
	}

	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var frame struct {
			Text string `json:"text"`
			Done bool   `json:"done"`
		}
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &frame); err != nil {
			return fmt.Errorf("解析 SSE 帧失败: %w", err)
		}
		if frame.Done {
			return nil
		}
		onText(frame.Text)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return fmt.Errorf("stream 在 done 帧之前结束")
}

// detail 提取 {"detail": "..."} 错误信息
func detail(body []byte) string {
	var e struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Detail != "" {
		return e.Detail
	}
	return string(body)
}
