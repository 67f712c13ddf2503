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

package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	fenceJSON  = "```json"
	fence      = "```"
	snippetLen = 200
)

// ErrMalformedResponse 模型输出在去掉代码围栏后仍不是合法 JSON
var ErrMalformedResponse = errors.New("malformed model response")

// MalformedResponseError 携带解码错误与清理后文本的前 200 个字符
type MalformedResponseError struct {
	Err     error
	Snippet string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("模型回复无法解析为 JSON: %v; 内容: %s...", e.Err, e.Snippet)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// Is 使 errors.Is(err, ErrMalformedResponse) 成立
func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

// StripFences 去掉首尾空白与可选的 ```json / ``` 围栏
func StripFences(raw string) string {
	content := strings.TrimSpace(raw)
	if strings.HasPrefix(content, fenceJSON) {
		content = content[len(fenceJSON):]
	} else if strings.HasPrefix(content, fence) {
		content = content[len(fence):]
	}
	content = strings.TrimSuffix(content, fence)
	return strings.TrimSpace(content)
}

// Extract 去围栏后将 raw 解码到 v；失败时返回 *MalformedResponseError
func Extract(raw string, v any) error {
	content := StripFences(raw)
	if err := json.Unmarshal([]byte(content), v); err != nil {
		return &MalformedResponseError{Err: err, Snippet: snippet(content)}
	}
	return nil
}

// ExtractValue 解码为通用 JSON 值（map[string]any、[]any、string 等）
func ExtractValue(raw string) (any, error) {
	var v any
	if err := Extract(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func snippet(s string) string {
	r := []rune(s)
	if len(r) > snippetLen {
		r = r[:snippetLen]
	}
	return string(r)
}
