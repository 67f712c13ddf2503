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
	"context"
	"encoding/json"
	"strings"
	"time"
)

// streamFrame SSE 数据帧
type streamFrame struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// eventWriter 由 hertz sse.Writer 实现
type eventWriter interface {
	WriteEvent(id, eventType string, data []byte) error
}

// writeFrames 按空白切词，每词一帧（除最后一个词外带尾随空格），最后写入 done 帧
func writeFrames(ctx context.Context, w eventWriter, text string, delay time.Duration) error {
	words := strings.Fields(text)
	for i, word := range words {
		chunk := word
		if i < len(words)-1 {
			chunk += " "
		}
		if err := writeFrame(w, streamFrame{Text: chunk}); err != nil {
			return err
		}
		if delay > 0 {
			t := time.NewTimer(delay)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			}
		}
	}
	return writeFrame(w, streamFrame{Text: "", Done: true})
}

func writeFrame(w eventWriter, f streamFrame) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return w.WriteEvent("", "", payload)
}
