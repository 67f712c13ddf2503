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

// Package schedule 将有序任务列表映射为日历日期
package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

const (
	// DefaultWeeks 第一个任务距今的周数
	DefaultWeeks = 4
	// DateLayout ISO 日期格式
	DateLayout = "2006-01-02"
)

// Entry 单个任务及其日期
type Entry struct {
	Task string
	Date string
}

// Schedule 任务 → 日期；JSON 编码保持输入顺序
type Schedule struct {
	entries []Entry
	index   map[string]int
}

// New 返回空 Schedule
func New() *Schedule {
	return &Schedule{index: make(map[string]int)}
}

// Set 设置任务日期；重复任务保留首次出现的位置，日期以最后一次为准
func (s *Schedule) Set(task, date string) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[task]; ok {
		s.entries[i].Date = date
		return
	}
	s.index[task] = len(s.entries)
	s.entries = append(s.entries, Entry{Task: task, Date: date})
}

// Get 返回任务日期
func (s *Schedule) Get(task string) (string, bool) {
	if s == nil {
		return "", false
	}
	i, ok := s.index[task]
	if !ok {
		return "", false
	}
	return s.entries[i].Date, true
}

// Len 条目数
func (s *Schedule) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Entries 按插入顺序返回条目副本
func (s *Schedule) Entries() []Entry {
	if s == nil {
		return nil
	}
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Map 返回无序的 map 视图
func (s *Schedule) Map() map[string]string {
	m := make(map[string]string, s.Len())
	for _, e := range s.Entries() {
		m[e.Task] = e.Date
	}
	return m
}

// MarshalJSON 按插入顺序输出对象，不转义 HTML 与非 ASCII 字符
func (s *Schedule) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(&buf, e.Task); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeString(&buf, e.Date); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON 按文档顺序读取对象
func (s *Schedule) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("schedule: expected JSON object, got %v", tok)
	}
	*s = Schedule{index: make(map[string]int)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		task, ok := tok.(string)
		if !ok {
			return fmt.Errorf("schedule: unexpected key %v", tok)
		}
		var date string
		if err := dec.Decode(&date); err != nil {
			return fmt.Errorf("schedule: date for %q: %w", task, err)
		}
		s.Set(task, date)
	}
	_, err = dec.Token()
	return err
}

func writeString(buf *bytes.Buffer, v string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode 追加换行
	buf.Truncate(buf.Len() - 1)
	return nil
}

// Builder 按「偏移若干周，然后逐日递增」规则生成 Schedule
type Builder struct {
	weeks int
	now   func() time.Time
}

// BuilderOption Builder 选项
type BuilderOption func(*Builder)

// WithClock 注入当前时间（测试使用）
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = now }
}

// NewBuilder weeks <= 0 时使用 DefaultWeeks
func NewBuilder(weeks int, opts ...BuilderOption) *Builder {
	if weeks <= 0 {
		weeks = DefaultWeeks
	}
	b := &Builder{weeks: weeks, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Weeks 周偏移
func (b *Builder) Weeks() int { return b.weeks }

// Build 第 i 个任务（从 0 开始）的日期为 今天 + weeks 周 + i 天
func (b *Builder) Build(tasks []string) *Schedule {
	s := New()
	now := b.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for i, task := range tasks {
		s.Set(task, today.AddDate(0, 0, 7*b.weeks+i).Format(DateLayout))
	}
	return s
}

// SaveFile 以 4 空格缩进写入 JSON，保留非 ASCII 字符
func SaveFile(s *Schedule, path string) error {
	if s == nil {
		s = New()
	}
	raw, err := s.MarshalJSON()
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "    "); err != nil {
		return err
	}
	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("写入日程文件失败: %w", err)
	}
	return nil
}

// LoadFile 读取 SaveFile 写入的文件
func LoadFile(path string) (*Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := New()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("解析日程文件失败: %w", err)
	}
	return s, nil
}
