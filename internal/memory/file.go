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

package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	perrors "career-planner/pkg/errors"
)

// FileStore 单个 JSON 文件；每次 Set 整体重写文件
type FileStore struct {
	*kv
	path string
}

// OpenFile 文件不存在时先写入 {}；已有内容不是合法 JSON 对象时返回错误
func OpenFile(path string) (*FileStore, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
			return nil, perrors.Wrap(err, "创建记忆文件失败")
		}
	} else if err != nil {
		return nil, perrors.Wrap(err, "读取记忆文件失败")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, perrors.Wrap(err, "读取记忆文件失败")
	}
	var data map[string]any
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, perrors.Wrapf(err, "解析记忆文件 %s 失败", path)
	}

	s := &FileStore{path: path}
	s.kv = newKV(data, s.write)
	return s, nil
}

// Path 文件路径
func (s *FileStore) Path() string { return s.path }

// Close 文件后端无需释放资源
func (s *FileStore) Close() error { return nil }

func (s *FileStore) write(_ context.Context, _ string, _ []byte, data map[string]any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(data); err != nil {
		return err
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return perrors.Wrap(err, "写入记忆文件失败")
	}
	return nil
}
