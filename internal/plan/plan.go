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

// Package plan 向模型请求职业规划并解析其结构化回复
package plan

// CareerPlan 模型返回的职业规划；JSON 键与系统提示中约定的格式一致，模型未给出的键不输出
type CareerPlan struct {
	Steps      []string `json:"adımlar,omitzero"`
	Skills     []string `json:"gerekli_beceriler,omitzero"`
	Training   []string `json:"önerilen_egitim,omitzero"`
	Experience []string `json:"deneyim,omitzero"`
}

// FirstSteps 返回前 n 个步骤；n <= 0 时返回全部
func (p *CareerPlan) FirstSteps(n int) []string {
	if p == nil {
		return nil
	}
	if n <= 0 || n >= len(p.Steps) {
		return p.Steps
	}
	return p.Steps[:n]
}
