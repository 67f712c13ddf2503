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

// Package console 交互式单次规划流程：读取目标 → 生成规划 → 排期落盘 → 推荐资源
package console

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"career-planner/internal/memory"
	"career-planner/internal/plan"
	"career-planner/internal/schedule"
	"career-planner/internal/search"
	"career-planner/pkg/log"
)

const (
	defaultSchedulePath = "career_schedule.json"
	defaultMaxResources = 5
	resourceQuerySuffix = " için kaynaklar"
)

var (
	heavyRule = strings.Repeat("=", 60)
	lightRule = strings.Repeat("-", 60)
)

// Console 单次运行的控制台流程
type Console struct {
	requester    *plan.Requester
	builder      *schedule.Builder
	lookup       *search.Lookup
	store        memory.Store
	schedulePath string
	maxResources int
	in           io.Reader
	out          io.Writer
	logger       *log.Logger
}

// Option Console 选项
type Option func(*Console)

// WithIO 替换标准输入输出（测试使用）
func WithIO(in io.Reader, out io.Writer) Option {
	return func(c *Console) {
		c.in = in
		c.out = out
	}
}

// WithSchedulePath 排期文件路径
func WithSchedulePath(path string) Option {
	return func(c *Console) {
		if path != "" {
			c.schedulePath = path
		}
	}
}

// WithMaxResources 推荐资源数上限
func WithMaxResources(n int) Option {
	return func(c *Console) {
		if n > 0 {
			c.maxResources = n
		}
	}
}

// WithLogger 设置日志
func WithLogger(l *log.Logger) Option {
	return func(c *Console) { c.logger = l }
}

// New 创建 Console；store 由调用方打开并关闭
func New(requester *plan.Requester, builder *schedule.Builder, lookup *search.Lookup, store memory.Store, opts ...Option) *Console {
	c := &Console{
		requester:    requester,
		builder:      builder,
		lookup:       lookup,
		store:        store,
		schedulePath: defaultSchedulePath,
		maxResources: defaultMaxResources,
		in:           os.Stdin,
		out:          os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = log.OrDiscard(c.logger)
	return c
}

// Run 执行完整流程；凭据缺失时打印提示并返回 nil
func (c *Console) Run(ctx context.Context) error {
	c.println(heavyRule)
	c.println("Kariyer Planlayıcı Ajan Başlatıldı.")
	c.println(heavyRule)

	goal, err := c.readGoal()
	if err != nil {
		return err
	}
	if err := c.store.UpdateGoal(ctx, goal); err != nil {
		return err
	}

	if !c.requester.Configured() {
		c.println("HATA: GOOGLE_GEMINI_API_KEY çevre değişkeni bulunamadı.")
		c.println("Lütfen .env dosyasında API anahtarınızı ayarlayın.")
		return nil
	}

	c.println("\n[1/3] Kariyer planı oluşturuluyor...")
	p, err := c.requester.Ask(ctx, goal)
	if err != nil {
		return err
	}
	pretty, err := indentJSON(p)
	if err != nil {
		return err
	}
	c.println("\n✓ Oluşturulan Kariyer Planı:")
	c.println(lightRule)
	c.println(pretty)
	c.println(lightRule)

	c.println("\n[2/3] Görev zaman çizelgesi hazırlanıyor...")
	if len(p.Steps) > 0 {
		if err := schedule.SaveFile(c.builder.Build(p.Steps), c.schedulePath); err != nil {
			return err
		}
		c.printf("✓ Görev zaman çizelgesi '%s' dosyasına kaydedildi.\n", c.schedulePath)
	} else {
		c.println("⚠ Kariyer planında adım bulunamadı.")
	}

	c.println("\n[3/3] İlgili kaynaklar aranıyor...")
	resources := c.lookup.Resources(ctx, goal+resourceQuerySuffix, c.maxResources)
	c.println("\n✓ Önerilen Kaynaklar:")
	c.println(lightRule)
	for i, r := range resources {
		c.printf("%d. %s\n", i+1, describe(r))
	}
	c.println(lightRule)

	if err := c.store.Set(ctx, memory.KeyRecommendedResources, resources); err != nil {
		return err
	}

	c.println("\n" + heavyRule)
	c.println("✓ Kariyer planlama süreci başarıyla tamamlandı!")
	c.println(heavyRule)
	c.logger.Info("console run completed", "steps", len(p.Steps), "resources", len(resources))
	return nil
}

// readGoal 读取一行目标，保留原样（仅去掉行尾换行）
func (c *Console) readGoal() (string, error) {
	c.printf("\nKariyer hedefinizi girin: ")
	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("kariyer hedefi okunamadı: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func indentJSON(v any) (string, error) {
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// describe 以 "标题 - 链接" 的形式输出一条资源，缺字段时回退到 JSON
func describe(r search.Result) string {
	title, _ := r["title"].(string)
	href, _ := r["href"].(string)
	if title != "" && href != "" {
		return title + " - " + href
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprint(r)
	}
	return string(raw)
}
