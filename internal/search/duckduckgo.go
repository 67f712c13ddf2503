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

package search

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const (
	defaultDuckDuckGoURL = "https://html.duckduckgo.com/html/"
	defaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// DuckDuckGoConfig DuckDuckGo HTML 端点配置
type DuckDuckGoConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// DuckDuckGo 无需 API Key 的 HTML 检索客户端
type DuckDuckGo struct {
	baseURL string
	client  *resty.Client
}

// NewDuckDuckGo 创建客户端；不做重试
func NewDuckDuckGo(cfg DuckDuckGoConfig) *DuckDuckGo {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultDuckDuckGoURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("User-Agent", cfg.UserAgent)
	client.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetHeader("Referer", "https://html.duckduckgo.com/")

	return &DuckDuckGo{baseURL: cfg.BaseURL, client: client}
}

// Text 提交查询并解析结果页
func (d *DuckDuckGo) Text(ctx context.Context, query string, maxResults int) ([]Result, error) {
	resp, err := d.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{"q": query}).
		Post(d.baseURL)
	if err != nil {
		return nil, fmt.Errorf("DuckDuckGo 请求失败: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("DuckDuckGo 返回 HTTP %d", resp.StatusCode())
	}
	return ParseResults(resp.Body(), maxResults)
}

// ParseResults 从 DuckDuckGo HTML 结果页提取 title / href / body
func ParseResults(page []byte, maxResults int) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("解析 DuckDuckGo 页面失败: %w", err)
	}

	results := make([]Result, 0, maxResults)
	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if maxResults > 0 && len(results) >= maxResults {
			return false
		}
		if sel.HasClass("result--ad") {
			return true
		}
		link := sel.Find(".result__a").First()
		href, _ := link.Attr("href")
		title := strings.TrimSpace(link.Text())
		if href == "" || title == "" {
			return true
		}
		results = append(results, Result{
			"title": title,
			"href":  unwrapRedirect(href),
			"body":  strings.TrimSpace(sel.Find(".result__snippet").First().Text()),
		})
		return true
	})
	return results, nil
}

// unwrapRedirect 还原 //duckduckgo.com/l/?uddg=<url> 形式的跳转链接
func unwrapRedirect(href string) string {
	if !strings.Contains(href, "uddg=") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
