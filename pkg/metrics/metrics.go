package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// 全局 Registry，供 API/CLI 注册与暴露
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(
		ChatRequestsTotal, LLMRequestDuration,
		SearchFailuresTotal, RateLimitWaitSeconds,
	)
}

// ChatRequestsTotal 对话请求总数（按入口与结果）
var ChatRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "career_chat_requests_total",
		Help: "对话请求总数",
	},
	[]string{"endpoint", "outcome"}, // outcome: greeting | ok | error
)

// LLMRequestDuration 模型调用耗时（秒）
var LLMRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "career_llm_request_duration_seconds",
		Help:    "模型调用耗时（秒）",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"provider"},
)

// SearchFailuresTotal 资源检索失败次数（失败被吞掉，仅计数）
var SearchFailuresTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "career_search_failures_total",
		Help: "资源检索失败次数",
	},
)

// RateLimitWaitSeconds 限流等待耗时（秒）
var RateLimitWaitSeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "career_rate_limit_wait_seconds",
		Help:    "限流等待耗时（秒）",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"kind", "provider"},
)

// WritePrometheus 将 Prometheus 文本格式写入 w（供 Hertz 等复用）
func WritePrometheus(w io.Writer) error {
	metrics, err := DefaultRegistry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range metrics {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
