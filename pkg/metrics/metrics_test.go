package metrics

import (
	"bytes"
	"strings"
	"testing"
)

func TestWritePrometheus_ContainsRegisteredMetrics(t *testing.T) {
	ChatRequestsTotal.WithLabelValues("chat", "ok").Inc()
	SearchFailuresTotal.Inc()

	var buf bytes.Buffer
	if err := WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, name := range []string{"career_chat_requests_total", "career_search_failures_total"} {
		if !strings.Contains(out, name) {
			t.Errorf("output missing %s:\n%s", name, out)
		}
	}
}
