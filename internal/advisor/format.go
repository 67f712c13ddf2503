package advisor

import (
	"fmt"
	"strings"

	"career-planner/internal/plan"
)

const (
	maxStreamSteps    = 5
	maxStreamSkills   = 5
	maxStreamTraining = 3
)

var (
	heavyRule = strings.Repeat("═", 50)
	lightRule = strings.Repeat("─", 40)
)

// FormatPlan 渲染流式回复文本；字段缺失（nil）时省略对应段落
func FormatPlan(goal string, p *plan.CareerPlan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🎯 Harika! '%s' hedefi için size detaylı bir kariyer planı hazırladım!\n\n", goal)
	sb.WriteString(heavyRule + "\n\n")

	if p.Steps != nil {
		writeSection(&sb, "📋 İZLENECEK ADIMLAR")
		for i, step := range head(p.Steps, maxStreamSteps) {
			fmt.Fprintf(&sb, "  %d️⃣ %s\n\n", i+1, step)
		}
		sb.WriteString("\n")
	}
	if p.Skills != nil {
		writeSection(&sb, "💡 GEREKLİ BECERİLER")
		for _, skill := range head(p.Skills, maxStreamSkills) {
			fmt.Fprintf(&sb, "  ✓ %s\n\n", skill)
		}
		sb.WriteString("\n")
	}
	if p.Training != nil {
		writeSection(&sb, "📚 ÖNERİLEN EĞİTİMLER")
		for _, edu := range head(p.Training, maxStreamTraining) {
			fmt.Fprintf(&sb, "  📖 %s\n\n", edu)
		}
		sb.WriteString("\n")
	}

	sb.WriteString(heavyRule + "\n\n")
	sb.WriteString("💼 Başarılar dilerim! Herhangi bir sorunuz varsa sormaktan çekinmeyin.")
	return sb.String()
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(title + "\n")
	sb.WriteString(lightRule + "\n\n")
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
