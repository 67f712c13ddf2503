package plan

import (
	"fmt"

	"career-planner/internal/model/llm"
)

// SystemPrompt 要求模型只返回四个键的 JSON
const SystemPrompt = "Sen bir kariyer planlama asistanısın. Kullanıcının kariyer hedeflerine göre detaylı bir kariyer planı oluşturmalısın." +
	"Kariyer planı; gerekli beceriler, eğitim, deneyim ve önerilen adımları içermelidir." +
	"Hedef kullanıcının kariyer hedefi doğrultusunda özelleştirilmelidir." +
	"Sonuçlar *sadece* aşağıdaki JSON formatında olmalıdır:\n" +
	"{\n \"adımlar\": [\"...\"],\n \"gerekli_beceriler\": [\"...\"],\n \"önerilen_egitim\": [\"...\"],\n \"deneyim\": [\"...\"]\n}\n"

const userPromptTemplate = "Kariyer hedefim: %s. Bana bu hedefe ulaşmak için ayrıntılı bir kariyer planı oluşturur musun?"

// BuildMessages 构造固定的两轮对话：系统指令 + 原样嵌入目标的用户消息
func BuildMessages(goal string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: SystemPrompt},
		{Role: llm.RoleUser, Content: fmt.Sprintf(userPromptTemplate, goal)},
	}
}
