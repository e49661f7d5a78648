package extract

import (
	"strings"

	"github.com/aselo_helpline/backend/internal/ai"
	"github.com/aselo_helpline/backend/internal/models"
)

const (
	callerLabel    = "Caller"
	counselorLabel = "Counselor"
)

// FormatTranscript renders messages as labeled lines in stored order.
// Blank messages are skipped.
func FormatTranscript(messages []models.Message) string {
	var b strings.Builder
	for _, m := range messages {
		text := strings.TrimSpace(m.Message)
		if text == "" {
			continue
		}
		label := counselorLabel
		if m.Sender == models.SenderUser {
			label = callerLabel
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(text)
	}
	return b.String()
}

// ChatHistory maps stored messages to model roles: the caller is the user,
// everything else is the assistant.
func ChatHistory(messages []models.Message) []ai.Message {
	out := make([]ai.Message, 0, len(messages))
	for _, m := range messages {
		role := ai.RoleAssistant
		if m.Sender == models.SenderUser {
			role = ai.RoleUser
		}
		out = append(out, ai.Message{Role: role, Content: m.Message})
	}
	return out
}
