package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockModel is a deterministic offline model. Replies overrides the canned
// answer per task; Err, when set, is returned for every call.
type MockModel struct {
	Replies map[string]string
	Err     error

	mu    sync.Mutex
	calls []MockCall
}

type MockCall struct {
	Messages []Message
	Options  Options
}

func (m *MockModel) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Messages: append([]Message(nil), messages...), Options: opts})
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", newError(CodeTimeout, "model request cancelled", err)
	}
	if m.Err != nil {
		return "", m.Err
	}
	if reply, ok := m.Replies[opts.Task]; ok {
		return reply, nil
	}

	last := ""
	if len(messages) > 0 {
		last = strings.TrimSpace(messages[len(messages)-1].Content)
	}
	switch opts.Task {
	case TaskExtract:
		lines := strings.Count(last, "\n") + 1
		return fmt.Sprintf("```json\n{\"child\": {}, \"category\": {}, \"summary\": {\"callSummary\": \"Mock summary of a %d-line conversation.\", \"keepConfidential\": true}}\n```", lines), nil
	case TaskMetadata:
		return "{}", nil
	case TaskSummary:
		return "Mock summary: " + firstLine(last), nil
	default:
		if last == "" {
			return "Hello, I'm here to listen. What would you like to talk about?", nil
		}
		return "Thank you for telling me. You said: " + firstLine(last), nil
	}
}

// Calls returns the requests received so far.
func (m *MockModel) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}
