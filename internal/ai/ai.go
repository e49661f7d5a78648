package ai

import (
	"context"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Task names the kind of request so providers and metrics can tell them apart.
const (
	TaskChat     = "chat"
	TaskExtract  = "extract"
	TaskSummary  = "summary"
	TaskMetadata = "metadata"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Options struct {
	Task        string
	System      string
	Temperature float64
	MaxTokens   int
}

// Model is a single-turn text completion capability. Implementations return
// *Error for every failure so callers can branch on the code.
type Model interface {
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
}
