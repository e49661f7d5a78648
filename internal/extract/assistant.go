package extract

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aselo_helpline/backend/internal/ai"
	"github.com/aselo_helpline/backend/internal/metrics"
	"github.com/aselo_helpline/backend/internal/models"
)

const (
	DefaultChatTemperature    = 0.7
	DefaultChatMaxTokens      = 1000
	DefaultSummaryTemperature = 0.3
	DefaultSummaryMaxTokens   = 600
)

// ErrEmptyTranscript is returned by generators given nothing to work on.
var ErrEmptyTranscript = errors.New("conversation has no messages")

// Assistant produces chat replies, summaries and post-call metadata. Unlike
// Extractor it propagates model errors; there is no safe text to fall back to.
type Assistant struct {
	Model   ai.Model
	Chat    ai.Options
	Summary ai.Options
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

func NewAssistant(model ai.Model, chat, summary ai.Options, logger zerolog.Logger, m *metrics.Metrics) *Assistant {
	return &Assistant{Model: model, Chat: chat, Summary: summary, Logger: logger, Metrics: m}
}

// Reply answers userMessage given the conversation so far.
func (a *Assistant) Reply(ctx context.Context, history []models.Message, userMessage string) (string, error) {
	opts := a.Chat
	opts.Task = ai.TaskChat
	opts.System = chatSystemPrompt
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultChatMaxTokens
	}

	messages := append(ChatHistory(history), ai.Message{Role: ai.RoleUser, Content: userMessage})
	reply, err := complete(ctx, a.Model, a.Metrics, messages, opts)
	if err != nil {
		return "", err
	}
	return nonEmpty(reply)
}

// Summarize returns a plain-text summary of the conversation.
func (a *Assistant) Summarize(ctx context.Context, messages []models.Message) (string, error) {
	transcript := FormatTranscript(messages)
	if transcript == "" {
		return "", ErrEmptyTranscript
	}

	opts := a.Summary
	opts.Task = ai.TaskSummary
	opts.System = summarySystemPrompt
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultSummaryMaxTokens
	}

	reply, err := complete(ctx, a.Model, a.Metrics, []ai.Message{
		{Role: ai.RoleUser, Content: summaryRequest + transcript},
	}, opts)
	if err != nil {
		return "", err
	}
	return nonEmpty(reply)
}

// AnalyzeMetadata reads the post-call fields off the conversation. Every
// field is optional; an unparseable reply yields empty metadata.
func (a *Assistant) AnalyzeMetadata(ctx context.Context, messages []models.Message) (models.CallMetadata, error) {
	transcript := FormatTranscript(messages)
	if transcript == "" {
		return models.CallMetadata{}, ErrEmptyTranscript
	}

	opts := a.Summary
	opts.Task = ai.TaskMetadata
	opts.System = metadataSystemPrompt
	opts.Temperature = DefaultExtractionTemperature
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultSummaryMaxTokens
	}

	reply, err := complete(ctx, a.Model, a.Metrics, []ai.Message{
		{Role: ai.RoleUser, Content: metadataRequest + transcript},
	}, opts)
	if err != nil {
		return models.CallMetadata{}, err
	}

	candidate, err := decodeObject(ai.SanitizeJSON(reply))
	if err != nil {
		a.Logger.Warn().Err(err).Msg("metadata reply is not valid JSON")
		return models.CallMetadata{}, nil
	}
	return normalizeMetadata(candidate), nil
}

func nonEmpty(reply string) (string, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", &ai.Error{Code: ai.CodeNoResponse, Message: "model returned an empty reply"}
	}
	return reply, nil
}
