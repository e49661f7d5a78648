package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aselo_helpline/backend/internal/ai"
	"github.com/aselo_helpline/backend/internal/models"
)

func newTestAssistant(model ai.Model) *Assistant {
	return NewAssistant(model,
		ai.Options{Temperature: DefaultChatTemperature, MaxTokens: DefaultChatMaxTokens},
		ai.Options{Temperature: DefaultSummaryTemperature, MaxTokens: DefaultSummaryMaxTokens},
		zerolog.Nop(), nil)
}

func TestReplySendsHistoryThenNewMessage(t *testing.T) {
	model := &ai.MockModel{Replies: map[string]string{ai.TaskChat: "  I hear you.  "}}
	reply, err := newTestAssistant(model).Reply(context.Background(), transcript(), "They took my phone")
	require.NoError(t, err)
	assert.Equal(t, "I hear you.", reply)

	calls := model.Calls()
	require.Len(t, calls, 1)
	msgs := calls[0].Messages
	require.Len(t, msgs, 4)
	assert.Equal(t, []string{ai.RoleUser, ai.RoleAssistant, ai.RoleUser, ai.RoleUser},
		[]string{msgs[0].Role, msgs[1].Role, msgs[2].Role, msgs[3].Role})
	assert.Equal(t, "They took my phone", msgs[3].Content)

	opts := calls[0].Options
	assert.Equal(t, ai.TaskChat, opts.Task)
	assert.Equal(t, DefaultChatTemperature, opts.Temperature)
	assert.Greater(t, opts.Temperature, DefaultExtractionTemperature)
	assert.Equal(t, chatSystemPrompt, opts.System)
}

func TestReplyPropagatesModelErrors(t *testing.T) {
	model := &ai.MockModel{Err: &ai.Error{Code: ai.CodeRateLimited, Message: "slow down"}}
	_, err := newTestAssistant(model).Reply(context.Background(), nil, "hello")

	var aiErr *ai.Error
	require.True(t, errors.As(err, &aiErr))
	assert.Equal(t, ai.CodeRateLimited, aiErr.Code)
}

func TestReplyEmptyIsNoResponse(t *testing.T) {
	model := &ai.MockModel{Replies: map[string]string{ai.TaskChat: "   "}}
	_, err := newTestAssistant(model).Reply(context.Background(), nil, "hello")
	assert.Equal(t, ai.CodeNoResponse, ai.AsError(err).Code)
}

func TestReplyWithoutModelIsConfigError(t *testing.T) {
	_, err := newTestAssistant(nil).Reply(context.Background(), nil, "hello")
	assert.ErrorIs(t, err, ai.ErrNotConfigured)
	assert.Equal(t, ai.CodeConfig, ai.AsError(err).Code)
}

func TestSummarize(t *testing.T) {
	model := &ai.MockModel{Replies: map[string]string{ai.TaskSummary: "Keisha reports bullying."}}
	a := newTestAssistant(model)

	summary, err := a.Summarize(context.Background(), transcript())
	require.NoError(t, err)
	assert.Equal(t, "Keisha reports bullying.", summary)
	assert.Equal(t, DefaultSummaryTemperature, model.Calls()[0].Options.Temperature)

	_, err = a.Summarize(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyTranscript)

	failing := newTestAssistant(&ai.MockModel{Err: &ai.Error{Code: ai.CodeHTTP, Status: 500}})
	_, err = failing.Summarize(context.Background(), transcript())
	assert.Equal(t, ai.CodeHTTP, ai.AsError(err).Code)
}

func TestAnalyzeMetadata(t *testing.T) {
	model := &ai.MockModel{Replies: map[string]string{ai.TaskMetadata: "```json\n" +
		`{"locationOfIssue": "School", "okForCaseWorkerToCall": true, "wouldTheChildRecommendUsToAFriend": "maybe"}` +
		"\n```"}}
	meta, err := newTestAssistant(model).AnalyzeMetadata(context.Background(), transcript())
	require.NoError(t, err)
	assert.Equal(t, "School", deref(meta.LocationOfIssue))
	assert.Equal(t, "Yes", deref(meta.OkForCaseWorkerToCall))
	assert.Nil(t, meta.WouldTheChildRecommendUsToAFriend)
	assert.Nil(t, meta.ActionTaken)
}

func TestAnalyzeMetadataUnparseableIsEmpty(t *testing.T) {
	model := &ai.MockModel{Replies: map[string]string{ai.TaskMetadata: "nothing useful"}}
	meta, err := newTestAssistant(model).AnalyzeMetadata(context.Background(), transcript())
	require.NoError(t, err)
	assert.Equal(t, models.CallMetadata{}, meta)

	model = &ai.MockModel{Replies: map[string]string{ai.TaskMetadata: `{"locationOfIssue": `}}
	meta, err = newTestAssistant(model).AnalyzeMetadata(context.Background(), transcript())
	require.NoError(t, err)
	assert.Equal(t, models.CallMetadata{}, meta)
}

func TestAnalyzeMetadataPropagatesModelErrors(t *testing.T) {
	model := &ai.MockModel{Err: &ai.Error{Code: ai.CodeTimeout}}
	_, err := newTestAssistant(model).AnalyzeMetadata(context.Background(), transcript())
	assert.Equal(t, ai.CodeTimeout, ai.AsError(err).Code)
}
