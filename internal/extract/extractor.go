// Package extract turns helpline conversations into case records, summaries
// and chat replies through a language model.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aselo_helpline/backend/internal/ai"
	"github.com/aselo_helpline/backend/internal/metrics"
	"github.com/aselo_helpline/backend/internal/models"
	"github.com/aselo_helpline/backend/internal/vocab"
)

// FallbackCallSummary is used whenever no summary could be produced.
const FallbackCallSummary = "Summary could not be generated automatically. Please enter the call summary manually."

const (
	DefaultExtractionTemperature = 0.1
	DefaultExtractionMaxTokens   = 2000
)

type Outcome int

const (
	// OutcomeExtracted carries a normalized record built from the model reply.
	OutcomeExtracted Outcome = iota
	// OutcomeFallback carries the minimal record for manual completion.
	OutcomeFallback
)

func (o Outcome) String() string {
	switch o {
	case OutcomeExtracted:
		return "extracted"
	case OutcomeFallback:
		return "fallback"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Fallback reasons.
const (
	ReasonEmptyTranscript = "empty_transcript"
	ReasonModelError      = "model_error"
	ReasonNoJSON          = "no_json"
	ReasonParseError      = "parse_error"
	ReasonPanic           = "panic"
)

type Result struct {
	Outcome Outcome
	Record  models.CaseRecord
	// Reason is set for OutcomeFallback only.
	Reason string
	// Inferred lists the inference rules applied to the subject.
	Inferred []string
}

// Extractor runs the single-pass extraction pipeline. It holds no per-call
// state and is safe for concurrent use.
type Extractor struct {
	Model   ai.Model
	Options ai.Options
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

func NewExtractor(model ai.Model, temperature float64, maxTokens int, logger zerolog.Logger, m *metrics.Metrics) *Extractor {
	return &Extractor{
		Model:   model,
		Options: ai.Options{Temperature: temperature, MaxTokens: maxTokens},
		Logger:  logger,
		Metrics: m,
	}
}

// Extract never fails: any error after the transcript is read degrades to
// the fallback record.
func (e *Extractor) Extract(ctx context.Context, messages []models.Message) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			e.Logger.Error().Interface("panic", r).Msg("extraction panicked")
			res = fallback(ReasonPanic)
		}
		e.Metrics.IncExtraction(res.Outcome.String(), res.Reason)
		e.Logger.Info().
			Str("outcome", res.Outcome.String()).
			Str("reason", res.Reason).
			Strs("inferred", res.Inferred).
			Int("messages", len(messages)).
			Dur("latency", time.Since(start)).
			Msg("case record extraction")
	}()

	transcript := FormatTranscript(messages)
	if transcript == "" {
		return fallback(ReasonEmptyTranscript)
	}

	opts := e.Options
	opts.Task = ai.TaskExtract
	opts.System = extractionSystemPrompt
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultExtractionMaxTokens
	}

	reply, err := complete(ctx, e.Model, e.Metrics, []ai.Message{
		{Role: ai.RoleUser, Content: extractionRequest + transcript},
	}, opts)
	if err != nil {
		e.Logger.Warn().Err(err).Msg("extraction model call failed")
		return fallback(ReasonModelError)
	}

	payload, ok := ai.ExtractJSON(reply)
	if !ok {
		e.Logger.Warn().Str("reply", truncate(reply, 200)).Msg("extraction reply has no JSON object")
		return fallback(ReasonNoJSON)
	}
	candidate, err := decodeObject(payload)
	if err != nil {
		e.Logger.Warn().Err(err).Str("payload", truncate(payload, 200)).Msg("extraction reply is not valid JSON")
		return fallback(ReasonParseError)
	}

	record := assemble(candidate)
	applied := inferSubject(&record.Child)
	return Result{Outcome: OutcomeExtracted, Record: record, Inferred: applied}
}

// FallbackRecord is the record returned when extraction cannot proceed:
// everything absent, every category empty, a placeholder summary.
func FallbackRecord() models.CaseRecord {
	return models.CaseRecord{
		Category: vocab.EmptyCategories(),
		Summary: models.CallSummary{
			CallSummary:      FallbackCallSummary,
			KeepConfidential: true,
		},
	}
}

func fallback(reason string) Result {
	return Result{Outcome: OutcomeFallback, Record: FallbackRecord(), Reason: reason}
}

func assemble(candidate map[string]any) models.CaseRecord {
	return models.CaseRecord{
		Child:    normalizeChild(section(candidate, "child", "subject")),
		Category: normalizeCategories(section(candidate, "category", "categories")),
		Summary:  normalizeSummary(section(candidate, "summary")),
	}
}

// section returns the first key holding an object. Anything else reads as
// an empty section.
func section(candidate map[string]any, keys ...string) map[string]any {
	for _, k := range keys {
		if m, ok := candidate[k].(map[string]any); ok {
			return m
		}
	}
	return map[string]any{}
}

func decodeObject(payload string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("reply is null")
	}
	return out, nil
}

// complete wraps a model call with metrics and normalizes its error to
// *ai.Error.
func complete(ctx context.Context, model ai.Model, m *metrics.Metrics, messages []ai.Message, opts ai.Options) (string, error) {
	if model == nil {
		return "", &ai.Error{Code: ai.CodeConfig, Message: "no model configured", Err: ai.ErrNotConfigured}
	}
	start := time.Now()
	reply, err := model.Complete(ctx, messages, opts)
	if err != nil {
		aiErr := ai.AsError(err)
		m.ObserveModel(opts.Task, aiErr.Code, time.Since(start))
		return "", aiErr
	}
	m.ObserveModel(opts.Task, "ok", time.Since(start))
	return reply, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
