package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aselo_helpline/backend/internal/db"
	"github.com/aselo_helpline/backend/internal/extract"
	"github.com/aselo_helpline/backend/internal/models"
	"github.com/aselo_helpline/backend/internal/utils"
)

type ChatService struct {
	Store     db.Store
	Assistant *extract.Assistant
	Extractor *extract.Extractor
	Logger    zerolog.Logger
	Now       func() time.Time
}

// ProcessMessage stores the caller's message, asks the model for a reply and
// stores that too. A failed model call leaves the caller's message stored.
func (s *ChatService) ProcessMessage(ctx context.Context, sessionID, text string) (string, error) {
	history, err := s.messages(ctx, sessionID)
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", validationError("message", "required", "is required")
	}
	if err := s.Store.AppendMessage(ctx, sessionID, s.newMessage(models.SenderUser, text)); err != nil {
		return "", err
	}

	reply, err := s.Assistant.Reply(ctx, history, text)
	if err != nil {
		s.Logger.Error().Err(err).Str("session_id", sessionID).Msg("chat reply failed")
		return "", err
	}

	if err := s.Store.AppendMessage(ctx, sessionID, s.newMessage(models.SenderBot, reply)); err != nil {
		return "", err
	}
	return reply, nil
}

// Autofill extracts a case record from the session. Extraction itself never
// fails; only a missing session or a store failure is an error.
func (s *ChatService) Autofill(ctx context.Context, sessionID string) (extract.Result, error) {
	history, err := s.messages(ctx, sessionID)
	if err != nil {
		return extract.Result{}, err
	}

	res := s.Extractor.Extract(ctx, history)
	if phone := res.Record.Child.Phone1; phone != nil {
		prior, err := s.Store.FindSubmissionsByPhone(ctx, *phone, sessionID)
		if err != nil {
			s.Logger.Warn().Err(err).Str("session_id", sessionID).Str("phone_fp", utils.PhoneFingerprint(*phone)).Msg("repeat caller lookup failed")
		} else {
			repeat := len(prior) > 0
			res.Record.Summary.RepeatCaller = &repeat
			if repeat {
				s.Logger.Info().Str("session_id", sessionID).Str("phone_fp", utils.PhoneFingerprint(*phone)).Int("prior_submissions", len(prior)).Msg("repeat caller")
			}
		}
	}
	return res, nil
}

func (s *ChatService) Summarize(ctx context.Context, sessionID string) (string, error) {
	history, err := s.messages(ctx, sessionID)
	if err != nil {
		return "", err
	}
	summary, err := s.Assistant.Summarize(ctx, history)
	if errors.Is(err, extract.ErrEmptyTranscript) {
		return "", ErrSessionNotFound
	}
	return summary, err
}

func (s *ChatService) AnalyzeMetadata(ctx context.Context, sessionID string) (models.CallMetadata, error) {
	history, err := s.messages(ctx, sessionID)
	if err != nil {
		return models.CallMetadata{}, err
	}
	meta, err := s.Assistant.AnalyzeMetadata(ctx, history)
	if errors.Is(err, extract.ErrEmptyTranscript) {
		return models.CallMetadata{}, ErrSessionNotFound
	}
	return meta, err
}

func (s *ChatService) History(ctx context.Context, sessionID string) (models.Conversation, error) {
	conv, err := s.Store.GetConversation(ctx, sessionID)
	if errors.Is(err, db.ErrNotFound) {
		return models.Conversation{}, ErrSessionNotFound
	}
	return conv, err
}

func (s *ChatService) ListSessions(ctx context.Context) ([]string, error) {
	return s.Store.ListConversations(ctx)
}

func (s *ChatService) DeleteSession(ctx context.Context, sessionID string) error {
	err := s.Store.DeleteConversation(ctx, sessionID)
	if errors.Is(err, db.ErrNotFound) {
		return ErrSessionNotFound
	}
	return err
}

// messages returns the stored transcript; a missing or empty session is
// ErrSessionNotFound.
func (s *ChatService) messages(ctx context.Context, sessionID string) ([]models.Message, error) {
	conv, err := s.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(conv.Messages) == 0 {
		return nil, ErrSessionNotFound
	}
	return conv.Messages, nil
}

func (s *ChatService) newMessage(sender, text string) models.Message {
	return models.Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Message:   text,
		Timestamp: now(s.Now),
	}
}

func now(fn func() time.Time) time.Time {
	if fn != nil {
		return fn()
	}
	return time.Now().UTC()
}
