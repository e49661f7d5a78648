package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aselo_helpline/backend/internal/db"
	"github.com/aselo_helpline/backend/internal/models"
	"github.com/aselo_helpline/backend/internal/utils"
)

var submissionStatuses = map[string]struct{}{
	models.SubmissionSubmitted: {},
	models.SubmissionInReview:  {},
	models.SubmissionClosed:    {},
}

type FormService struct {
	Store     db.Store
	Validator *validator.Validate
	Logger    zerolog.Logger
	Now       func() time.Time
}

// Submit validates and stores a case record, replacing any earlier
// submission for the same session.
func (s *FormService) Submit(ctx context.Context, req models.FormSubmissionRequest) (models.FormSubmission, error) {
	req.SessionID = strings.TrimSpace(req.SessionID)
	if err := Validate(s.Validator, req); err != nil {
		return models.FormSubmission{}, err
	}
	fillCategories(&req.FormData)

	sub := models.FormSubmission{
		SessionID:    req.SessionID,
		SubmissionID: uuid.NewString(),
		FormData:     req.FormData,
		ContactEmail: req.ContactEmail,
		SubmittedAt:  now(s.Now),
		Status:       models.SubmissionSubmitted,
	}
	if err := s.Store.SaveSubmission(ctx, sub); err != nil {
		return models.FormSubmission{}, err
	}
	event := s.Logger.Info().Str("session_id", sub.SessionID).Str("submission_id", sub.SubmissionID)
	if phone := sub.FormData.Child.Phone1; phone != nil {
		event = event.Str("phone_fp", utils.PhoneFingerprint(*phone))
	}
	event.Msg("form submitted")
	return sub, nil
}

func (s *FormService) Get(ctx context.Context, sessionID string) (models.FormSubmission, error) {
	sub, err := s.Store.GetSubmission(ctx, sessionID)
	if errors.Is(err, db.ErrNotFound) {
		return models.FormSubmission{}, ErrSubmissionNotFound
	}
	return sub, err
}

func (s *FormService) UpdateStatus(ctx context.Context, sessionID, status string) error {
	status = strings.TrimSpace(status)
	if _, ok := submissionStatuses[status]; !ok {
		return validationError("status", "oneof", "must be one of submitted, in_review, closed")
	}
	err := s.Store.UpdateSubmissionStatus(ctx, sessionID, status)
	if errors.Is(err, db.ErrNotFound) {
		return ErrSubmissionNotFound
	}
	if err != nil {
		return err
	}
	s.Logger.Info().Str("session_id", sessionID).Str("status", status).Msg("form status updated")
	return nil
}

func (s *FormService) List(ctx context.Context) ([]models.FormSubmission, error) {
	return s.Store.ListSubmissions(ctx)
}
