package db

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aselo_helpline/backend/internal/models"
)

func TestPostgresStoreIntegration(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	s, err := NewPostgres(ctx, url)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	defer s.Close()
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("schema: %v", err)
	}

	session := "it-" + uuid.NewString()
	defer func() {
		_ = s.DeleteConversation(ctx, session)
		_, _ = s.Pool.Exec(ctx, `DELETE FROM form_submissions WHERE session_id = $1`, session)
	}()

	now := time.Now().UTC().Truncate(time.Millisecond)
	for _, m := range []models.Message{
		{ID: uuid.NewString(), Sender: models.SenderUser, Message: "hello", Timestamp: now},
		{ID: uuid.NewString(), Sender: models.SenderBot, Message: "hi", Timestamp: now},
	} {
		if err := s.AppendMessage(ctx, session, m); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	conv, err := s.GetConversation(ctx, session)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(conv.Messages) != 2 || conv.Messages[0].Message != "hello" {
		t.Fatalf("unexpected messages %+v", conv.Messages)
	}

	phone := "8765550999"
	sub := models.FormSubmission{
		SessionID:    session,
		SubmissionID: uuid.NewString(),
		SubmittedAt:  now,
		Status:       models.SubmissionSubmitted,
	}
	sub.FormData.Child.Phone1 = &phone
	sub.FormData.Summary.CallSummary = "integration"
	if err := s.SaveSubmission(ctx, sub); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.UpdateSubmissionStatus(ctx, session, models.SubmissionInReview); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.GetSubmission(ctx, session)
	if err != nil {
		t.Fatalf("get submission: %v", err)
	}
	if got.Status != models.SubmissionInReview || got.FormData.Summary.CallSummary != "integration" {
		t.Fatalf("unexpected submission %+v", got)
	}

	others, err := s.FindSubmissionsByPhone(ctx, phone, session)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	for _, o := range others {
		if o.SessionID == session {
			t.Fatalf("excluded session returned")
		}
	}

	if err := s.DeleteConversation(ctx, session); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetConversation(ctx, session); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
