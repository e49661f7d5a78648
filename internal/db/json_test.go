package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aselo_helpline/backend/internal/models"
)

func openTemp(t *testing.T) (*JSONStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "database", "local_db.json")
	s, err := OpenJSON(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s, path
}

func msg(id, sender, text string) models.Message {
	return models.Message{ID: id, Sender: sender, Message: text, Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestJSONStoreCreatesDocument(t *testing.T) {
	_, path := openTemp(t)

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"conversations", "form_submissions", "metadata"} {
		if _, ok := doc[key]; !ok {
			t.Fatalf("expected %q in document, got %s", key, raw)
		}
	}
}

func TestJSONStoreConversationLifecycle(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)

	if _, err := s.GetConversation(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.AppendMessage(ctx, "s1", msg("m1", models.SenderUser, "hello")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.AppendMessage(ctx, "s1", msg("m2", models.SenderBot, "hi")); err != nil {
		t.Fatalf("append: %v", err)
	}

	reopened, err := OpenJSON(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	conv, err := reopened.GetConversation(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(conv.Messages) != 2 || conv.Messages[0].ID != "m1" || conv.Messages[1].ID != "m2" {
		t.Fatalf("unexpected messages %+v", conv.Messages)
	}
	if conv.CreatedAt.IsZero() || conv.UpdatedAt.Before(conv.CreatedAt) {
		t.Fatalf("unexpected timestamps %v %v", conv.CreatedAt, conv.UpdatedAt)
	}

	conv.Messages[0].Message = "mutated"
	again, _ := reopened.GetConversation(ctx, "s1")
	if again.Messages[0].Message != "hello" {
		t.Fatalf("store returned shared slice")
	}

	ids, _ := reopened.ListConversations(ctx)
	if len(ids) != 1 || ids[0] != "s1" {
		t.Fatalf("unexpected ids %v", ids)
	}

	if err := reopened.DeleteConversation(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := reopened.DeleteConversation(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestJSONStoreConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := s.AppendMessage(ctx, "s1", msg(fmt.Sprintf("m%d", i), models.SenderUser, "x")); err != nil {
				t.Errorf("append: %v", err)
			}
		}(i)
	}
	wg.Wait()

	reopened, err := OpenJSON(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	conv, _ := reopened.GetConversation(ctx, "s1")
	if len(conv.Messages) != 20 {
		t.Fatalf("expected 20 messages, got %d", len(conv.Messages))
	}
}

func TestJSONStoreSubmissions(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	phone := "8765550123"
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		sub := models.FormSubmission{
			SessionID:    id,
			SubmissionID: "sub-" + id,
			SubmittedAt:  base.Add(time.Duration(i) * time.Hour),
			Status:       models.SubmissionSubmitted,
		}
		if id != "c" {
			sub.FormData.Child.Phone1 = &phone
		}
		if err := s.SaveSubmission(ctx, sub); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	got, err := s.GetSubmission(ctx, "b")
	if err != nil || got.SubmissionID != "sub-b" {
		t.Fatalf("get: %+v %v", got, err)
	}
	if _, err := s.GetSubmission(ctx, "zzz"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	matches, _ := s.FindSubmissionsByPhone(ctx, phone, "a")
	if len(matches) != 1 || matches[0].SessionID != "b" {
		t.Fatalf("unexpected phone matches %+v", matches)
	}
	if none, _ := s.FindSubmissionsByPhone(ctx, "", ""); len(none) != 0 {
		t.Fatalf("empty phone must not match")
	}

	if err := s.UpdateSubmissionStatus(ctx, "a", models.SubmissionClosed); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.UpdateSubmissionStatus(ctx, "zzz", models.SubmissionClosed); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	all, _ := s.ListSubmissions(ctx)
	if len(all) != 3 || all[0].SessionID != "a" || all[0].Status != models.SubmissionClosed || all[2].SessionID != "c" {
		t.Fatalf("unexpected list %+v", all)
	}
}

func TestOpenJSONRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := OpenJSON(path); err == nil {
		t.Fatalf("expected decode error")
	}
}
