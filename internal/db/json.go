package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/aselo_helpline/backend/internal/models"
)

const jsonStoreVersion = "1.0.0"

type jsonDocument struct {
	Conversations   map[string]models.Conversation   `json:"conversations"`
	FormSubmissions map[string]models.FormSubmission `json:"form_submissions"`
	Metadata        jsonMetadata                     `json:"metadata"`
}

type jsonMetadata struct {
	CreatedAt   time.Time `json:"created_at"`
	Version     string    `json:"version"`
	Description string    `json:"description"`
}

// JSONStore keeps the whole database in one JSON file. A single mutex
// serialises every read-modify-write; each write replaces the file through a
// temp file and rename.
type JSONStore struct {
	path string
	now  func() time.Time

	mu  sync.Mutex
	doc jsonDocument
}

// OpenJSON loads path, creating it with an empty document when missing.
func OpenJSON(path string) (*JSONStore, error) {
	s := &JSONStore{path: path, now: func() time.Time { return time.Now().UTC() }}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.doc = jsonDocument{
			Conversations:   map[string]models.Conversation{},
			FormSubmissions: map[string]models.FormSubmission{},
			Metadata: jsonMetadata{
				CreatedAt:   s.now(),
				Version:     jsonStoreVersion,
				Description: "Aselo helpline local database",
			},
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
		if err := s.flush(); err != nil {
			return nil, err
		}
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read database: %w", err)
	}

	if err := json.Unmarshal(raw, &s.doc); err != nil {
		return nil, fmt.Errorf("decode database %s: %w", path, err)
	}
	if s.doc.Conversations == nil {
		s.doc.Conversations = map[string]models.Conversation{}
	}
	if s.doc.FormSubmissions == nil {
		s.doc.FormSubmissions = map[string]models.FormSubmission{}
	}
	return s, nil
}

func (s *JSONStore) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := os.Stat(s.path)
	return err
}

func (s *JSONStore) Close() {}

func (s *JSONStore) GetConversation(ctx context.Context, sessionID string) (models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.doc.Conversations[sessionID]
	if !ok {
		return models.Conversation{}, ErrNotFound
	}
	conv.Messages = append([]models.Message(nil), conv.Messages...)
	return conv, nil
}

func (s *JSONStore) AppendMessage(ctx context.Context, sessionID string, msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	prev, existed := s.doc.Conversations[sessionID]
	conv := prev
	if !existed {
		conv = models.Conversation{SessionID: sessionID, CreatedAt: now}
	}
	conv.Messages = append(append([]models.Message(nil), prev.Messages...), msg)
	conv.UpdatedAt = now
	s.doc.Conversations[sessionID] = conv

	if err := s.flush(); err != nil {
		if existed {
			s.doc.Conversations[sessionID] = prev
		} else {
			delete(s.doc.Conversations, sessionID)
		}
		return err
	}
	return nil
}

func (s *JSONStore) ListConversations(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.doc.Conversations))
	for id := range s.doc.Conversations {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (s *JSONStore) DeleteConversation(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.doc.Conversations[sessionID]
	if !ok {
		return ErrNotFound
	}
	delete(s.doc.Conversations, sessionID)
	if err := s.flush(); err != nil {
		s.doc.Conversations[sessionID] = prev
		return err
	}
	return nil
}

func (s *JSONStore) SaveSubmission(ctx context.Context, sub models.FormSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.doc.FormSubmissions[sub.SessionID]
	s.doc.FormSubmissions[sub.SessionID] = sub
	if err := s.flush(); err != nil {
		if existed {
			s.doc.FormSubmissions[sub.SessionID] = prev
		} else {
			delete(s.doc.FormSubmissions, sub.SessionID)
		}
		return err
	}
	return nil
}

func (s *JSONStore) GetSubmission(ctx context.Context, sessionID string) (models.FormSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.doc.FormSubmissions[sessionID]
	if !ok {
		return models.FormSubmission{}, ErrNotFound
	}
	return sub, nil
}

func (s *JSONStore) UpdateSubmissionStatus(ctx context.Context, sessionID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.doc.FormSubmissions[sessionID]
	if !ok {
		return ErrNotFound
	}
	prev := sub.Status
	sub.Status = status
	s.doc.FormSubmissions[sessionID] = sub
	if err := s.flush(); err != nil {
		sub.Status = prev
		s.doc.FormSubmissions[sessionID] = sub
		return err
	}
	return nil
}

func (s *JSONStore) ListSubmissions(ctx context.Context) ([]models.FormSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.FormSubmission, 0, len(s.doc.FormSubmissions))
	for _, sub := range s.doc.FormSubmissions {
		out = append(out, sub)
	}
	sortSubmissions(out)
	return out, nil
}

func (s *JSONStore) FindSubmissionsByPhone(ctx context.Context, phone, excludeSessionID string) ([]models.FormSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.FormSubmission
	if phone == "" {
		return out, nil
	}
	for id, sub := range s.doc.FormSubmissions {
		if id == excludeSessionID {
			continue
		}
		if p := sub.FormData.Child.Phone1; p != nil && *p == phone {
			out = append(out, sub)
		}
	}
	sortSubmissions(out)
	return out, nil
}

// flush must be called with mu held.
func (s *JSONStore) flush() error {
	raw, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode database: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write database: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write database: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write database: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write database: %w", err)
	}
	return nil
}

func sortSubmissions(subs []models.FormSubmission) {
	sort.Slice(subs, func(i, j int) bool {
		if !subs[i].SubmittedAt.Equal(subs[j].SubmittedAt) {
			return subs[i].SubmittedAt.Before(subs[j].SubmittedAt)
		}
		return subs[i].SessionID < subs[j].SessionID
	})
}
