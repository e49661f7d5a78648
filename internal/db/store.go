package db

import (
	"context"
	"errors"

	"github.com/aselo_helpline/backend/internal/models"
)

// ErrNotFound is returned when a conversation or submission does not exist.
var ErrNotFound = errors.New("not found")

// Store persists conversations and form submissions. Submissions are keyed by
// the session they were filed for; saving again replaces the previous one.
type Store interface {
	Ping(ctx context.Context) error
	Close()

	GetConversation(ctx context.Context, sessionID string) (models.Conversation, error)
	AppendMessage(ctx context.Context, sessionID string, msg models.Message) error
	ListConversations(ctx context.Context) ([]string, error)
	DeleteConversation(ctx context.Context, sessionID string) error

	SaveSubmission(ctx context.Context, sub models.FormSubmission) error
	GetSubmission(ctx context.Context, sessionID string) (models.FormSubmission, error)
	UpdateSubmissionStatus(ctx context.Context, sessionID, status string) error
	ListSubmissions(ctx context.Context) ([]models.FormSubmission, error)
	// FindSubmissionsByPhone returns submissions of other sessions whose
	// child.phone1 equals phone.
	FindSubmissionsByPhone(ctx context.Context, phone, excludeSessionID string) ([]models.FormSubmission, error)
}
