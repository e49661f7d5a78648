package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aselo_helpline/backend/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	session_id TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS messages (
	seq BIGSERIAL PRIMARY KEY,
	id TEXT NOT NULL UNIQUE,
	session_id TEXT NOT NULL REFERENCES conversations(session_id) ON DELETE CASCADE,
	sender TEXT NOT NULL,
	message TEXT NOT NULL,
	sent_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS messages_session_idx ON messages(session_id, seq);

CREATE TABLE IF NOT EXISTS form_submissions (
	session_id TEXT PRIMARY KEY,
	submission_id TEXT NOT NULL,
	form_data JSONB NOT NULL,
	contact_email TEXT,
	phone1 TEXT,
	submitted_at TIMESTAMPTZ NOT NULL,
	status TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS form_submissions_phone1_idx ON form_submissions(phone1);
`

type PostgresStore struct {
	Pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{Pool: pool}, nil
}

// EnsureSchema creates the tables when they do not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.Pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *PostgresStore) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) GetConversation(ctx context.Context, sessionID string) (models.Conversation, error) {
	conv := models.Conversation{SessionID: sessionID}
	err := s.Pool.QueryRow(ctx,
		`SELECT created_at, updated_at FROM conversations WHERE session_id = $1`, sessionID,
	).Scan(&conv.CreatedAt, &conv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Conversation{}, ErrNotFound
	}
	if err != nil {
		return models.Conversation{}, err
	}

	rows, err := s.Pool.Query(ctx, `
		SELECT id, sender, message, sent_at
		FROM messages
		WHERE session_id = $1
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return models.Conversation{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.Sender, &m.Message, &m.Timestamp); err != nil {
			return models.Conversation{}, err
		}
		conv.Messages = append(conv.Messages, m)
	}
	return conv, rows.Err()
}

func (s *PostgresStore) AppendMessage(ctx context.Context, sessionID string, msg models.Message) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO conversations (session_id) VALUES ($1)
			ON CONFLICT (session_id) DO UPDATE SET updated_at = now()
		`, sessionID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO messages (id, session_id, sender, message, sent_at)
			VALUES ($1, $2, $3, $4, $5)
		`, msg.ID, sessionID, msg.Sender, msg.Message, msg.Timestamp)
		return err
	})
}

func (s *PostgresStore) ListConversations(ctx context.Context) ([]string, error) {
	rows, err := s.Pool.Query(ctx, `SELECT session_id FROM conversations ORDER BY session_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteConversation(ctx context.Context, sessionID string) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM conversations WHERE session_id = $1`, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SaveSubmission(ctx context.Context, sub models.FormSubmission) error {
	formData, err := json.Marshal(sub.FormData)
	if err != nil {
		return fmt.Errorf("encode form data: %w", err)
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO form_submissions (session_id, submission_id, form_data, contact_email, phone1, submitted_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id) DO UPDATE SET
			submission_id = EXCLUDED.submission_id,
			form_data = EXCLUDED.form_data,
			contact_email = EXCLUDED.contact_email,
			phone1 = EXCLUDED.phone1,
			submitted_at = EXCLUDED.submitted_at,
			status = EXCLUDED.status
	`, sub.SessionID, sub.SubmissionID, formData, sub.ContactEmail, sub.FormData.Child.Phone1, sub.SubmittedAt, sub.Status)
	return err
}

const submissionColumns = `session_id, submission_id, form_data, contact_email, submitted_at, status`

func (s *PostgresStore) GetSubmission(ctx context.Context, sessionID string) (models.FormSubmission, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+submissionColumns+` FROM form_submissions WHERE session_id = $1`, sessionID)
	sub, err := scanSubmission(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.FormSubmission{}, ErrNotFound
	}
	return sub, err
}

func (s *PostgresStore) UpdateSubmissionStatus(ctx context.Context, sessionID, status string) error {
	tag, err := s.Pool.Exec(ctx, `UPDATE form_submissions SET status = $2 WHERE session_id = $1`, sessionID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListSubmissions(ctx context.Context) ([]models.FormSubmission, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+submissionColumns+` FROM form_submissions ORDER BY submitted_at ASC, session_id ASC`)
	if err != nil {
		return nil, err
	}
	return collectSubmissions(rows)
}

func (s *PostgresStore) FindSubmissionsByPhone(ctx context.Context, phone, excludeSessionID string) ([]models.FormSubmission, error) {
	if phone == "" {
		return nil, nil
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT `+submissionColumns+`
		FROM form_submissions
		WHERE phone1 = $1 AND session_id <> $2
		ORDER BY submitted_at ASC, session_id ASC
	`, phone, excludeSessionID)
	if err != nil {
		return nil, err
	}
	return collectSubmissions(rows)
}

func collectSubmissions(rows pgx.Rows) ([]models.FormSubmission, error) {
	defer rows.Close()
	out := []models.FormSubmission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func scanSubmission(row pgx.Row) (models.FormSubmission, error) {
	var (
		sub      models.FormSubmission
		formData []byte
	)
	if err := row.Scan(&sub.SessionID, &sub.SubmissionID, &formData, &sub.ContactEmail, &sub.SubmittedAt, &sub.Status); err != nil {
		return models.FormSubmission{}, err
	}
	if err := json.Unmarshal(formData, &sub.FormData); err != nil {
		return models.FormSubmission{}, fmt.Errorf("decode form data: %w", err)
	}
	return sub, nil
}
