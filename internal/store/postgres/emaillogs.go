package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scanlead/backend/internal/models"
	"github.com/scanlead/backend/internal/store"
)

// EmailLogStore handles email_logs persistence.
type EmailLogStore struct {
	pool *pgxpool.Pool
}

// NewEmailLogStore creates a postgres email log store.
func NewEmailLogStore(pool *pgxpool.Pool) *EmailLogStore {
	return &EmailLogStore{pool: pool}
}

// Create inserts an email log entry.
func (s *EmailLogStore) Create(ctx context.Context, e *models.EmailLog) error {
	const q = `INSERT INTO email_logs (id, client_id, registration_id, recipient, subject, status, error_message)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, NULLIF($6,''))
		RETURNING id, created_at`
	return s.pool.QueryRow(ctx, q, e.ClientID, e.RegistrationID, e.Recipient, e.Subject, e.Status, e.ErrorMessage).
		Scan(&e.ID, &e.CreatedAt)
}

// MarkSent sets status and sent_at for an email log entry.
func (s *EmailLogStore) MarkSent(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE email_logs SET status = 'sent', sent_at = NOW() WHERE id = $1 AND sent_at IS NULL`
	tag, err := s.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListByClient returns a client's email logs, newest first.
func (s *EmailLogStore) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.EmailLog, error) {
	const q = `SELECT id, client_id, registration_id, recipient, COALESCE(subject,''), status, sent_at, COALESCE(error_message,''), created_at
		FROM email_logs WHERE client_id = $1 ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, q, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.EmailLog
	for rows.Next() {
		var e models.EmailLog
		if err := rows.Scan(&e.ID, &e.ClientID, &e.RegistrationID, &e.Recipient, &e.Subject, &e.Status, &e.SentAt, &e.ErrorMessage, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
