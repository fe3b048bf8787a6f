package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scanlead/backend/internal/models"
)

// RegistrationStore handles registration persistence.
type RegistrationStore struct {
	pool *pgxpool.Pool
}

// NewRegistrationStore creates a postgres registration store.
func NewRegistrationStore(pool *pgxpool.Pool) *RegistrationStore {
	return &RegistrationStore{pool: pool}
}

// Create inserts a registration.
func (s *RegistrationStore) Create(ctx context.Context, r *models.Registration) error {
	const q = `INSERT INTO registrations (id, client_id, qr_code, name, email, phone, ticket_type)
		VALUES (gen_random_uuid(), $1, NULLIF($2,''), $3, $4, NULLIF($5,''), NULLIF($6,''))
		RETURNING id, created_at`
	return s.pool.QueryRow(ctx, q, r.ClientID, r.QRCode, r.Name, r.Email, r.Phone, r.TicketType).
		Scan(&r.ID, &r.CreatedAt)
}

// ListByClient returns a client's registrations in insertion order.
func (s *RegistrationStore) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Registration, error) {
	const q = `SELECT id, client_id, COALESCE(qr_code,''), name, email, COALESCE(phone,''), COALESCE(ticket_type,''), created_at
		FROM registrations WHERE client_id = $1 ORDER BY created_at ASC, id ASC`
	rows, err := s.pool.Query(ctx, q, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Registration
	for rows.Next() {
		var r models.Registration
		if err := rows.Scan(&r.ID, &r.ClientID, &r.QRCode, &r.Name, &r.Email, &r.Phone, &r.TicketType, &r.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

// CountByClient returns the number of registrations owned by a client.
func (s *RegistrationStore) CountByClient(ctx context.Context, clientID uuid.UUID) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM registrations WHERE client_id = $1`, clientID).Scan(&n)
	return n, err
}
