// Package postgres implements the store interfaces on a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scanlead/backend/internal/models"
	"github.com/scanlead/backend/internal/store"
)

// ClientStore handles client persistence.
type ClientStore struct {
	pool *pgxpool.Pool
}

// NewClientStore creates a postgres client store.
func NewClientStore(pool *pgxpool.Pool) *ClientStore {
	return &ClientStore{pool: pool}
}

const clientColumns = `id, name, email, COALESCE(phone,''), qr_code, url, role, password_hash, created_at, updated_at`

func scanClient(row pgx.Row) (*models.Client, error) {
	var c models.Client
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.QRCode, &c.URL, &c.Role, &c.Password, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a client. The single-statement insert keeps the write
// all-or-nothing: either the full profile lands or none of it.
func (s *ClientStore) Create(ctx context.Context, c *models.Client) error {
	const q = `INSERT INTO clients (id, name, email, phone, qr_code, url, role, password_hash)
		VALUES (gen_random_uuid(), $1, $2, NULLIF($3,''), $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	err := s.pool.QueryRow(ctx, q, c.Name, c.Email, c.Phone, c.QRCode, c.URL, string(c.Role), c.Password).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			if strings.Contains(err.Error(), "qr_code") {
				return store.ErrDuplicateQRCode
			}
			return store.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// List returns all clients, stable within one read.
func (s *ClientStore) List(ctx context.Context) ([]models.Client, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Client
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.QRCode, &c.URL, &c.Role, &c.Password, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// GetByID returns one client by ID.
func (s *ClientStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	const q = `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	return scanClient(s.pool.QueryRow(ctx, q, id))
}

// GetByEmail returns one client by email.
func (s *ClientStore) GetByEmail(ctx context.Context, email string) (*models.Client, error) {
	const q = `SELECT ` + clientColumns + ` FROM clients WHERE email = $1`
	return scanClient(s.pool.QueryRow(ctx, q, email))
}

// GetByQRCode resolves a client by its QR token. qr_code carries a unique
// index, so resolution stays O(lookup) as the table grows.
func (s *ClientStore) GetByQRCode(ctx context.Context, code string) (*models.Client, error) {
	const q = `SELECT ` + clientColumns + ` FROM clients WHERE qr_code = $1`
	return scanClient(s.pool.QueryRow(ctx, q, code))
}

// GetAdmin returns the reserved admin client.
func (s *ClientStore) GetAdmin(ctx context.Context) (*models.Client, error) {
	const q = `SELECT ` + clientColumns + ` FROM clients WHERE role = 'admin'`
	return scanClient(s.pool.QueryRow(ctx, q))
}

// UpdateURL sets the landing-page path for a client.
func (s *ClientStore) UpdateURL(ctx context.Context, id uuid.UUID, url string) error {
	const q = `UPDATE clients SET url = $2, updated_at = NOW() WHERE id = $1`
	tag, err := s.pool.Exec(ctx, q, id, url)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// UpdatePassword sets a new password hash for a client.
func (s *ClientStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	const q = `UPDATE clients SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	tag, err := s.pool.Exec(ctx, q, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Delete removes a client. Registrations and scans go with it via
// ON DELETE CASCADE, so client-scoped queries can no longer reach them.
func (s *ClientStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique")
}
