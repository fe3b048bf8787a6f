package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scanlead/backend/internal/models"
	"github.com/scanlead/backend/internal/store"
)

// ScanStore handles QR scan event persistence.
type ScanStore struct {
	pool *pgxpool.Pool
}

// NewScanStore creates a postgres scan store.
func NewScanStore(pool *pgxpool.Pool) *ScanStore {
	return &ScanStore{pool: pool}
}

// Record inserts a scan event.
func (s *ScanStore) Record(ctx context.Context, sc *models.Scan) error {
	const q = `INSERT INTO scans (id, client_id, converted)
		VALUES (gen_random_uuid(), $1, $2)
		RETURNING id, at`
	return s.pool.QueryRow(ctx, q, sc.ClientID, sc.Converted).Scan(&sc.ID, &sc.At)
}

// MarkConverted flags a scan as having produced a registration.
func (s *ScanStore) MarkConverted(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE scans SET converted = TRUE WHERE id = $1`
	tag, err := s.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListByClient returns all scan events for a client, oldest first.
func (s *ScanStore) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Scan, error) {
	const q = `SELECT id, client_id, converted, at FROM scans WHERE client_id = $1 ORDER BY at ASC, id ASC`
	rows, err := s.pool.Query(ctx, q, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Scan
	for rows.Next() {
		var sc models.Scan
		if err := rows.Scan(&sc.ID, &sc.ClientID, &sc.Converted, &sc.At); err != nil {
			return nil, err
		}
		list = append(list, sc)
	}
	return list, rows.Err()
}
