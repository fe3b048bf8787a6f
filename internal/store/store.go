// Package store defines the data-access contract for clients, registrations,
// scans, and email logs. Two interchangeable implementations exist: the
// postgres adapter for production and an in-memory fake for demo mode and
// tests, selected by STORE_DRIVER.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/scanlead/backend/internal/models"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	// Callers can distinguish it from transport failures with errors.Is.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateQRCode is returned when a client's QR token collides with
	// an existing one; the caller regenerates and retries.
	ErrDuplicateQRCode = errors.New("qr code already exists")
	// ErrDuplicateEmail is returned when a client email is already taken.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrNoFallbackOwner is returned when a registration's QR token resolves
	// to no client and no reserved admin account exists to absorb it. This is
	// a configuration error and must be surfaced, never swallowed.
	ErrNoFallbackOwner = errors.New("no fallback owner for registration")
)

// ValidationError reports bad or missing user input. Handlers map it to a
// 400 response with the field message shown inline.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for a field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ClientStore persists client (tenant) records.
type ClientStore interface {
	// Create persists a client. A zero ID is assigned by the store. Fails
	// with ErrDuplicateQRCode or ErrDuplicateEmail on unique-key conflicts;
	// nothing is persisted on failure.
	Create(ctx context.Context, c *models.Client) error
	List(ctx context.Context) ([]models.Client, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
	GetByEmail(ctx context.Context, email string) (*models.Client, error)
	// GetByQRCode resolves a client by its QR token via an index, not a scan.
	GetByQRCode(ctx context.Context, code string) (*models.Client, error)
	// GetAdmin returns the reserved admin client, or ErrNotFound before
	// system initialization.
	GetAdmin(ctx context.Context) (*models.Client, error)
	UpdateURL(ctx context.Context, id uuid.UUID, url string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	// Delete removes the client and cascades its registrations and scans.
	// Fails with ErrNotFound when the id is absent.
	Delete(ctx context.Context, id uuid.UUID) error
}

// RegistrationStore persists captured leads.
type RegistrationStore interface {
	Create(ctx context.Context, r *models.Registration) error
	// ListByClient returns the client's registrations in insertion order.
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Registration, error)
	CountByClient(ctx context.Context, clientID uuid.UUID) (int, error)
}

// ScanStore persists QR scan events used for conversion stats.
type ScanStore interface {
	Record(ctx context.Context, s *models.Scan) error
	MarkConverted(ctx context.Context, id uuid.UUID) error
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Scan, error)
}

// EmailLogStore persists confirmation email log entries written by the worker.
type EmailLogStore interface {
	Create(ctx context.Context, e *models.EmailLog) error
	MarkSent(ctx context.Context, id uuid.UUID) error
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.EmailLog, error)
}
