// Package clients implements tenant account management: admin CRUD, the
// create-time invariants (synthesized email, unique QR token, derived landing
// URL), and self-service profile updates.
package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scanlead/backend/internal/models"
	"github.com/scanlead/backend/internal/qrcode"
	"github.com/scanlead/backend/internal/store"
	"github.com/scanlead/backend/pkg/utils"
)

const (
	generatedPasswordLength = 8
	qrCodeRetries           = 5
	syntheticEmailDomain    = "clients.scanlead.local"
)

// Service orchestrates client account operations over the store.
type Service struct {
	clients       store.ClientStore
	registrations store.RegistrationStore
	logger        *zap.Logger
}

// NewService constructs a Service with its dependencies.
func NewService(clients store.ClientStore, registrations store.RegistrationStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{clients: clients, registrations: registrations, logger: logger}
}

// CreateParams holds the admin create-client form fields.
type CreateParams struct {
	Name             string
	Email            string
	Phone            string
	Password         string
	GeneratePassword bool
	Role             models.Role // defaults to client; bootstrap passes admin
}

// Create validates the params and persists a new client. The QR token and
// landing URL are generated here and never change afterwards. Returns the
// plain password only when it was generated, so the admin can hand it over
// exactly once.
func (s *Service) Create(ctx context.Context, p CreateParams) (client *models.Client, plainPassword string, err error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, "", store.NewValidationError("name", "name is required")
	}

	password := p.Password
	if p.GeneratePassword {
		password, err = utils.RandomPassword(generatedPasswordLength)
		if err != nil {
			return nil, "", fmt.Errorf("generate password: %w", err)
		}
		plainPassword = password
	}
	if password == "" {
		return nil, "", store.NewValidationError("password", "password is required")
	}

	email := strings.TrimSpace(strings.ToLower(p.Email))
	if email == "" {
		email = synthesizeEmail(p.Name, time.Now())
	} else if !utils.IsValidEmail(email) {
		return nil, "", store.NewValidationError("email", "email must look like local@domain.tld")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	role := p.Role
	if role == "" {
		role = models.RoleClient
	}

	// QR tokens collide with negligible probability, but the store enforces
	// uniqueness; regenerate on conflict instead of failing the create.
	for attempt := 0; attempt < qrCodeRetries; attempt++ {
		token, terr := qrcode.NewToken()
		if terr != nil {
			return nil, "", fmt.Errorf("generate qr token: %w", terr)
		}
		c := &models.Client{
			Name:     p.Name,
			Email:    email,
			Phone:    strings.TrimSpace(p.Phone),
			QRCode:   token,
			URL:      qrcode.LandingPath(token),
			Role:     role,
			Password: hash,
		}
		err = s.clients.Create(ctx, c)
		if err == nil {
			return c, plainPassword, nil
		}
		if errors.Is(err, store.ErrDuplicateQRCode) {
			s.logger.Warn("qr token collision, regenerating", zap.String("token", token))
			continue
		}
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, "", store.NewValidationError("email", "email already in use")
		}
		return nil, "", fmt.Errorf("create client: %w", err)
	}
	return nil, "", fmt.Errorf("create client: %w", err)
}

// List returns all clients.
func (s *Service) List(ctx context.Context) ([]models.Client, error) {
	return s.clients.List(ctx)
}

// Get returns one client and its registration count, for dashboards and the
// pre-delete confirmation.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Client, int, error) {
	c, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.registrations.CountByClient(ctx, id)
	if err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}
	return c, count, nil
}

// Delete removes a client. The returned count is how many registrations were
// cascaded with it. Deleting an absent id fails with store.ErrNotFound.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (cascaded int, err error) {
	cascaded, err = s.registrations.CountByClient(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	if err := s.clients.Delete(ctx, id); err != nil {
		return 0, err
	}
	return cascaded, nil
}

// UpdateURL lets a client edit its landing-page path. The QR token itself is
// immutable; only the advertised path changes.
func (s *Service) UpdateURL(ctx context.Context, id uuid.UUID, url string) error {
	url = strings.TrimSpace(url)
	if url == "" || !strings.HasPrefix(url, "/") {
		return store.NewValidationError("url", "url must be an absolute path")
	}
	return s.clients.UpdateURL(ctx, id, url)
}

// synthesizeEmail builds a unique placeholder email from the client name and
// creation time, for tenants enrolled without a contact address.
func synthesizeEmail(name string, now time.Time) string {
	slug := strings.Builder{}
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			slug.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			slug.WriteByte('-')
		}
	}
	local := strings.Trim(slug.String(), "-")
	if local == "" {
		local = "client"
	}
	return fmt.Sprintf("%s-%d@%s", local, now.UnixMilli(), syntheticEmailDomain)
}
