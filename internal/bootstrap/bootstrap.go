// Package bootstrap seeds the reserved admin account on first start and can
// repair it if the client record goes missing while credentials remain valid.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/scanlead/backend/config"
	"github.com/scanlead/backend/internal/clients"
	"github.com/scanlead/backend/internal/models"
	"github.com/scanlead/backend/internal/store"
)

// Bootstrapper seeds and repairs the reserved admin account.
type Bootstrapper struct {
	cfg     config.BootstrapConfig
	clients store.ClientStore
	svc     *clients.Service
	logger  *zap.Logger
}

// New creates a Bootstrapper.
func New(cfg config.BootstrapConfig, clientStore store.ClientStore, svc *clients.Service, logger *zap.Logger) *Bootstrapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bootstrapper{cfg: cfg, clients: clientStore, svc: svc, logger: logger}
}

// IsInitialized reports whether the reserved admin account exists.
func (b *Bootstrapper) IsInitialized(ctx context.Context) (bool, error) {
	_, err := b.clients.GetAdmin(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Run seeds the admin account if missing, plus an optional sample client for
// demo environments. Safe to call on every start.
func (b *Bootstrapper) Run(ctx context.Context) error {
	ok, err := b.IsInitialized(ctx)
	if err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	if ok {
		b.logger.Debug("admin account already present")
		return nil
	}

	admin, _, err := b.svc.Create(ctx, clients.CreateParams{
		Name:     b.cfg.AdminName,
		Email:    b.cfg.AdminEmail,
		Password: b.cfg.AdminPassword,
		Role:     models.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	b.logger.Info("seeded admin account",
		zap.String("client_id", admin.ID.String()),
		zap.String("email", admin.Email))

	if b.cfg.SampleClient {
		sample, _, err := b.svc.Create(ctx, clients.CreateParams{
			Name:             "Acme Corp",
			GeneratePassword: true,
		})
		if err != nil {
			// Demo data only; keep starting.
			b.logger.Warn("seed sample client failed", zap.Error(err))
			return nil
		}
		b.logger.Info("seeded sample client",
			zap.String("client_id", sample.ID.String()),
			zap.String("qr_code", sample.QRCode))
	}
	return nil
}

// RepairAdmin re-creates the admin record for the configured admin email.
// Other emails are refused so an arbitrary failed login cannot mint an admin.
func (b *Bootstrapper) RepairAdmin(ctx context.Context, email string) error {
	if email != b.cfg.AdminEmail {
		return store.ErrNotFound
	}
	if ok, err := b.IsInitialized(ctx); err != nil {
		return err
	} else if ok {
		return nil
	}
	_, _, err := b.svc.Create(ctx, clients.CreateParams{
		Name:     b.cfg.AdminName,
		Email:    b.cfg.AdminEmail,
		Password: b.cfg.AdminPassword,
		Role:     models.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("repair admin: %w", err)
	}
	b.logger.Warn("admin account repaired", zap.String("email", email))
	return nil
}
