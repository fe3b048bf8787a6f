// Package memory implements the store interfaces on in-process maps. It backs
// demo mode (STORE_DRIVER=memory) and the handler tests; nothing survives a
// restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scanlead/backend/internal/models"
	"github.com/scanlead/backend/internal/store"
)

// Store holds all record kinds behind one mutex. It satisfies
// store.ClientStore, store.RegistrationStore, store.ScanStore, and
// store.EmailLogStore.
type Store struct {
	mu            sync.RWMutex
	clients       map[uuid.UUID]*models.Client
	clientOrder   []uuid.UUID
	byQRCode      map[string]uuid.UUID
	byEmail       map[string]uuid.UUID
	registrations []*models.Registration
	scans         []*models.Scan
	emailLogs     []*models.EmailLog
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		clients:  make(map[uuid.UUID]*models.Client),
		byQRCode: make(map[string]uuid.UUID),
		byEmail:  make(map[string]uuid.UUID),
	}
}

// Create persists a client, assigning its ID and timestamps.
func (s *Store) Create(_ context.Context, c *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byQRCode[c.QRCode]; ok {
		return store.ErrDuplicateQRCode
	}
	if _, ok := s.byEmail[c.Email]; ok {
		return store.ErrDuplicateEmail
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := *c
	s.clients[c.ID] = &cp
	s.clientOrder = append(s.clientOrder, c.ID)
	s.byQRCode[c.QRCode] = c.ID
	s.byEmail[c.Email] = c.ID
	return nil
}

// List returns all clients in creation order.
func (s *Store) List(_ context.Context) ([]models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]models.Client, 0, len(s.clientOrder))
	for _, id := range s.clientOrder {
		list = append(list, *s.clients[id])
	}
	return list, nil
}

// GetByID returns one client by ID.
func (s *Store) GetByID(_ context.Context, id uuid.UUID) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// GetByEmail returns one client by email.
func (s *Store) GetByEmail(_ context.Context, email string) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *s.clients[id]
	return &cp, nil
}

// GetByQRCode resolves a client by its QR token through the index map.
func (s *Store) GetByQRCode(_ context.Context, code string) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byQRCode[code]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *s.clients[id]
	return &cp, nil
}

// GetAdmin returns the reserved admin client.
func (s *Store) GetAdmin(_ context.Context) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.clientOrder {
		if s.clients[id].Role == models.RoleAdmin {
			cp := *s.clients[id]
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

// UpdateURL sets the landing-page path for a client.
func (s *Store) UpdateURL(_ context.Context, id uuid.UUID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return store.ErrNotFound
	}
	c.URL = url
	c.UpdatedAt = time.Now()
	return nil
}

// UpdatePassword sets a new password hash for a client.
func (s *Store) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return store.ErrNotFound
	}
	c.Password = passwordHash
	c.UpdatedAt = time.Now()
	return nil
}

// Delete removes a client and everything it owns, so client-scoped queries
// can no longer reach its registrations or scans.
func (s *Store) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return store.ErrNotFound
	}
	delete(s.byQRCode, c.QRCode)
	delete(s.byEmail, c.Email)
	delete(s.clients, id)
	for i, oid := range s.clientOrder {
		if oid == id {
			s.clientOrder = append(s.clientOrder[:i], s.clientOrder[i+1:]...)
			break
		}
	}
	s.registrations = filterRegistrations(s.registrations, id)
	s.scans = filterScans(s.scans, id)
	s.emailLogs = filterEmailLogs(s.emailLogs, id)
	return nil
}

// Registrations returns the store's RegistrationStore view. The views exist
// because Create means something different per record kind while all state
// shares one mutex.
func (s *Store) Registrations() store.RegistrationStore { return (*registrationView)(s) }

// Scans returns the store's ScanStore view.
func (s *Store) Scans() store.ScanStore { return (*scanView)(s) }

// EmailLogs returns the store's EmailLogStore view.
func (s *Store) EmailLogs() store.EmailLogStore { return (*emailLogView)(s) }

type registrationView Store

func (v *registrationView) Create(_ context.Context, r *models.Registration) error {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	cp := *r
	s.registrations = append(s.registrations, &cp)
	return nil
}

func (v *registrationView) ListByClient(_ context.Context, clientID uuid.UUID) ([]models.Registration, error) {
	s := (*Store)(v)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []models.Registration
	for _, r := range s.registrations {
		if r.ClientID == clientID {
			list = append(list, *r)
		}
	}
	return list, nil
}

func (v *registrationView) CountByClient(_ context.Context, clientID uuid.UUID) (int, error) {
	s := (*Store)(v)
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.registrations {
		if r.ClientID == clientID {
			n++
		}
	}
	return n, nil
}

type scanView Store

func (v *scanView) Record(_ context.Context, sc *models.Scan) error {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc.ID == uuid.Nil {
		sc.ID = uuid.New()
	}
	if sc.At.IsZero() {
		sc.At = time.Now()
	}
	cp := *sc
	s.scans = append(s.scans, &cp)
	return nil
}

func (v *scanView) MarkConverted(_ context.Context, id uuid.UUID) error {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sc := range s.scans {
		if sc.ID == id {
			sc.Converted = true
			return nil
		}
	}
	return store.ErrNotFound
}

func (v *scanView) ListByClient(_ context.Context, clientID uuid.UUID) ([]models.Scan, error) {
	s := (*Store)(v)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []models.Scan
	for _, sc := range s.scans {
		if sc.ClientID == clientID {
			list = append(list, *sc)
		}
	}
	return list, nil
}

type emailLogView Store

func (v *emailLogView) Create(_ context.Context, e *models.EmailLog) error {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	cp := *e
	s.emailLogs = append(s.emailLogs, &cp)
	return nil
}

func (v *emailLogView) MarkSent(_ context.Context, id uuid.UUID) error {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.emailLogs {
		if e.ID == id {
			now := time.Now()
			e.Status = models.EmailStatusSent
			e.SentAt = &now
			return nil
		}
	}
	return store.ErrNotFound
}

func (v *emailLogView) ListByClient(_ context.Context, clientID uuid.UUID) ([]models.EmailLog, error) {
	s := (*Store)(v)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []models.EmailLog
	for i := len(s.emailLogs) - 1; i >= 0; i-- {
		if s.emailLogs[i].ClientID == clientID {
			list = append(list, *s.emailLogs[i])
		}
	}
	return list, nil
}

func filterRegistrations(in []*models.Registration, clientID uuid.UUID) []*models.Registration {
	out := in[:0]
	for _, r := range in {
		if r.ClientID != clientID {
			out = append(out, r)
		}
	}
	return out
}

func filterScans(in []*models.Scan, clientID uuid.UUID) []*models.Scan {
	out := in[:0]
	for _, sc := range in {
		if sc.ClientID != clientID {
			out = append(out, sc)
		}
	}
	return out
}

func filterEmailLogs(in []*models.EmailLog, clientID uuid.UUID) []*models.EmailLog {
	out := in[:0]
	for _, e := range in {
		if e.ClientID != clientID {
			out = append(out, e)
		}
	}
	return out
}
