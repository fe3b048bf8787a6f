package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/scanlead/backend/internal/models"
	"github.com/scanlead/backend/internal/store"
)

func testClient(name, email, qr string) *models.Client {
	return &models.Client{
		Name:     name,
		Email:    email,
		QRCode:   qr,
		URL:      "/register/" + qr,
		Role:     models.RoleClient,
		Password: "hash",
	}
}

func TestCreateAssignsIDAndTimestamps(t *testing.T) {
	s := New()
	c := testClient("Acme", "acme@example.com", "qr-acme00001")
	if err := s.Create(context.Background(), c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.ID == uuid.Nil {
		t.Error("ID not assigned")
	}
	if c.CreatedAt.IsZero() || c.UpdatedAt.IsZero() {
		t.Error("timestamps not assigned")
	}
}

func TestCreateRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.Create(ctx, testClient("Acme", "acme@example.com", "qr-acme00001")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	err := s.Create(ctx, testClient("Other", "other@example.com", "qr-acme00001"))
	if !errors.Is(err, store.ErrDuplicateQRCode) {
		t.Errorf("duplicate qr: got %v, want ErrDuplicateQRCode", err)
	}
	err = s.Create(ctx, testClient("Other", "acme@example.com", "qr-other00001"))
	if !errors.Is(err, store.ErrDuplicateEmail) {
		t.Errorf("duplicate email: got %v, want ErrDuplicateEmail", err)
	}
	// Failed creates must not leave partial state.
	list, _ := s.List(ctx)
	if len(list) != 1 {
		t.Errorf("got %d clients, want 1", len(list))
	}
}

func TestLookupsAndNotFound(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := testClient("Acme", "acme@example.com", "qr-acme00001")
	if err := s.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}

	byQR, err := s.GetByQRCode(ctx, "qr-acme00001")
	if err != nil || byQR.ID != c.ID {
		t.Errorf("GetByQRCode: got %v, %v", byQR, err)
	}
	byEmail, err := s.GetByEmail(ctx, "acme@example.com")
	if err != nil || byEmail.ID != c.ID {
		t.Errorf("GetByEmail: got %v, %v", byEmail, err)
	}
	if _, err := s.GetByQRCode(ctx, "qr-missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing qr: got %v, want ErrNotFound", err)
	}
	if _, err := s.GetByID(ctx, uuid.New()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing id: got %v, want ErrNotFound", err)
	}
}

func TestGetAdmin(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.GetAdmin(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("empty store: got %v, want ErrNotFound", err)
	}

	if err := s.Create(ctx, testClient("Acme", "acme@example.com", "qr-acme00001")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	admin := testClient("Admin", "admin@example.com", "qr-admin00001")
	admin.Role = models.RoleAdmin
	if err := s.Create(ctx, admin); err != nil {
		t.Fatalf("Create admin: %v", err)
	}

	got, err := s.GetAdmin(ctx)
	if err != nil {
		t.Fatalf("GetAdmin: %v", err)
	}
	if got.ID != admin.ID {
		t.Errorf("GetAdmin returned %s, want %s", got.ID, admin.ID)
	}
}

func TestListInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	names := []string{"First", "Second", "Third"}
	for i, n := range names {
		c := testClient(n, n+"@example.com", "qr-order0000"+string(rune('1'+i)))
		if err := s.Create(ctx, c); err != nil {
			t.Fatalf("Create %s: %v", n, err)
		}
	}
	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for i, n := range names {
		if list[i].Name != n {
			t.Errorf("position %d: got %s, want %s", i, list[i].Name, n)
		}
	}
}

func TestDeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := testClient("Acme", "acme@example.com", "qr-acme00001")
	if err := s.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}

	regs := s.Registrations()
	scans := s.Scans()
	logs := s.EmailLogs()

	reg := &models.Registration{ClientID: c.ID, Name: "Lead", Email: "lead@example.com"}
	if err := regs.Create(ctx, reg); err != nil {
		t.Fatalf("create registration: %v", err)
	}
	if err := scans.Record(ctx, &models.Scan{ClientID: c.ID}); err != nil {
		t.Fatalf("record scan: %v", err)
	}
	if err := logs.Create(ctx, &models.EmailLog{ClientID: c.ID, RegistrationID: reg.ID, Recipient: "lead@example.com"}); err != nil {
		t.Fatalf("create email log: %v", err)
	}

	if err := s.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if got, _ := regs.ListByClient(ctx, c.ID); len(got) != 0 {
		t.Errorf("registrations survived delete: %d", len(got))
	}
	if got, _ := scans.ListByClient(ctx, c.ID); len(got) != 0 {
		t.Errorf("scans survived delete: %d", len(got))
	}
	if got, _ := logs.ListByClient(ctx, c.ID); len(got) != 0 {
		t.Errorf("email logs survived delete: %d", len(got))
	}
	if _, err := s.GetByQRCode(ctx, c.QRCode); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("qr index survived delete: %v", err)
	}
	// The token may be reused after deletion.
	if err := s.Create(ctx, testClient("Reuse", "reuse@example.com", "qr-acme00001")); err != nil {
		t.Errorf("qr reuse after delete: %v", err)
	}
}

func TestDeleteAbsent(t *testing.T) {
	s := New()
	if err := s.Delete(context.Background(), uuid.New()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestScanMarkConverted(t *testing.T) {
	ctx := context.Background()
	s := New()
	scans := s.Scans()
	sc := &models.Scan{ClientID: uuid.New()}
	if err := scans.Record(ctx, sc); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if sc.Converted {
		t.Fatal("new scan already converted")
	}
	if err := scans.MarkConverted(ctx, sc.ID); err != nil {
		t.Fatalf("MarkConverted: %v", err)
	}
	list, _ := scans.ListByClient(ctx, sc.ClientID)
	if len(list) != 1 || !list[0].Converted {
		t.Errorf("scan not converted: %+v", list)
	}
	if err := scans.MarkConverted(ctx, uuid.New()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("absent scan: got %v, want ErrNotFound", err)
	}
}

func TestEmailLogMarkSent(t *testing.T) {
	ctx := context.Background()
	s := New()
	logs := s.EmailLogs()
	e := &models.EmailLog{ClientID: uuid.New(), RegistrationID: uuid.New(), Recipient: "lead@example.com", Status: models.EmailStatusQueued}
	if err := logs.Create(ctx, e); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := logs.MarkSent(ctx, e.ID); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	list, _ := logs.ListByClient(ctx, e.ClientID)
	if len(list) != 1 || list[0].Status != models.EmailStatusSent || list[0].SentAt == nil {
		t.Errorf("log not marked sent: %+v", list)
	}
}
