package clients

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/scanlead/backend/internal/models"
	"github.com/scanlead/backend/internal/store"
	"github.com/scanlead/backend/internal/store/memory"
	"github.com/scanlead/backend/pkg/utils"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	mem := memory.New()
	return NewService(mem, mem.Registrations(), nil), mem
}

func testRegistration(clientID uuid.UUID) *models.Registration {
	return &models.Registration{ClientID: clientID, Name: "Bob", Email: "bob@x.com"}
}

func TestCreateRequiresName(t *testing.T) {
	svc, mem := newTestService(t)
	_, _, err := svc.Create(context.Background(), CreateParams{Name: "   ", Password: "secret1"})
	if !store.IsValidation(err) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	list, _ := mem.List(context.Background())
	if len(list) != 0 {
		t.Fatalf("blank-name create persisted %d records", len(list))
	}
}

func TestCreateRequiresPassword(t *testing.T) {
	svc, _ := newTestService(t)
	_, _, err := svc.Create(context.Background(), CreateParams{Name: "Acme"})
	if !store.IsValidation(err) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestCreateSynthesizesEmail(t *testing.T) {
	svc, _ := newTestService(t)
	c, _, err := svc.Create(context.Background(), CreateParams{Name: "Acme Corp", Password: "secret1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !utils.IsValidEmail(c.Email) {
		t.Errorf("synthesized email %q is not structurally valid", c.Email)
	}
	if !strings.HasPrefix(c.Email, "acme-corp-") {
		t.Errorf("synthesized email %q does not carry the name slug", c.Email)
	}

	// A second contact-less client must get its own address.
	c2, _, err := svc.Create(context.Background(), CreateParams{Name: "Acme Corp 2", Password: "secret1"})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}
	if c2.Email == c.Email {
		t.Errorf("two synthesized emails collided: %q", c.Email)
	}
}

func TestCreateDerivesQRCodeAndURL(t *testing.T) {
	svc, _ := newTestService(t)
	c, _, err := svc.Create(context.Background(), CreateParams{Name: "Acme", Password: "secret1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !strings.HasPrefix(c.QRCode, "qr-") {
		t.Errorf("qr code %q missing qr- prefix", c.QRCode)
	}
	if c.URL != "/register/"+c.QRCode {
		t.Errorf("url %q not derived from qr code %q", c.URL, c.QRCode)
	}
}

func TestCreateUniqueQRCodes(t *testing.T) {
	svc, _ := newTestService(t)
	seen := make(map[string]bool)
	for i := 0; i < 25; i++ {
		c, _, err := svc.Create(context.Background(), CreateParams{Name: "Tenant", Email: "", Password: "secret1"})
		if err != nil {
			t.Fatalf("Create #%d: %v", i, err)
		}
		if seen[c.QRCode] {
			t.Fatalf("qr code %q assigned twice", c.QRCode)
		}
		seen[c.QRCode] = true
	}
}

func TestCreateGeneratedPassword(t *testing.T) {
	svc, _ := newTestService(t)
	c, plain, err := svc.Create(context.Background(), CreateParams{Name: "Acme", GeneratePassword: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(plain) != 8 {
		t.Errorf("generated password %q has length %d, want 8", plain, len(plain))
	}
	if !utils.CheckPassword(plain, c.Password) {
		t.Error("stored hash does not match the generated password")
	}
}

func TestDeleteAbsentClient(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Delete(context.Background(), uuid.New())
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteReportsCascadedCount(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	c, _, err := svc.Create(ctx, CreateParams{Name: "Acme", Password: "secret1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	regs := mem.Registrations()
	for i := 0; i < 3; i++ {
		if err := regs.Create(ctx, testRegistration(c.ID)); err != nil {
			t.Fatalf("seed registration: %v", err)
		}
	}

	cascaded, err := svc.Delete(ctx, c.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if cascaded != 3 {
		t.Errorf("cascaded = %d, want 3", cascaded)
	}
	if _, _, err := svc.Get(ctx, c.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("client still reachable after delete: %v", err)
	}
	left, _ := regs.ListByClient(ctx, c.ID)
	if len(left) != 0 {
		t.Errorf("registrations still reachable after delete: %d", len(left))
	}
}

func TestUpdateURLValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	c, _, err := svc.Create(ctx, CreateParams{Name: "Acme", Password: "secret1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.UpdateURL(ctx, c.ID, "no-leading-slash"); !store.IsValidation(err) {
		t.Errorf("err = %v, want ValidationError", err)
	}
	if err := svc.UpdateURL(ctx, c.ID, "/signup/custom"); err != nil {
		t.Errorf("UpdateURL: %v", err)
	}
	got, _, _ := svc.Get(ctx, c.ID)
	if got.URL != "/signup/custom" {
		t.Errorf("url = %q after update", got.URL)
	}
	if got.QRCode != c.QRCode {
		t.Errorf("qr code changed on url update: %q -> %q", c.QRCode, got.QRCode)
	}
}
