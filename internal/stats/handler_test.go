package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/scanlead/backend/internal/auth"
	"github.com/scanlead/backend/internal/clients"
	"github.com/scanlead/backend/internal/registrations"
	"github.com/scanlead/backend/internal/store/memory"
	"github.com/scanlead/backend/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type statsEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		Today          int    `json:"today"`
		Yesterday      int    `json:"yesterday"`
		Week           int    `json:"week"`
		Total          int    `json:"total"`
		ConversionRate string `json:"conversion_rate"`
		Scans          int    `json:"scans"`
	} `json:"data"`
	Error string `json:"error"`
}

func getStats(t *testing.T, r *gin.Engine, path string) statsEnvelope {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET %s status = %d: %s", path, w.Code, w.Body.String())
	}
	var env statsEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	return env
}

// The full capture flow against the in-memory store: an admin creates "Acme"
// with no contact address, a visitor opens the landing page for the generated
// token and submits the form, and the Acme dashboard shows the lead.
func TestAcmeCaptureFlowShowsOnDashboard(t *testing.T) {
	mem := memory.New()
	svc := clients.NewService(mem, mem.Registrations(), nil)

	acme, _, err := svc.Create(context.Background(), clients.CreateParams{
		Name:     "Acme",
		Password: "secret-pass",
	})
	if err != nil {
		t.Fatalf("create Acme: %v", err)
	}
	if !utils.IsValidEmail(acme.Email) {
		t.Fatalf("synthesized email %q is not valid", acme.Email)
	}
	if !strings.HasPrefix(acme.QRCode, "qr-") {
		t.Fatalf("qr code = %q, want qr- prefix", acme.QRCode)
	}
	if acme.URL != "/register/"+acme.QRCode {
		t.Fatalf("url = %q, want /register/%s", acme.URL, acme.QRCode)
	}

	regH := registrations.NewHandler(mem, mem.Registrations(), mem.Scans(), nil, nil, nil)
	statsH := NewHandler(mem, mem.Registrations(), mem.Scans(), nil)

	r := gin.New()
	r.GET("/register/:code", regH.ShowLanding)
	r.POST("/register/:code", regH.Submit)
	r.GET("/me/stats", func(c *gin.Context) {
		c.Set(auth.ContextClientID, acme.ID)
		statsH.MyStats(c)
	})
	r.GET("/clients/:id/stats", statsH.ClientStats)

	// Visitor scans the poster.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, acme.URL, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("landing status = %d: %s", w.Code, w.Body.String())
	}
	var landing struct {
		Data struct {
			ClientName string `json:"client_name"`
			ScanID     string `json:"scan_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &landing); err != nil {
		t.Fatalf("decode landing: %v", err)
	}
	if landing.Data.ClientName != "Acme" {
		t.Fatalf("landing resolved to %q, want Acme", landing.Data.ClientName)
	}

	// Visitor submits the form.
	body, _ := json.Marshal(gin.H{
		"name":    "Bob",
		"email":   "bob@x.com",
		"phone":   "",
		"scan_id": landing.Data.ScanID,
	})
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, acme.URL, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("submit status = %d: %s", w.Code, w.Body.String())
	}

	// Acme's own dashboard.
	mine := getStats(t, r, "/me/stats")
	if mine.Data.Total != 1 || mine.Data.Today != 1 || mine.Data.Week != 1 {
		t.Errorf("my stats = %+v, want total/today/week = 1", mine.Data)
	}
	if mine.Data.Scans != 1 || mine.Data.ConversionRate != "100.0" {
		t.Errorf("scans = %d rate = %q, want 1 and 100.0", mine.Data.Scans, mine.Data.ConversionRate)
	}

	// Same numbers through the admin route.
	admin := getStats(t, r, "/clients/"+acme.ID.String()+"/stats")
	if admin.Data != mine.Data {
		t.Errorf("admin view %+v differs from owner view %+v", admin.Data, mine.Data)
	}
}

func TestClientStatsUnknownClient(t *testing.T) {
	mem := memory.New()
	h := NewHandler(mem, mem.Registrations(), mem.Scans(), nil)

	r := gin.New()
	r.GET("/clients/:id/stats", h.ClientStats)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/clients/"+uuid.NewString()+"/stats", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/clients/not-a-uuid/stats", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}
