package registrations

import (
	"strings"
	"testing"
	"time"

	"github.com/scanlead/backend/internal/models"
)

func TestBuildCSV(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	regs := []models.Registration{
		{
			Name:      "Bob",
			Email:     "bob@x.com",
			Phone:     "",
			QRCode:    "qr-abc123def",
			CreatedAt: time.Date(2024, 6, 14, 9, 30, 0, 0, time.UTC),
		},
		{
			Name:      `Eve "The Lead" Smith`,
			Email:     "eve@example.com",
			Phone:     "555-0100",
			QRCode:    "qr-abc123def",
			CreatedAt: time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC),
		},
	}

	filename, body := BuildCSV("Acme", regs, now)
	if filename != "Acme-registrations-2024-06-15.csv" {
		t.Errorf("filename = %q", filename)
	}

	lines := strings.Split(strings.TrimRight(string(body), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), body)
	}
	if lines[0] != "Name,Email,Phone,Registration Date,QR Code" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != `"Bob","bob@x.com","","2024-06-14 09:30:00","qr-abc123def"` {
		t.Errorf("row 1 = %q", lines[1])
	}
	// Embedded quotes are doubled.
	if !strings.Contains(lines[2], `"Eve ""The Lead"" Smith"`) {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func TestBuildCSVEmpty(t *testing.T) {
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	filename, body := BuildCSV("Empty Co", nil, now)
	if filename != "Empty Co-registrations-2024-01-02.csv" {
		t.Errorf("filename = %q", filename)
	}
	if string(body) != "Name,Email,Phone,Registration Date,QR Code\n" {
		t.Errorf("body = %q", body)
	}
}
