package models

import (
	"time"

	"github.com/google/uuid"
)

// Registration is one lead captured through a client's QR code. Records are
// written once and never updated; they disappear only when the owning client
// is deleted.
type Registration struct {
	ID         uuid.UUID `json:"id"`
	ClientID   uuid.UUID `json:"client_id"`
	QRCode     string    `json:"qr_code,omitempty"` // token the lead arrived through; empty for dashboard-originated records
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	TicketType string    `json:"ticket_type,omitempty"` // free-text category, e.g. general/vip/family
	CreatedAt  time.Time `json:"created_at"`
}
