package models

import (
	"time"

	"github.com/google/uuid"
)

// Scan is one landing-page hit on a client's QR code. Converted flips to true
// when the visit ends in a completed registration; the ratio of converted to
// total scans is the client's conversion rate.
type Scan struct {
	ID        uuid.UUID `json:"id"`
	ClientID  uuid.UUID `json:"client_id"`
	Converted bool      `json:"converted"`
	At        time.Time `json:"at"`
}
