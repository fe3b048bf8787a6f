package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents an account role.
type Role string

const (
	// RoleAdmin is the single reserved administrator account that also
	// absorbs registrations whose QR token no longer resolves.
	RoleAdmin Role = "admin"
	// RoleClient is a tenant account owning one QR code.
	RoleClient Role = "client"
)

// Client is a tenant that owns a QR code and its captured leads. The record
// doubles as the auth principal: the password hash lives on the same row and
// the JWT subject is the client id.
type Client struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	QRCode    string    `json:"qr_code"`
	URL       string    `json:"url"`
	Role      Role      `json:"role"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClientPublic is Client without sensitive fields for API responses that
// embed extra derived data.
type ClientPublic struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	QRCode    string    `json:"qr_code"`
	URL       string    `json:"url"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPublic converts Client to ClientPublic.
func (c *Client) ToPublic() ClientPublic {
	return ClientPublic{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		QRCode:    c.QRCode,
		URL:       c.URL,
		Role:      c.Role,
		CreatedAt: c.CreatedAt,
	}
}
