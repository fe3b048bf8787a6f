// Package qrcode generates the opaque QR tokens that route landing pages and
// renders the visual QR images for them. Token and image are distinct: the
// token identifies a client; the image merely encodes the landing URL.
package qrcode

import (
	"crypto/rand"
	"fmt"

	qr "github.com/skip2/go-qrcode"
)

const (
	// TokenPrefix marks client QR tokens, e.g. "qr-x7k2m9p4q".
	TokenPrefix = "qr-"
	tokenLength = 9
	alphabet    = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// NewToken returns a fresh QR token: "qr-" plus 9 random alphanumerics.
// Collisions are negligible at this alphabet size but the store still
// enforces uniqueness; callers regenerate on ErrDuplicateQRCode.
func NewToken() (string, error) {
	b := make([]byte, tokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return TokenPrefix + string(b), nil
}

// LandingPath returns the landing-page path derived from a token.
func LandingPath(token string) string {
	return "/register/" + token
}

// Renderer produces a PNG image for the given content. The actual encoding
// is delegated to a third-party library; this system implements no QR
// algorithm of its own.
type Renderer interface {
	RenderPNG(content string, size int) ([]byte, error)
}

// LibraryRenderer renders via skip2/go-qrcode.
type LibraryRenderer struct{}

// RenderPNG encodes content into a size x size PNG at medium error recovery.
func (LibraryRenderer) RenderPNG(content string, size int) ([]byte, error) {
	png, err := qr.Encode(content, qr.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
