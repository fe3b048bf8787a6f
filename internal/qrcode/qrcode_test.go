package qrcode

import (
	"strings"
	"testing"
)

func TestNewToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		tok, err := NewToken()
		if err != nil {
			t.Fatalf("NewToken: %v", err)
		}
		if !strings.HasPrefix(tok, TokenPrefix) {
			t.Fatalf("token %q missing prefix %q", tok, TokenPrefix)
		}
		if len(tok) != len(TokenPrefix)+9 {
			t.Fatalf("token %q has length %d", tok, len(tok))
		}
		for _, r := range tok[len(TokenPrefix):] {
			if !strings.ContainsRune(alphabet, r) {
				t.Fatalf("token %q contains %q outside alphabet", tok, r)
			}
		}
		if seen[tok] {
			t.Fatalf("token %q repeated", tok)
		}
		seen[tok] = true
	}
}

func TestLandingPath(t *testing.T) {
	if got := LandingPath("qr-abc123def"); got != "/register/qr-abc123def" {
		t.Errorf("LandingPath = %q", got)
	}
}

func TestLibraryRendererPNG(t *testing.T) {
	png, err := LibraryRenderer{}.RenderPNG("http://localhost:8080/register/qr-abc123def", 256)
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	if len(png) == 0 {
		t.Fatal("empty image")
	}
	// PNG magic bytes
	if string(png[:4]) != "\x89PNG" {
		t.Errorf("not a PNG: % x", png[:4])
	}
}
