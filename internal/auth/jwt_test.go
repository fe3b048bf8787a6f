package auth

import (
	"testing"

	"github.com/google/uuid"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", 1)
	id := uuid.New()

	token, err := svc.Generate(id, "acme@example.com", "client")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.ClientID != id {
		t.Errorf("ClientID = %s, want %s", claims.ClientID, id)
	}
	if claims.Email != "acme@example.com" {
		t.Errorf("Email = %q", claims.Email)
	}
	if claims.Role != "client" {
		t.Errorf("Role = %q", claims.Role)
	}
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a", 1).Generate(uuid.New(), "x@example.com", "admin")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := NewJWTService("secret-b", 1).Validate(token); err == nil {
		t.Fatal("Validate accepted token signed with a different secret")
	}
}

func TestJWTGarbage(t *testing.T) {
	if _, err := NewJWTService("s", 1).Validate("not.a.token"); err == nil {
		t.Fatal("Validate accepted garbage")
	}
}
