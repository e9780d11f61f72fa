package auth

import (
	"testing"

	"github.com/google/uuid"
)

func TestJWTGenerateValidate(t *testing.T) {
	t.Parallel()

	svc := NewJWTService("test-secret", 1)
	userID := uuid.New()

	token, err := svc.Generate(userID, "user@example.com", "organizer")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user id = %s, want %s", claims.UserID, userID)
	}
	if claims.Email != "user@example.com" {
		t.Errorf("email = %s", claims.Email)
	}
	if claims.Role != "organizer" {
		t.Errorf("role = %s", claims.Role)
	}
}

func TestJWTValidateRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	token, err := NewJWTService("secret-a", 1).Generate(uuid.New(), "a@b.c", "user")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := NewJWTService("secret-b", 1).Validate(token); err != ErrInvalidToken {
		t.Fatalf("Validate with wrong secret: got %v, want ErrInvalidToken", err)
	}
}

func TestJWTValidateRejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, err := NewJWTService("secret", 1).Validate("not-a-token"); err != ErrInvalidToken {
		t.Fatalf("Validate garbage: got %v, want ErrInvalidToken", err)
	}
}
