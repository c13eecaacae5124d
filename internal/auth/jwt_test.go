package auth

import "testing"

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewTokenService("test-secret")

	token, err := svc.Generate("operator-1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if token == "" {
		t.Fatal("Expected a non-empty token")
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.OperatorID != "operator-1" {
		t.Errorf("Expected operator-1, got %q", claims.OperatorID)
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		t.Error("Expected issued-at and expiry claims to be set")
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenService("secret-a").Generate("operator-1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := NewTokenService("secret-b").Validate(token); err == nil {
		t.Fatal("Expected validation to fail with the wrong secret")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewTokenService("test-secret")
	if _, err := svc.Validate("not-a-token"); err == nil {
		t.Fatal("Expected validation to fail for a malformed token")
	}
}
