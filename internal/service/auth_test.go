package service

import (
	"testing"

	"writehub/internal/config"
)

func TestAuthService_TokenRoundTrip(t *testing.T) {
	svc := NewAuthService(&config.Config{
		JWTSecret:   "test-secret",
		TokenMaxAge: 7 * 24 * 3600,
	})

	token, err := svc.IssueToken(42, "author@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("user_id = %d, want 42", claims.UserID)
	}
	if claims.Email != "author@example.com" {
		t.Errorf("email = %q, want %q", claims.Email, "author@example.com")
	}
}

func TestAuthService_VerifyToken_Expired(t *testing.T) {
	svc := NewAuthService(&config.Config{
		JWTSecret:   "test-secret",
		TokenMaxAge: -3600, // already expired at issue time
	})

	token, err := svc.IssueToken(42, "author@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := svc.VerifyToken(token); err == nil {
		t.Error("expired token should not verify")
	}
}

func TestAuthService_VerifyToken_WrongSecret(t *testing.T) {
	issuer := NewAuthService(&config.Config{JWTSecret: "secret-a", TokenMaxAge: 3600})
	verifier := NewAuthService(&config.Config{JWTSecret: "secret-b", TokenMaxAge: 3600})

	token, err := issuer.IssueToken(42, "author@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := verifier.VerifyToken(token); err == nil {
		t.Error("token signed with a different secret should not verify")
	}
}

func TestAuthService_VerifyToken_Garbage(t *testing.T) {
	svc := NewAuthService(&config.Config{JWTSecret: "test-secret", TokenMaxAge: 3600})

	if _, err := svc.VerifyToken("not-a-token"); err == nil {
		t.Error("garbage token should not verify")
	}
}
