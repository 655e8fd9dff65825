package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignAndVerifyToken(t *testing.T) {
	secret := "test-secret-key"

	token, err := SignToken(secret, "auth0|12345", "Test User")
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := NewHMACVerifier(secret).Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if claims.Subject != "auth0|12345" {
		t.Errorf("expected subject 'auth0|12345', got %q", claims.Subject)
	}
	if claims.Name != "Test User" {
		t.Errorf("expected name 'Test User', got %q", claims.Name)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	token, _ := SignToken("secret1", "auth0|12345", "")

	_, err := NewHMACVerifier("secret2").Verify(token)
	if err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestVerifyInvalidToken(t *testing.T) {
	_, err := NewHMACVerifier("secret").Verify("not-a-token")
	if err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	secret := "test"
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "auth0|12345",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))

	_, err := NewHMACVerifier(secret).Verify(token)
	if err == nil {
		t.Error("expected error for expired token")
	}
}

func TestVerifyMissingSubject(t *testing.T) {
	secret := "test"
	token, _ := SignToken(secret, "", "No Subject")

	_, err := NewHMACVerifier(secret).Verify(token)
	if err == nil {
		t.Error("expected error for token without subject")
	}
}
