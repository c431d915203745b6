package api

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func mintToken(t *testing.T, secret string, claims SessionClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestVerifySessionToken_ValidToken(t *testing.T) {
	secret := "test_secret"
	now := time.Unix(1700000000, 0)

	s := mintToken(t, secret, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			Issuer:    "epusara-auth",
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now.Add(-1 * time.Minute)),
		},
		Email: "ali@example.my",
	})

	got, err := VerifySessionToken(s, secret, "epusara-auth", now)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.UserID != "user-123" {
		t.Fatalf("user id mismatch: %q", got.UserID)
	}
	if got.Email != "ali@example.my" {
		t.Fatalf("email mismatch: %q", got.Email)
	}
}

func TestVerifySessionToken_RejectsExpired(t *testing.T) {
	secret := "test_secret"
	now := time.Unix(1700000000, 0)

	s := mintToken(t, secret, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(now.Add(-1 * time.Minute)),
		},
	})

	if _, err := VerifySessionToken(s, secret, "", now); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestVerifySessionToken_RejectsWrongSecret(t *testing.T) {
	now := time.Unix(1700000000, 0)

	s := mintToken(t, "other_secret", SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		},
	})

	if _, err := VerifySessionToken(s, "test_secret", "", now); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
}

func TestVerifySessionToken_RejectsIssuerMismatch(t *testing.T) {
	secret := "test_secret"
	now := time.Unix(1700000000, 0)

	s := mintToken(t, secret, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		},
	})

	if _, err := VerifySessionToken(s, secret, "epusara-auth", now); err == nil {
		t.Fatalf("expected error for issuer mismatch")
	}
}
