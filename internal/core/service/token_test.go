package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func TestTokenManager_Lifecycle(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: issuedAt}
	tm := NewTokenManager("secret", DefaultTokenTTL, WithClock(clock.Now))

	token, err := tm.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	clock.now = issuedAt.Add(6 * 24 * time.Hour)
	subject, err := tm.Subject(token)
	if err != nil {
		t.Fatalf("token rejected at T+6d: %v", err)
	}
	if subject != "user-1" {
		t.Fatalf("unexpected subject %q", subject)
	}

	clock.now = issuedAt.Add(8 * 24 * time.Hour)
	if _, err := tm.Subject(token); err == nil {
		t.Fatalf("token accepted at T+8d")
	}
}

func TestTokenManager_Claims(t *testing.T) {
	tm := NewTokenManager("secret", 0)
	token, err := tm.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ID == "" {
		t.Fatalf("expected jti claim")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != DefaultTokenTTL {
		t.Fatalf("expected 7 day lifetime, got %s", got)
	}
}

func TestTokenManager_RejectsOtherAlgorithms(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    tokenIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := tm.Subject(signed); err == nil {
		t.Fatalf("expected HS512 token to be rejected")
	}
}

func TestTokenManager_RequiresSubject(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	if _, err := tm.Issue(""); err == nil {
		t.Fatalf("expected error for empty subject")
	}
}
