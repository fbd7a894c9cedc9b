package jwt

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type fixedUUID struct {
	id string
}

func (u fixedUUID) Generate() string { return u.id }

func testConfig(now time.Time) Config {
	return Config{
		Secret:     bytes.Repeat([]byte("k"), 64),
		Issuer:     "otpdeck",
		Audiences:  []string{"otpdeck"},
		TTLMinutes: time.Hour,
		Clock:      fixedClock{now: now},
		UUID:       fixedUUID{id: "jti-1"},
	}
}

func TestNewHS512(t *testing.T) {
	t.Run("RejectsShortKey", func(t *testing.T) {
		cfg := testConfig(time.Now())
		cfg.Secret = []byte("too-short")

		if _, err := NewHS512(cfg); !errors.Is(err, ErrSigningKeyTooShort) {
			t.Fatalf("expected ErrSigningKeyTooShort, got %v", err)
		}
	})
}

func TestGenerateVerify(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		// Arrange
		s, err := NewHS512(testConfig(time.Now()))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Act
		token, err := s.Generate("session-1", "My Vault")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		claims, err := s.Verify(token)

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if claims.SessionID != "session-1" || claims.VaultName != "My Vault" {
			t.Fatalf("unexpected claims: %+v", claims)
		}
		if claims.Subject != "session-1" {
			t.Fatalf("expected subject session-1, got %q", claims.Subject)
		}
		if claims.ID != "jti-1" {
			t.Fatalf("expected jti jti-1, got %q", claims.ID)
		}
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		// Arrange: issue in the past so the TTL has elapsed.
		s, err := NewHS512(testConfig(time.Now().Add(-2 * time.Hour)))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		token, err := s.Generate("session-1", "My Vault")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Act
		_, err = s.Verify(token)

		// Assert
		if !errors.Is(err, ErrTokenExpired) {
			t.Fatalf("expected ErrTokenExpired, got %v", err)
		}
	})

	t.Run("WrongKey", func(t *testing.T) {
		// Arrange
		issuerCfg := testConfig(time.Now())
		s, err := NewHS512(issuerCfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		token, err := s.Generate("session-1", "My Vault")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		otherCfg := testConfig(time.Now())
		otherCfg.Secret = bytes.Repeat([]byte("x"), 64)
		other, err := NewHS512(otherCfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Act & Assert
		if _, err := other.Verify(token); err == nil {
			t.Fatalf("expected verification failure with wrong key")
		}
	})

	t.Run("WrongIssuer", func(t *testing.T) {
		cfg := testConfig(time.Now())
		s, err := NewHS512(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		token, err := s.Generate("session-1", "My Vault")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg.Issuer = "someone-else"
		other, err := NewHS512(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := other.Verify(token); err == nil {
			t.Fatalf("expected verification failure with wrong issuer")
		}
	})

	t.Run("Garbage", func(t *testing.T) {
		s, err := NewHS512(testConfig(time.Now()))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := s.Verify("not.a.jwt"); err == nil {
			t.Fatalf("expected verification failure for garbage input")
		}
	})
}

func TestAuthContext(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		ctx := SetAuth(context.Background(), Claims{SessionID: "session-1"})

		got := GetAuth(ctx)
		if got == nil || got.SessionID != "session-1" {
			t.Fatalf("expected stored claims, got %+v", got)
		}
	})

	t.Run("MissingClaims", func(t *testing.T) {
		if got := GetAuth(context.Background()); got != nil {
			t.Fatalf("expected nil for empty context, got %+v", got)
		}
	})
}
