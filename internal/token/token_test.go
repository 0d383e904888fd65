package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndVerify(t *testing.T) {
	manager := NewManager("test-secret", time.Hour)

	signed, err := manager.Issue("alice@example.com", 7, "admin")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := manager.Verify(signed)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "alice@example.com" {
		t.Fatalf("unexpected subject: %q", claims.Subject)
	}
	if claims.UserID != 7 {
		t.Fatalf("unexpected uid: %d", claims.UserID)
	}
	if claims.Role != "admin" {
		t.Fatalf("unexpected role: %q", claims.Role)
	}
}

func TestVerifyExpired(t *testing.T) {
	manager := NewManager("test-secret", -time.Minute)

	signed, err := manager.Issue("alice@example.com", 7, "member")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := manager.Verify(signed); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerifyWrongKey(t *testing.T) {
	signed, err := NewManager("secret-a", time.Hour).Issue("alice@example.com", 7, "member")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := NewManager("secret-b", time.Hour).Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	manager := NewManager("test-secret", time.Hour)

	for _, tokenString := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := manager.Verify(tokenString); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", tokenString, err)
		}
	}
}

func TestVerifyRejectsNonHMAC(t *testing.T) {
	// alg=none tokens must never validate, whatever their claims say.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID: 7,
		Role:   "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice@example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	manager := NewManager("test-secret", time.Hour)
	if _, err := manager.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRequiresSubject(t *testing.T) {
	manager := NewManager("test-secret", time.Hour)

	signed, err := manager.Issue("", 7, "member")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := manager.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for empty subject, got %v", err)
	}
}
