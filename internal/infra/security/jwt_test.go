package security

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	testSecret = "test-signing-secret"
	testIssuer = "turfmania-identity"
)

func signToken(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestNewTokenVerifier_RequiresSecretAndIssuer(t *testing.T) {
	if _, err := NewTokenVerifier("", testIssuer); err == nil {
		t.Fatalf("expected error for empty secret")
	}
	if _, err := NewTokenVerifier(testSecret, "  "); err == nil {
		t.Fatalf("expected error for empty issuer")
	}
	if _, err := NewTokenVerifier(testSecret, testIssuer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTokenVerifier_VerifyAccessToken(t *testing.T) {
	verifier, err := NewTokenVerifier(testSecret, testIssuer)
	if err != nil {
		t.Fatalf("NewTokenVerifier: %v", err)
	}

	raw := signToken(t, testSecret, AccessTokenClaims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := verifier.VerifyAccessToken(raw)
	if err != nil {
		t.Fatalf("VerifyAccessToken returned error: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("expected user-1, got %s", claims.UserID)
	}
}

func TestTokenVerifier_SubjectFallback(t *testing.T) {
	verifier, err := NewTokenVerifier(testSecret, testIssuer)
	if err != nil {
		t.Fatalf("NewTokenVerifier: %v", err)
	}

	raw := signToken(t, testSecret, jwt.RegisteredClaims{
		Issuer:    testIssuer,
		Subject:   "user-2",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	claims, err := verifier.VerifyAccessToken(raw)
	if err != nil {
		t.Fatalf("VerifyAccessToken returned error: %v", err)
	}
	if claims.UserID != "user-2" {
		t.Fatalf("expected subject fallback user-2, got %s", claims.UserID)
	}
}

func TestTokenVerifier_Expired(t *testing.T) {
	verifier, err := NewTokenVerifier(testSecret, testIssuer)
	if err != nil {
		t.Fatalf("NewTokenVerifier: %v", err)
	}

	raw := signToken(t, testSecret, jwt.RegisteredClaims{
		Issuer:    testIssuer,
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})

	if _, err := verifier.VerifyAccessToken(raw); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenVerifier_WrongSecret(t *testing.T) {
	verifier, err := NewTokenVerifier(testSecret, testIssuer)
	if err != nil {
		t.Fatalf("NewTokenVerifier: %v", err)
	}

	raw := signToken(t, "another-secret", jwt.RegisteredClaims{
		Issuer:    testIssuer,
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	if _, err := verifier.VerifyAccessToken(raw); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenVerifier_WrongIssuer(t *testing.T) {
	verifier, err := NewTokenVerifier(testSecret, testIssuer)
	if err != nil {
		t.Fatalf("NewTokenVerifier: %v", err)
	}

	raw := signToken(t, testSecret, jwt.RegisteredClaims{
		Issuer:    "someone-else",
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	if _, err := verifier.VerifyAccessToken(raw); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenVerifier_MissingSubject(t *testing.T) {
	verifier, err := NewTokenVerifier(testSecret, testIssuer)
	if err != nil {
		t.Fatalf("NewTokenVerifier: %v", err)
	}

	raw := signToken(t, testSecret, jwt.RegisteredClaims{
		Issuer:    testIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	if _, err := verifier.VerifyAccessToken(raw); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for missing subject, got %v", err)
	}
}

func TestTokenVerifier_EmptyToken(t *testing.T) {
	verifier, err := NewTokenVerifier(testSecret, testIssuer)
	if err != nil {
		t.Fatalf("NewTokenVerifier: %v", err)
	}

	if _, err := verifier.VerifyAccessToken("   "); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
