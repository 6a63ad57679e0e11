package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewJWTManagerRequiresSecret(t *testing.T) {
	manager, err := NewJWTManager("", "issuer-for-test", time.Hour)
	if err == nil {
		t.Fatalf("expected error when secret is empty")
	}
	if manager != nil {
		t.Fatalf("expected nil manager when secret is empty")
	}
}

func TestNewJWTManagerDefaults(t *testing.T) {
	manager, err := NewJWTManager("test-secret", "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if manager.issuer != "careconnect" {
		t.Fatalf("expected default issuer careconnect, got %q", manager.issuer)
	}
	if manager.ttl != 24*time.Hour {
		t.Fatalf("expected default ttl 24h, got %s", manager.ttl)
	}
}

func TestJWTManagerSignAndParseRoundTrip(t *testing.T) {
	manager, err := NewJWTManager("test-secret", "test-issuer", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err := manager.Sign("user-001", RoleUser)
	if err != nil {
		t.Fatalf("unexpected sign error: %v", err)
	}

	userCode, role, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if userCode != "user-001" {
		t.Fatalf("expected userCode user-001, got %q", userCode)
	}
	if role != RoleUser {
		t.Fatalf("expected role %q, got %q", RoleUser, role)
	}
}

func signWith(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return s
}

func TestJWTManagerParseRejectsInvalidSignature(t *testing.T) {
	manager := &JWTManager{secret: []byte("service-secret"), issuer: "issuer", ttl: time.Hour}

	tokenString := signWith(t, "other-secret", jwt.MapClaims{
		"sub":  "user-001",
		"role": RoleUser,
		"iss":  "issuer",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	if _, _, err := manager.Parse(tokenString); err == nil {
		t.Fatalf("expected parse error for invalid signature")
	}
}

func TestJWTManagerParseRejectsExpiredToken(t *testing.T) {
	manager := &JWTManager{secret: []byte("service-secret"), issuer: "issuer", ttl: time.Hour}

	tokenString := signWith(t, "service-secret", jwt.MapClaims{
		"sub": "user-001",
		"iss": "issuer",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})

	if _, _, err := manager.Parse(tokenString); err == nil {
		t.Fatalf("expected parse error for expired token")
	}
}

func TestJWTManagerParseRejectsForeignIssuer(t *testing.T) {
	manager := &JWTManager{secret: []byte("service-secret"), issuer: "careconnect", ttl: time.Hour}

	tokenString := signWith(t, "service-secret", jwt.MapClaims{
		"sub": "user-001",
		"iss": "someone-else",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	if _, _, err := manager.Parse(tokenString); err == nil {
		t.Fatalf("expected parse error for foreign issuer")
	}
}

func TestJWTManagerParseRejectsMissingSubClaim(t *testing.T) {
	manager := &JWTManager{secret: []byte("service-secret"), issuer: "issuer", ttl: time.Hour}

	tokenString := signWith(t, "service-secret", jwt.MapClaims{
		"role": RoleUser,
		"iss":  "issuer",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	_, _, err := manager.Parse(tokenString)
	if err == nil {
		t.Fatalf("expected parse error for missing sub claim")
	}
	if !strings.Contains(err.Error(), "token missing sub claim") {
		t.Fatalf("expected missing sub error, got %v", err)
	}
}

func TestJWTManagerParseAllowsMissingRoleClaimAsEmptyString(t *testing.T) {
	manager := &JWTManager{secret: []byte("service-secret"), issuer: "issuer", ttl: time.Hour}

	tokenString := signWith(t, "service-secret", jwt.MapClaims{
		"sub": "user-001",
		"iss": "issuer",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	userCode, role, err := manager.Parse(tokenString)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if userCode != "user-001" {
		t.Fatalf("expected userCode user-001, got %q", userCode)
	}
	if role != "" {
		t.Fatalf("expected empty role when claim is missing, got %q", role)
	}
}
