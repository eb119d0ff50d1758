package unit

import (
	"testing"
	"time"

	"github.com/lessismore22/Quickfund/internal/auth"
)

func TestJWTMintAndParse(t *testing.T) {
	m := auth.NewJWTManager("issuer", "aud", "secret")
	tok, err := m.Mint("u1", "s1", auth.RoleBorrower, "access", 5*time.Minute)
	if err != nil {
		t.Fatalf("mint error: %v", err)
	}

	claims, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if claims.UserID != "u1" || claims.SessionID != "s1" || claims.Type != "access" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Role != auth.RoleBorrower {
		t.Fatalf("role claim = %s", claims.Role)
	}
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	m := auth.NewJWTManager("issuer", "aud", "secret")
	tok, err := m.Mint("u1", "s1", auth.RoleBorrower, "access", -time.Minute)
	if err != nil {
		t.Fatalf("mint error: %v", err)
	}
	if _, err := m.Parse(tok); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestJWTRejectsForeignSignature(t *testing.T) {
	m := auth.NewJWTManager("issuer", "aud", "secret")
	other := auth.NewJWTManager("issuer", "aud", "different-secret")
	tok, err := other.Mint("u1", "s1", auth.RoleAdmin, "access", 5*time.Minute)
	if err != nil {
		t.Fatalf("mint error: %v", err)
	}
	if _, err := m.Parse(tok); err == nil {
		t.Fatalf("expected foreign signature to be rejected")
	}
}
