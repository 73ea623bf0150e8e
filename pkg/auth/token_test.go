package auth

import (
	"testing"
	"time"

	"github.com/mmfactory/pizzeria-backend/pkg/config"
)

func adminConfig() config.AdminConfig {
	return config.AdminConfig{
		Passphrase:        "unused-here",
		JWTSecret:         "test-secret",
		JWTIssuer:         "mmpizza",
		ExpirationMinutes: 60,
	}
}

func TestMintAndParseAdminToken(t *testing.T) {
	cfg := adminConfig()
	now := time.Now()

	signed, err := MintAdminToken(cfg, now)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	claims, err := ParseAdminToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Role != AdminRole {
		t.Fatalf("expected role %q, got %q", AdminRole, claims.Role)
	}
	if claims.Issuer != cfg.JWTIssuer {
		t.Fatalf("expected issuer %q, got %q", cfg.JWTIssuer, claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatal("expected a jti")
	}
}

func TestParseAdminTokenRejectsExpired(t *testing.T) {
	cfg := adminConfig()
	signed, err := MintAdminToken(cfg, time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	if _, err := ParseAdminToken(cfg, signed); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestParseAdminTokenRejectsWrongSecret(t *testing.T) {
	cfg := adminConfig()
	signed, err := MintAdminToken(cfg, time.Now())
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	other := cfg
	other.JWTSecret = "different-secret"
	if _, err := ParseAdminToken(other, signed); err == nil {
		t.Fatal("expected signature mismatch to be rejected")
	}
}

func TestMintAdminTokenValidatesConfig(t *testing.T) {
	cfg := adminConfig()
	cfg.JWTSecret = ""
	if _, err := MintAdminToken(cfg, time.Now()); err == nil {
		t.Fatal("expected missing secret error")
	}

	cfg = adminConfig()
	cfg.ExpirationMinutes = 0
	if _, err := MintAdminToken(cfg, time.Now()); err == nil {
		t.Fatal("expected invalid ttl error")
	}
}
