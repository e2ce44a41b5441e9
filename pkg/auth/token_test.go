package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/selormtech/storefront-backend/pkg/config"
	"github.com/selormtech/storefront-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "unit-test-secret", Issuer: "storefront-test"}
}

func testPayload() SessionPayload {
	storeID := uuid.New()
	return SessionPayload{
		UserID:    uuid.New(),
		Email:     "ama@acme.test",
		Name:      "Ama Serwaa",
		Role:      enums.UserRoleOwner,
		StoreID:   &storeID,
		StoreSlug: "acme",
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	payload := testPayload()

	token, err := MintSessionToken(cfg, time.Now(), payload, 24*time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := ParseSessionToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != payload.UserID {
		t.Fatalf("user id mismatch: %s vs %s", claims.UserID, payload.UserID)
	}
	if claims.Email != payload.Email || claims.Name != payload.Name {
		t.Fatalf("identity fields mismatch: %+v", claims)
	}
	if claims.Role != enums.UserRoleOwner || claims.IsPlatformAdmin {
		t.Fatalf("role fields mismatch: %+v", claims)
	}
	if claims.StoreID == nil || *claims.StoreID != *payload.StoreID || claims.StoreSlug != "acme" {
		t.Fatalf("tenant fields mismatch: %+v", claims)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()

	token, err := MintSessionToken(cfg, time.Now().Add(-2*time.Second), testPayload(), time.Second)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	_, err = ParseSessionToken(cfg, token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseRejectsForeignSignature(t *testing.T) {
	token, err := MintSessionToken(config.JWTConfig{Secret: "other-secret", Issuer: "storefront-test"}, time.Now(), testPayload(), time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	_, err = ParseSessionToken(testJWTConfig(), token)
	if !errors.Is(err, ErrTokenInvalidSignature) {
		t.Fatalf("expected ErrTokenInvalidSignature, got %v", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := ParseSessionToken(testJWTConfig(), "not.a.jwt")
	if !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestMintValidatesInputs(t *testing.T) {
	cfg := testJWTConfig()
	payload := testPayload()

	if _, err := MintSessionToken(config.JWTConfig{Issuer: "x"}, time.Now(), payload, time.Hour); err == nil {
		t.Fatal("expected error without secret")
	}
	if _, err := MintSessionToken(cfg, time.Now(), payload, 0); err == nil {
		t.Fatal("expected error with zero ttl")
	}

	bad := payload
	bad.Role = enums.UserRole("superuser")
	if _, err := MintSessionToken(cfg, time.Now(), bad, time.Hour); err == nil {
		t.Fatal("expected error with unknown role")
	}
}
