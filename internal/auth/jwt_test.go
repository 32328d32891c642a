package auth

import (
	"context"
	"testing"
	"time"

	"movienight-go/internal/config"
)

var testAuthCfg = config.AuthConfig{
	JWTSecretKey: "test-secret",
	JWTExpiry:    time.Hour,
}

// memoryBlacklist is a map-backed TokenBlacklist for tests.
type memoryBlacklist struct {
	revoked map[string]bool
}

func (b *memoryBlacklist) Add(ctx context.Context, jti string, originalTokenExpTime time.Time) error {
	if b.revoked == nil {
		b.revoked = make(map[string]bool)
	}
	b.revoked[jti] = true
	return nil
}

func (b *memoryBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	return b.revoked[jti], nil
}

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken("user-1", "alice@example.com", testAuthCfg)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(context.Background(), token, testAuthCfg.JWTSecretKey, nil)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %s, want user-1", claims.UserID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("Email = %s, want alice@example.com", claims.Email)
	}
	if claims.ID == "" {
		t.Error("token must carry a JTI")
	}
}

func TestValidateTokenWrongKey(t *testing.T) {
	token, err := GenerateToken("user-1", "alice@example.com", testAuthCfg)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ValidateToken(context.Background(), token, "other-secret", nil); err == nil {
		t.Fatal("expected validation to fail with the wrong key")
	}
}

func TestValidateExpiredToken(t *testing.T) {
	cfg := config.AuthConfig{JWTSecretKey: "test-secret", JWTExpiry: -time.Minute}
	token, err := GenerateToken("user-1", "alice@example.com", cfg)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ValidateToken(context.Background(), token, cfg.JWTSecretKey, nil); err == nil {
		t.Fatal("expected validation to fail for an expired token")
	}
}

func TestValidateRevokedToken(t *testing.T) {
	ctx := context.Background()
	token, err := GenerateToken("user-1", "alice@example.com", testAuthCfg)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	blacklist := &memoryBlacklist{}
	claims, err := ValidateToken(ctx, token, testAuthCfg.JWTSecretKey, blacklist)
	if err != nil {
		t.Fatalf("ValidateToken before revocation: %v", err)
	}

	if err := blacklist.Add(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		t.Fatalf("blacklist Add: %v", err)
	}
	if _, err := ValidateToken(ctx, token, testAuthCfg.JWTSecretKey, blacklist); err == nil {
		t.Fatal("expected validation to fail for a revoked token")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret-password" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPasswordHash("s3cret-password", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong-password", hash) {
		t.Error("wrong password accepted")
	}
}
