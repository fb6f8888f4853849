package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("APP_ADDR", "")

	cfg := Load()
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr :8080, got %q", cfg.Addr)
	}
	if cfg.Environment != "development" {
		t.Fatalf("expected development default, got %q", cfg.Environment)
	}
	if cfg.MaxBodyBytes != 1048576 {
		t.Fatalf("unexpected default body limit: %d", cfg.MaxBodyBytes)
	}
	if cfg.SnapshotInterval != 24*time.Hour {
		t.Fatalf("unexpected default snapshot interval: %v", cfg.SnapshotInterval)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MINUTE", "120")
	t.Setenv("ALLOW_SELF_SIGNUP", "false")
	t.Setenv("SNAPSHOT_INTERVAL", "1h")

	cfg := Load()
	if cfg.RateLimitPerMinute != 120 {
		t.Fatalf("expected rate limit 120, got %d", cfg.RateLimitPerMinute)
	}
	if cfg.AllowSelfSignup {
		t.Fatal("expected self signup disabled")
	}
	if cfg.SnapshotInterval != time.Hour {
		t.Fatalf("expected 1h interval, got %v", cfg.SnapshotInterval)
	}
}

func TestSignupTenantFollowsSeedTenant(t *testing.T) {
	t.Setenv("SEED_TENANT_NAME", "North Agency")
	t.Setenv("SIGNUP_TENANT_NAME", "")

	cfg := Load()
	if cfg.SignupTenantName != "North Agency" {
		t.Fatalf("expected signup tenant to follow seed tenant, got %q", cfg.SignupTenantName)
	}

	t.Setenv("SIGNUP_TENANT_NAME", "South Agency")
	cfg = Load()
	if cfg.SignupTenantName != "South Agency" {
		t.Fatalf("expected explicit signup tenant, got %q", cfg.SignupTenantName)
	}
}

func TestValidateRequiresDatabaseURL(t *testing.T) {
	cfg := Config{MaxBodyBytes: 2048, RateLimitPerMinute: 60}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
}

func TestValidateProductionRequiresSecrets(t *testing.T) {
	cfg := Config{
		DatabaseURL:        "postgres://localhost/app",
		Environment:        "production",
		MaxBodyBytes:       2048,
		RateLimitPerMinute: 60,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing JWT_SECRET in production")
	}

	cfg.JWTSecret = "secret"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing DATA_ENCRYPTION_KEY in production")
	}
}

func TestValidateEmailNeedsHost(t *testing.T) {
	cfg := Config{
		DatabaseURL:        "postgres://localhost/app",
		MaxBodyBytes:       2048,
		RateLimitPerMinute: 60,
		EmailEnabled:       true,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when email is enabled without SMTP host")
	}
}
