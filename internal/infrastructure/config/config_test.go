package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func load(t *testing.T, env map[string]string) (*Config, error) {
	t.Helper()
	return LoadWith(context.Background(), envconfig.MapLookuper(env))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t, map[string]string{})
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}

	if cfg.Port != "3000" {
		t.Fatalf("expected port 3000, got %s", cfg.Port)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("expected 24h TTL, got %s", cfg.TokenTTL)
	}
	if cfg.BcryptCost != 10 {
		t.Fatalf("expected bcrypt cost 10, got %d", cfg.BcryptCost)
	}
	if cfg.ApplicationCooldown != 7*24*time.Hour {
		t.Fatalf("expected 7 day cooldown, got %s", cfg.ApplicationCooldown)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.DSN != "portal.db" {
		t.Fatalf("unexpected store defaults: %+v", cfg.Store)
	}
	if cfg.Redis.Addr != "" {
		t.Fatalf("redis should be disabled by default")
	}
	if cfg.JWTSecret != developmentSecret {
		t.Fatalf("development should fall back to a local secret")
	}
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	_, err := load(t, map[string]string{"ENV": "production"})
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected JWT_SECRET error, got %v", err)
	}

	cfg, err := load(t, map[string]string{"ENV": "production", "JWT_SECRET": "s3cret"})
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}
	if cfg.IsDevelopment() || cfg.JWTSecret != "s3cret" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(t, map[string]string{
		"PORT":                 "8081",
		"STORE_DRIVER":         "postgres",
		"STORE_DSN":            "host=db user=portal",
		"REDIS_ADDR":           "redis:6379",
		"APPLICATION_COOLDOWN": "0s",
		"MAX_UPLOAD_SIZE":      "2M",
	})
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}
	if cfg.Port != "8081" || cfg.Store.Driver != "postgres" || cfg.Redis.Addr != "redis:6379" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.ApplicationCooldown != 0 || cfg.HTTP.MaxUploadSize != "2M" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown driver":      {"STORE_DRIVER": "cassandra"},
		"partial super admin": {"SUPER_ADMIN_USERNAME": "root"},
		"zero ttl":            {"TOKEN_TTL": "0s"},
		"bad duration":        {"TOKEN_TTL": "soon"},
	}
	for name, env := range cases {
		if _, err := load(t, env); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
