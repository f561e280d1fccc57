package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/lemon/task-api/internal/infrastructure/security"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": secret,
	}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected server defaults: %+v", cfg)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Fatalf("expected 24h token TTL, got %v", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.BcryptCost != 10 {
		t.Fatalf("expected bcrypt cost 10, got %d", cfg.Auth.BcryptCost)
	}
	if cfg.Redis.LockTTL != 5*time.Second || cfg.Audit.Workers != 4 || cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected runtime defaults: %+v", cfg)
	}
	if cfg.Mongo.URI != "" || cfg.Redis.Addr != "" || len(cfg.AllowedOrigins) != 0 {
		t.Fatalf("stores must be opt-in, got %+v %+v", cfg.Mongo, cfg.Redis)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development environment")
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":         secret,
		"TOKEN_TTL":          "1h",
		"BCRYPT_COST":        "12",
		"ENV":                "production",
		"MONGO_URI":          "mongodb://mongo:27017",
		"REDIS_ADDR":         "redis:6379",
		"REDIS_PASSWORD":     "hunter22",
		"REDIS_DIAL_TIMEOUT": "2s",
		"ADMIN_USERNAME":     "root",
		"ADMIN_PASSWORD":     "rootpass",
		"ALLOWED_ORIGINS":    "https://app.lemon.dev,http://localhost:3000",
	}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Auth.TokenTTL != time.Hour || cfg.Auth.BcryptCost != 12 {
		t.Fatalf("overrides not applied: %+v", cfg.Auth)
	}
	if cfg.IsDevelopment() {
		t.Fatalf("expected production environment")
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://localhost:3000" {
		t.Fatalf("unexpected origins: %v", cfg.AllowedOrigins)
	}
	if cfg.Mongo.URI != "mongodb://mongo:27017" || cfg.Redis.Addr != "redis:6379" {
		t.Fatalf("store settings not applied: %+v %+v", cfg.Mongo, cfg.Redis)
	}
	if cfg.Redis.Password != "hunter22" || cfg.Redis.DialTimeout != 2*time.Second {
		t.Fatalf("redis options not applied: %+v", cfg.Redis)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{}},
		{"short secret", map[string]string{"JWT_SECRET": "too-short"}},
		{"zero ttl", map[string]string{"JWT_SECRET": secret, "TOKEN_TTL": "0s"}},
		{"admin without password", map[string]string{"JWT_SECRET": secret, "ADMIN_USERNAME": "root"}},
		{"bad duration", map[string]string{"JWT_SECRET": secret, "TOKEN_TTL": "soon"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadFrom(context.Background(), envconfig.MapLookuper(tc.env)); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestLoadFrom_ShortSecretIsWeak(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{"JWT_SECRET": "short"}))
	if !errors.Is(err, security.ErrWeakSecret) {
		t.Fatalf("expected ErrWeakSecret, got %v", err)
	}
}
