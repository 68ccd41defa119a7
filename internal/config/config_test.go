package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	goGuard "github.com/MrEthical07/goGuard"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Env != "development" {
		t.Fatalf("unexpected defaults: %+v", cfg.Server)
	}

	g := cfg.GuardConfig()
	if err := g.Validate(); err != nil {
		t.Fatalf("default guard config invalid: %v", err)
	}
	def := goGuard.DefaultConfig()
	if g.RateLimit.AuthCapacity != def.RateLimit.AuthCapacity || g.Monitor.Window != def.Monitor.Window {
		t.Fatalf("guard defaults drifted: %+v", g)
	}
	if len(g.RateLimit.AuthPathPrefixes) != 1 || g.RateLimit.AuthPathPrefixes[0] != "/api/auth/" {
		t.Fatalf("auth prefixes = %v", g.RateLimit.AuthPathPrefixes)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := chdirTemp(t)
	yaml := []byte(`
env: development
server:
  addr: ":9000"
guard:
  monitor:
    window: 5m
    deduplicate_alerts: true
  codes:
    digits: 8
`)
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GOGUARD_SERVER_ADDR", ":9100")
	t.Setenv("GOGUARD_GUARD_RATE_LIMIT_AUTH_CAPACITY", "2")

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9100" {
		t.Fatalf("env must override file, got %s", cfg.Server.Addr)
	}
	g := cfg.GuardConfig()
	if g.Monitor.Window != 5*time.Minute || !g.Monitor.DeduplicateAlerts || g.OneTimeCode.Digits != 8 {
		t.Fatalf("file values not applied: %+v", g.Monitor)
	}
	if g.RateLimit.AuthCapacity != 2 {
		t.Fatalf("auth capacity = %d", g.RateLimit.AuthCapacity)
	}
}

func TestLoadDotenv(t *testing.T) {
	dir := chdirTemp(t)
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("GOGUARD_SERVER_OPERATOR_TOKEN=dotenv-operator-token\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("GOGUARD_SERVER_OPERATOR_TOKEN") })

	cfg, err := Load("", envFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.OperatorToken != "dotenv-operator-token" {
		t.Fatalf("operator token = %q", cfg.Server.OperatorToken)
	}

	if _, err := Load("", filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing .env must be ignored: %v", err)
	}
}

func TestProductionRequiresSecret(t *testing.T) {
	chdirTemp(t)
	t.Setenv("GOGUARD_ENV", "production")

	if _, err := Load("", ""); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}

	t.Setenv("GOGUARD_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	if _, err := Load("", ""); err != nil {
		t.Fatalf("Load with secret: %v", err)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	chdirTemp(t)
	if _, err := Load("does-not-exist.yaml", ""); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}
