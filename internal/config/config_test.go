package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleYAML = `
server:
  address: ":8080"
  public_url: "https://invoices.example.com"
database:
  driver: postgres
  url: "postgres://localhost/invoices"
sequence:
  backend: sql
auth:
  jwt_secret: from-file
  otp_ttl_minutes: 15
company:
  name: "Acme Ltd"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Address != ":8080" {
		t.Fatalf("expected :8080, got %q", cfg.Server.Address)
	}
	if cfg.Database.Driver != DriverPostgres {
		t.Fatalf("expected postgres driver, got %q", cfg.Database.Driver)
	}
	if cfg.Company.Name != "Acme Ltd" || cfg.Brevo.SenderName != "Acme Ltd" {
		t.Fatalf("company name not applied: %q / %q", cfg.Company.Name, cfg.Brevo.SenderName)
	}
	if cfg.Company.Currency != "KSH" {
		t.Fatalf("expected default currency, got %q", cfg.Company.Currency)
	}
	if cfg.OTPTTL().Minutes() != 15 {
		t.Fatalf("expected 15 minute otp ttl, got %v", cfg.OTPTTL())
	}
	if cfg.Auth.OTPMaxAttempts != 5 {
		t.Fatalf("expected default attempts 5, got %d", cfg.Auth.OTPMaxAttempts)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Address != ":9090" {
		t.Fatalf("expected :9090, got %q", cfg.Server.Address)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Fatalf("expected env secret, got %q", cfg.Auth.JWTSecret)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins %v", cfg.Server.AllowedOrigins)
	}
}

func TestLoadConfigMissingFileUsesEnv(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Address != ":4001" {
		t.Fatalf("expected default address, got %q", cfg.Server.Address)
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	var cfg Config
	cfg.Database.Driver = DriverMySQL
	cfg.Sequence.Backend = SequenceRedis
	cfg.Storage.Enabled = true

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"DATABASE_URL", "REDIS_ADDR", "JWT_SECRET", "storage.bucket"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %q", want, err.Error())
		}
	}
}

func TestLoadConfigRejectsBadInt(t *testing.T) {
	t.Setenv("OTP_MINUTES", "ten")
	if _, err := LoadConfig(writeConfig(t, sampleYAML)); err == nil {
		t.Fatal("expected parse error")
	}
}
