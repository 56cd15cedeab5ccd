package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	SequenceSQL   = "sql"
	SequenceRedis = "redis"
)

type Config struct {
	Server struct {
		Address        string   `yaml:"address"`
		PublicURL      string   `yaml:"public_url"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Sequence struct {
		Backend string `yaml:"backend"`
	} `yaml:"sequence"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
	Company struct {
		Name         string `yaml:"name"`
		Tagline      string `yaml:"tagline"`
		Currency     string `yaml:"currency"`
		LogoPath     string `yaml:"logo_path"`
		ContactEmail string `yaml:"contact_email"`
		Location     string `yaml:"location"`
	} `yaml:"company"`
	Brevo struct {
		APIKey      string `yaml:"api_key"`
		SenderEmail string `yaml:"sender_email"`
		SenderName  string `yaml:"sender_name"`
		BaseURL     string `yaml:"base_url"`
	} `yaml:"brevo"`
	Storage struct {
		Enabled       bool   `yaml:"enabled"`
		Endpoint      string `yaml:"endpoint"`
		Region        string `yaml:"region"`
		Bucket        string `yaml:"bucket"`
		AccessKey     string `yaml:"access_key"`
		SecretKey     string `yaml:"secret_key"`
		PublicBaseURL string `yaml:"public_base_url"`
	} `yaml:"storage"`
	Auth struct {
		JWTSecret        string `yaml:"jwt_secret"`
		AccessTTLMinutes int    `yaml:"access_ttl_minutes"`
		AdminAccessCode  string `yaml:"admin_access_code"`
		GoogleClientID   string `yaml:"google_client_id"`
		OTPTTLMinutes    int    `yaml:"otp_ttl_minutes"`
		OTPMaxAttempts   int    `yaml:"otp_max_attempts"`
	} `yaml:"auth"`
}

// LoadConfig reads the YAML file at path (a missing file is fine), applies
// environment overrides and defaults, and validates the result.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	overrideString(&c.Server.PublicURL, "PUBLIC_URL")
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Address = ":" + strings.TrimPrefix(v, ":")
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}

	overrideString(&c.Database.Driver, "DATABASE_DRIVER")
	overrideString(&c.Database.URL, "DATABASE_URL")

	overrideString(&c.Redis.Addr, "REDIS_ADDR")
	overrideString(&c.Redis.Password, "REDIS_PASSWORD")
	if err := overrideInt(&c.Redis.DB, "REDIS_DB"); err != nil {
		return err
	}

	overrideString(&c.Sequence.Backend, "SEQUENCE_BACKEND")
	overrideString(&c.Logging.Level, "LOG_LEVEL")
	overrideString(&c.Logging.Format, "LOG_FORMAT")

	overrideString(&c.Company.Name, "COMPANY_NAME")
	overrideString(&c.Company.Currency, "COMPANY_CURRENCY")
	overrideString(&c.Company.LogoPath, "COMPANY_LOGO_PATH")

	overrideString(&c.Brevo.APIKey, "BREVO_API_KEY")
	overrideString(&c.Brevo.SenderEmail, "EMAIL_USER")
	overrideString(&c.Brevo.SenderName, "EMAIL_SENDER_NAME")

	if v := os.Getenv("S3_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse S3_ENABLED: %w", err)
		}
		c.Storage.Enabled = enabled
	}
	overrideString(&c.Storage.Endpoint, "S3_ENDPOINT")
	overrideString(&c.Storage.Region, "S3_REGION")
	overrideString(&c.Storage.Bucket, "S3_BUCKET")
	overrideString(&c.Storage.AccessKey, "S3_ACCESS_KEY")
	overrideString(&c.Storage.SecretKey, "S3_SECRET_KEY")
	overrideString(&c.Storage.PublicBaseURL, "S3_PUBLIC_BASE_URL")

	overrideString(&c.Auth.JWTSecret, "JWT_SECRET")
	overrideString(&c.Auth.AdminAccessCode, "ADMIN_ACCESS_CODE")
	overrideString(&c.Auth.GoogleClientID, "GOOGLE_CLIENT_ID")
	if err := overrideInt(&c.Auth.AccessTTLMinutes, "JWT_ACCESS_MINUTES"); err != nil {
		return err
	}
	if err := overrideInt(&c.Auth.OTPTTLMinutes, "OTP_MINUTES"); err != nil {
		return err
	}
	return overrideInt(&c.Auth.OTPMaxAttempts, "OTP_MAX_ATTEMPTS")
}

func (c *Config) applyDefaults() {
	setDefault(&c.Server.Address, ":4001")
	setDefault(&c.Database.Driver, DriverMySQL)
	setDefault(&c.Sequence.Backend, SequenceSQL)
	setDefault(&c.Logging.Level, "info")
	setDefault(&c.Logging.Format, "console")
	setDefault(&c.Company.Name, "Elevate Cleaning Co.")
	setDefault(&c.Company.Tagline, "Professional Cleaning Services You Can Trust")
	setDefault(&c.Company.Currency, "KSH")
	setDefault(&c.Company.Location, "Nairobi, Kenya")
	setDefault(&c.Brevo.BaseURL, "https://api.brevo.com/v3")
	setDefault(&c.Brevo.SenderName, c.Company.Name)
	setDefault(&c.Storage.Region, "us-east-1")
	if c.Auth.AccessTTLMinutes == 0 {
		c.Auth.AccessTTLMinutes = 120
	}
	if c.Auth.OTPTTLMinutes == 0 {
		c.Auth.OTPTTLMinutes = 10
	}
	if c.Auth.OTPMaxAttempts == 0 {
		c.Auth.OTPMaxAttempts = 5
	}
}

// Validate reports every missing or inconsistent setting at once.
func (c Config) Validate() error {
	var problems []string

	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres:
		if c.Database.URL == "" {
			problems = append(problems, "database.url (DATABASE_URL) is required")
		}
	case DriverMemory:
	default:
		problems = append(problems, fmt.Sprintf("unsupported database.driver %q", c.Database.Driver))
	}

	switch c.Sequence.Backend {
	case SequenceSQL:
	case SequenceRedis:
		if c.Redis.Addr == "" {
			problems = append(problems, "redis.addr (REDIS_ADDR) is required for the redis sequence backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("unsupported sequence.backend %q", c.Sequence.Backend))
	}

	if c.Auth.JWTSecret == "" {
		problems = append(problems, "auth.jwt_secret (JWT_SECRET) is required")
	}
	if c.Auth.AccessTTLMinutes < 0 || c.Auth.OTPTTLMinutes < 0 || c.Auth.OTPMaxAttempts < 0 {
		problems = append(problems, "auth durations and attempts must be positive")
	}

	if c.Storage.Enabled && (c.Storage.Bucket == "" || c.Storage.AccessKey == "" || c.Storage.SecretKey == "") {
		problems = append(problems, "storage.bucket, storage.access_key and storage.secret_key are required when storage is enabled")
	}

	if len(problems) > 0 {
		return errors.New("invalid config: " + strings.Join(problems, "; "))
	}
	return nil
}

func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.Auth.AccessTTLMinutes) * time.Minute
}

func (c Config) OTPTTL() time.Duration {
	return time.Duration(c.Auth.OTPTTLMinutes) * time.Minute
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func overrideInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDefault(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
