package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageModePostgres = "postgres"
	StorageModeSQLite   = "sqlite"
	StorageModeSheets   = "sheets"
	StorageModeMemory   = "memory"
)

type SheetsConfig struct {
	SpreadsheetID string
	SheetName     string
	ClientEmail   string
	PrivateKey    string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type Config struct {
	Env             string
	Port            string
	APIPrefix       string
	MaintenanceMode bool
	LogDir          string
	ClientURL       string

	StorageMode string
	DatabaseURL string
	SQLitePath  string
	Sheets      SheetsConfig

	StripeSecretKey     string
	StripeWebhookSecret string
	StripeTimeout       time.Duration

	AdminUsername     string
	AdminPasswordHash string
	JWTSecret         string
	JWTExpiresIn      time.Duration

	RedisURL string
	SMTP     SMTPConfig

	ReconcileInterval time.Duration
	ReconcileMinAge   time.Duration

	EventName string
}

// Load reads the process environment. Call godotenv first when running locally.
func Load() (*Config, error) {
	cfg := &Config{
		Env:                 getEnv("API_ENV", "production"),
		Port:                getEnv("PORT", "9090"),
		APIPrefix:           strings.TrimRight(os.Getenv("API_PREFIX"), "/"),
		LogDir:              getEnv("LOG_DIR", "logs"),
		ClientURL:           getEnv("CLIENT_URL", "http://localhost:5173"),
		StorageMode:         strings.ToLower(getEnv("STORAGE_MODE", StorageModePostgres)),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		SQLitePath:          getEnv("SQLITE_PATH", "registrations.db"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		AdminUsername:       getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash:   os.Getenv("ADMIN_PASSWORD_HASH"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		RedisURL:            os.Getenv("REDIS_URL"),
		EventName:           getEnv("EVENT_NAME", "our event"),
		Sheets: SheetsConfig{
			SpreadsheetID: os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID"),
			SheetName:     getEnv("GOOGLE_SHEETS_SHEET", "Registrations"),
			ClientEmail:   os.Getenv("GOOGLE_SHEETS_CLIENT_EMAIL"),
			// keys pasted into .env files usually carry escaped newlines
			PrivateKey: strings.ReplaceAll(os.Getenv("GOOGLE_SHEETS_PRIVATE_KEY"), `\n`, "\n"),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
			FromName: getEnv("SMTP_FROM_NAME", "Registrations"),
		},
	}

	var err error
	if cfg.MaintenanceMode, err = getBool("MAINTENANCE_MODE", false); err != nil {
		return nil, err
	}
	if cfg.SMTP.Port, err = getInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	if cfg.StripeTimeout, err = getDuration("STRIPE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.JWTExpiresIn, err = getDuration("JWT_EXPIRES_IN", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ReconcileInterval, err = getDuration("RECONCILE_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ReconcileMinAge, err = getDuration("RECONCILE_MIN_AGE", 10*time.Minute); err != nil {
		return nil, err
	}

	switch cfg.StorageMode {
	case StorageModePostgres, StorageModeSQLite, StorageModeSheets, StorageModeMemory:
	default:
		return nil, fmt.Errorf("STORAGE_MODE: unsupported value %q", cfg.StorageMode)
	}
	if cfg.DatabaseURL == "" && cfg.StorageMode == StorageModePostgres {
		cfg.DatabaseURL = GetDSN()
	}

	return cfg, nil
}

// WebhooksEnabled reports whether payment status is driven by signed webhooks.
func (c *Config) WebhooksEnabled() bool {
	return c.StripeWebhookSecret != ""
}

func (c *Config) IsLocal() bool {
	return c.Env == "local"
}

// GetDSN composes a postgres DSN from the DATABASE_* variables.
func GetDSN() string {
	DATABASE_HOST := getEnv("DATABASE_HOST", "localhost")
	DATABASE_PORT := getEnv("DATABASE_PORT", "5432")
	DATABASE_SSLMODE := getEnv("DATABASE_SSLMODE", "disable")
	DATABASE_TIMEZONE := getEnv("DATABASE_TIMEZONE", "UTC")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return i, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
