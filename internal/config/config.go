package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Store drivers
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds the process configuration
type Config struct {
	GRPCAddr       string
	StoreDriver    string
	DBConnStr      string
	MigrateOnStart bool

	JWTSecret    string
	JWTExpiresIn time.Duration

	TxTimeout    time.Duration
	TxMaxRetries uint64

	LogLevel  slog.Level
	LogFormat string // "text" or "json"

	// SeedDemoUser, when set, gets the demo schemes at startup
	SeedDemoUser uuid.UUID
}

// Load reads .env, if present, and then the process environment
func Load() (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}
	return FromEnv(os.Getenv)
}

// LoadDBConnStr resolves only the database connection string, for tools that
// need nothing else from the environment
func LoadDBConnStr() (string, error) {
	if err := loadDotEnv(); err != nil {
		return "", err
	}
	return dbConnStr(os.Getenv), nil
}

func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read .env: %w", err)
	}
	return nil
}

// FromEnv builds a Config from getenv. Invalid values are errors.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		GRPCAddr:     withDefault(getenv("GRPC_ADDR"), ":8080"),
		StoreDriver:  strings.ToLower(withDefault(getenv("STORE_DRIVER"), StoreDriverPostgres)),
		DBConnStr:    dbConnStr(getenv),
		JWTSecret:    getenv("JWT_SECRET"),
		JWTExpiresIn: 24 * time.Hour,
		TxTimeout:    5 * time.Second,
		TxMaxRetries: 5,
		LogLevel:     slog.LevelInfo,
		LogFormat:    strings.ToLower(withDefault(getenv("LOG_FORMAT"), "text")),
	}

	var errs []error

	switch cfg.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMemory, cfg.StoreDriver))
	}

	if v := getenv("MIGRATE_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("MIGRATE_ON_START: %w", err))
		}
		cfg.MigrateOnStart = b
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}

	if v := getenv("JWT_EXPIRES_IN"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("JWT_EXPIRES_IN must be a positive duration, got %q", v))
		}
		cfg.JWTExpiresIn = d
	}

	if v := getenv("TX_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("TX_TIMEOUT must be a positive duration, got %q", v))
		}
		cfg.TxTimeout = d
	}

	if v := getenv("TX_MAX_RETRIES"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			errs = append(errs, fmt.Errorf("TX_MAX_RETRIES: %w", err))
		}
		cfg.TxMaxRetries = n
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
		}
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat))
	}

	if v := getenv("SEED_DEMO_USER"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("SEED_DEMO_USER: %w", err))
		}
		cfg.SeedDemoUser = id
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// dbConnStr returns DB_CONN_STR, or builds one from individual vars (Docker friendly)
func dbConnStr(getenv func(string) string) string {
	if connStr := getenv("DB_CONN_STR"); connStr != "" {
		return connStr
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		withDefault(getenv("DB_HOST"), "localhost"),
		withDefault(getenv("DB_PORT"), "5432"),
		withDefault(getenv("DB_USER"), "postgres"),
		withDefault(getenv("DB_PASSWORD"), "postgres"),
		withDefault(getenv("DB_NAME"), "savings"),
	)
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
