package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{"JWT_SECRET": "s3cret"}))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.GRPCAddr)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=savings sslmode=disable", cfg.DBConnStr)
	assert.False(t, cfg.MigrateOnStart)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, 5*time.Second, cfg.TxTimeout)
	assert.Equal(t, uint64(5), cfg.TxMaxRetries)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, uuid.Nil, cfg.SeedDemoUser)
}

func TestFromEnv_Overrides(t *testing.T) {
	demo := uuid.New()
	cfg, err := FromEnv(env(map[string]string{
		"GRPC_ADDR":        ":9090",
		"STORE_DRIVER":     "Memory",
		"DB_HOST":          "db",
		"DB_NAME":          "ledger",
		"MIGRATE_ON_START": "true",
		"JWT_SECRET":       "s3cret",
		"JWT_EXPIRES_IN":   "1h",
		"TX_TIMEOUT":       "250ms",
		"TX_MAX_RETRIES":   "2",
		"LOG_LEVEL":        "debug",
		"LOG_FORMAT":       "JSON",
		"SEED_DEMO_USER":   demo.String(),
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.GRPCAddr)
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Contains(t, cfg.DBConnStr, "host=db")
	assert.Contains(t, cfg.DBConnStr, "dbname=ledger")
	assert.True(t, cfg.MigrateOnStart)
	assert.Equal(t, time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, 250*time.Millisecond, cfg.TxTimeout)
	assert.Equal(t, uint64(2), cfg.TxMaxRetries)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, demo, cfg.SeedDemoUser)
}

func TestFromEnv_ConnStrWins(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"JWT_SECRET":  "s3cret",
		"DB_CONN_STR": "postgres://u:p@h/db",
		"DB_HOST":     "ignored",
	}))
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@h/db", cfg.DBConnStr)
}

func TestFromEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		vars   map[string]string
		errMsg string
	}{
		{"missing secret", map[string]string{}, "JWT_SECRET is required"},
		{"bad driver", map[string]string{"JWT_SECRET": "x", "STORE_DRIVER": "sqlite"}, "STORE_DRIVER"},
		{"bad timeout", map[string]string{"JWT_SECRET": "x", "TX_TIMEOUT": "soon"}, "TX_TIMEOUT"},
		{"negative timeout", map[string]string{"JWT_SECRET": "x", "TX_TIMEOUT": "-1s"}, "TX_TIMEOUT"},
		{"bad retries", map[string]string{"JWT_SECRET": "x", "TX_MAX_RETRIES": "many"}, "TX_MAX_RETRIES"},
		{"bad bool", map[string]string{"JWT_SECRET": "x", "MIGRATE_ON_START": "maybe"}, "MIGRATE_ON_START"},
		{"bad level", map[string]string{"JWT_SECRET": "x", "LOG_LEVEL": "loud"}, "LOG_LEVEL"},
		{"bad format", map[string]string{"JWT_SECRET": "x", "LOG_FORMAT": "xml"}, "LOG_FORMAT"},
		{"bad demo user", map[string]string{"JWT_SECRET": "x", "SEED_DEMO_USER": "bob"}, "SEED_DEMO_USER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(env(tt.vars))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadDBConnStr_IgnoresUnrelatedKeys(t *testing.T) {
	t.Setenv("DB_CONN_STR", "postgres://migrator@db/savings")
	t.Setenv("JWT_SECRET", "")

	connStr, err := LoadDBConnStr()
	require.NoError(t, err)
	assert.Equal(t, "postgres://migrator@db/savings", connStr)
}
