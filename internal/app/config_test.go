package app

import (
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func envFrom(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestDefaultConfig_Values(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, ":9002", cfg.HTTPAddr)
	require.Equal(t, ":50051", cfg.GRPCAddr)
	require.Equal(t, ":9090", cfg.MetricsAddr)
	require.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	require.True(t, cfg.PostgresAutoMigrate)
	require.Equal(t, 25, cfg.PostgresMaxConns)
	require.Equal(t, "http://localhost:9001", cfg.Catalog.BaseURL)
	require.Equal(t, 3*time.Second, cfg.Catalog.Timeout)
	require.Equal(t, 3, cfg.Catalog.MaxRetries)
	require.Equal(t, 100*time.Millisecond, cfg.Catalog.BackoffBase)
	require.Equal(t, log.InfoLevel, cfg.LogLevel)
	require.Empty(t, cfg.KafkaBrokers)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_EmptyEnvGivesDefaults(t *testing.T) {
	cfg, err := loadConfig(envFrom(nil))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_Overrides(t *testing.T) {
	cfg, err := loadConfig(envFrom(map[string]string{
		envHTTPAddr:            "127.0.0.1:8080",
		envGRPCAddr:            ":6000",
		envMetricsAddr:         ":9191",
		envStorageDriver:       "POSTGRES",
		envPostgresDSN:         "postgres://orders:orders@db:5432/orders?sslmode=disable",
		envPostgresAutoMigrate: "false",
		envPostgresMaxConns:    "8",
		envCatalogURL:          "http://catalog:9001",
		envCatalogTimeout:      "1500ms",
		envCatalogMaxRetries:   "5",
		envCatalogBackoffBase:  "50ms",
		envCatalogBackoffMax:   "1s",
		envKafkaBrokers:        " kafka-1:9092, ,kafka-2:9092 ",
		envKafkaTopic:          "custom.orders",
		envLogLevel:            "debug",
	}))
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:8080", cfg.HTTPAddr)
	require.Equal(t, ":6000", cfg.GRPCAddr)
	require.Equal(t, ":9191", cfg.MetricsAddr)
	require.Equal(t, StorageDriverPostgres, cfg.StorageDriver)
	require.False(t, cfg.PostgresAutoMigrate)
	require.Equal(t, 8, cfg.PostgresMaxConns)
	require.Equal(t, "http://catalog:9001", cfg.Catalog.BaseURL)
	require.Equal(t, 1500*time.Millisecond, cfg.Catalog.Timeout)
	require.Equal(t, 5, cfg.Catalog.MaxRetries)
	require.Equal(t, 50*time.Millisecond, cfg.Catalog.BackoffBase)
	require.Equal(t, time.Second, cfg.Catalog.BackoffMax)
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "custom.orders", cfg.KafkaTopic)
	require.Equal(t, log.DebugLevel, cfg.LogLevel)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		inErr string
	}{
		{name: "bad timeout", env: map[string]string{envCatalogTimeout: "soon"}, inErr: envCatalogTimeout},
		{name: "zero timeout", env: map[string]string{envCatalogTimeout: "0s"}, inErr: "timeout must be positive"},
		{name: "bad retries", env: map[string]string{envCatalogMaxRetries: "three"}, inErr: envCatalogMaxRetries},
		{name: "negative retries", env: map[string]string{envCatalogMaxRetries: "-1"}, inErr: "max retries"},
		{name: "bad auto migrate", env: map[string]string{envPostgresAutoMigrate: "maybe"}, inErr: envPostgresAutoMigrate},
		{name: "bad log level", env: map[string]string{envLogLevel: "loud"}, inErr: envLogLevel},
		{name: "unknown driver", env: map[string]string{envStorageDriver: "sqlite"}, inErr: "unsupported storage driver"},
		{name: "bad max conns", env: map[string]string{envPostgresMaxConns: "many"}, inErr: envPostgresMaxConns},
		{
			name:  "zero max conns",
			env:   map[string]string{envStorageDriver: "postgres", envPostgresDSN: "postgres://db/orders", envPostgresMaxConns: "0"},
			inErr: "must be positive",
		},
		{name: "postgres without dsn", env: map[string]string{envStorageDriver: "postgres"}, inErr: envPostgresDSN},
		{name: "bad catalog url", env: map[string]string{envCatalogURL: "catalog:9001"}, inErr: "base url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(envFrom(tt.env))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.inErr)
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv(envHTTPAddr, ":18080")
	t.Setenv(envKafkaBrokers, "")

	cfg, err := LoadConfigFromEnv()
	require.NoError(t, err)
	require.Equal(t, ":18080", cfg.HTTPAddr)
}

func TestConfigValidate_RequiresAddresses(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HTTPAddr = ""
	cfg.MetricsAddr = ""

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "http address")
	require.Contains(t, err.Error(), "metrics address")
}
