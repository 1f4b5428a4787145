package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookorders/internal/catalog"
	"github.com/vladislavdragonenkov/bookorders/internal/storage/postgres"
)

// StorageDriver выбирает реализацию хранилища заказов.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
)

// Переменные окружения сервиса.
const (
	envHTTPAddr            = "ORDERS_HTTP_ADDR"
	envGRPCAddr            = "ORDERS_GRPC_ADDR"
	envMetricsAddr         = "ORDERS_METRICS_ADDR"
	envStorageDriver       = "ORDERS_STORAGE_DRIVER"
	envPostgresDSN         = "ORDERS_POSTGRES_DSN"
	envPostgresAutoMigrate = "ORDERS_POSTGRES_AUTO_MIGRATE"
	envPostgresMaxConns    = "ORDERS_POSTGRES_MAX_CONNS"
	envCatalogURL          = "ORDERS_CATALOG_URL"
	envCatalogTimeout      = "ORDERS_CATALOG_TIMEOUT"
	envCatalogMaxRetries   = "ORDERS_CATALOG_MAX_RETRIES"
	envCatalogBackoffBase  = "ORDERS_CATALOG_BACKOFF_BASE"
	envCatalogBackoffMax   = "ORDERS_CATALOG_BACKOFF_MAX"
	envKafkaBrokers        = "KAFKA_BROKERS"
	envKafkaTopic          = "ORDERS_KAFKA_TOPIC"
	envLogLevel            = "ORDERS_LOG_LEVEL"
)

// Config описывает настройки запуска сервиса заказов.
type Config struct {
	HTTPAddr    string
	GRPCAddr    string
	MetricsAddr string

	StorageDriver       StorageDriver
	PostgresDSN         string
	PostgresAutoMigrate bool
	PostgresMaxConns    int

	Catalog catalog.Config

	KafkaBrokers []string
	KafkaTopic   string

	LogLevel        log.Level
	ShutdownTimeout time.Duration
}

// DefaultConfig возвращает конфигурацию для локального запуска без внешних зависимостей,
// кроме каталога книг.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":9002",
		GRPCAddr:            ":50051",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		PostgresMaxConns:    postgres.DefaultMaxConns,
		Catalog:             catalog.DefaultConfig(),
		LogLevel:            log.InfoLevel,
		ShutdownTimeout:     defaultShutdownTimeout,
	}
}

// LoadConfigFromEnv накладывает переменные окружения на DefaultConfig.
func LoadConfigFromEnv() (Config, error) {
	return loadConfig(os.Getenv)
}

func loadConfig(getenv func(string) string) (Config, error) {
	cfg := DefaultConfig()
	var errs []error

	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = d
	}

	setString(envHTTPAddr, &cfg.HTTPAddr)
	setString(envGRPCAddr, &cfg.GRPCAddr)
	setString(envMetricsAddr, &cfg.MetricsAddr)
	setString(envPostgresDSN, &cfg.PostgresDSN)
	setString(envCatalogURL, &cfg.Catalog.BaseURL)
	setString(envKafkaTopic, &cfg.KafkaTopic)
	setDuration(envCatalogTimeout, &cfg.Catalog.Timeout)
	setDuration(envCatalogBackoffBase, &cfg.Catalog.BackoffBase)
	setDuration(envCatalogBackoffMax, &cfg.Catalog.BackoffMax)

	if v := strings.TrimSpace(getenv(envStorageDriver)); v != "" {
		cfg.StorageDriver = StorageDriver(strings.ToLower(v))
	}
	if v := strings.TrimSpace(getenv(envPostgresAutoMigrate)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", envPostgresAutoMigrate, err))
		} else {
			cfg.PostgresAutoMigrate = b
		}
	}
	if v := strings.TrimSpace(getenv(envPostgresMaxConns)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", envPostgresMaxConns, err))
		} else {
			cfg.PostgresMaxConns = n
		}
	}
	if v := strings.TrimSpace(getenv(envCatalogMaxRetries)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", envCatalogMaxRetries, err))
		} else {
			cfg.Catalog.MaxRetries = n
		}
	}
	if v := strings.TrimSpace(getenv(envKafkaBrokers)); v != "" {
		cfg.KafkaBrokers = splitBrokers(v)
	}
	if v := strings.TrimSpace(getenv(envLogLevel)); v != "" {
		level, err := log.ParseLevel(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", envLogLevel, err))
		} else {
			cfg.LogLevel = level
		}
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	var errs []error
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http address is required"))
	}
	if c.MetricsAddr == "" {
		errs = append(errs, errors.New("metrics address is required"))
	}
	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			errs = append(errs, fmt.Errorf("%s is required for postgres storage", envPostgresDSN))
		}
		if c.PostgresMaxConns <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", envPostgresMaxConns))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported storage driver %q", c.StorageDriver))
	}
	if err := c.Catalog.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func splitBrokers(raw string) []string {
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, part := range parts {
		if broker := strings.TrimSpace(part); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}
