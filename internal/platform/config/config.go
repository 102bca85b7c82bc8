package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreBolt     = "bolt"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	StoreDriver  string
	PostgresDSN  string
	BoltPath     string
	KafkaBrokers []string

	PostgresMaxOpenConns    int
	PostgresMaxIdleConns    int
	PostgresConnMaxLifetime time.Duration

	ElectionCacheSize  int
	OutboxPollInterval time.Duration
	OutboxBatchSize    int

	EnableResultsArchiver bool
	AutoMigrate           bool
}

// Load reads the process environment. Values from an optional .env file fill
// in variables that are not already set; ENV_FILE overrides its location.
func Load() (Config, error) {
	envFile := strings.TrimSpace(os.Getenv("ENV_FILE"))
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "electoral"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	driver := strings.ToLower(strings.TrimSpace(os.Getenv("STORE_DRIVER")))
	switch driver {
	case "":
		driver = StoreMemory
	case StoreMemory, StorePostgres, StoreBolt:
	default:
		return Config{}, fmt.Errorf("unsupported STORE_DRIVER %q", driver)
	}

	boltPath := strings.TrimSpace(os.Getenv("BOLT_PATH"))
	if boltPath == "" {
		boltPath = "electoral.db"
	}

	cfg := Config{
		ServiceName:  service,
		HTTPPort:     port,
		StoreDriver:  driver,
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		BoltPath:     boltPath,
		KafkaBrokers: brokers,

		PostgresMaxOpenConns:    envInt("POSTGRES_MAX_OPEN_CONNS", 20),
		PostgresMaxIdleConns:    envInt("POSTGRES_MAX_IDLE_CONNS", 5),
		PostgresConnMaxLifetime: envDuration("POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),

		ElectionCacheSize:  envInt("ELECTION_CACHE_SIZE", 256),
		OutboxPollInterval: envDuration("OUTBOX_POLL_INTERVAL", 2*time.Second),
		OutboxBatchSize:    envInt("OUTBOX_BATCH_SIZE", 100),

		EnableResultsArchiver: envBool("ENABLE_RESULTS_ARCHIVER", true),
		AutoMigrate:           envBool("AUTO_MIGRATE", true),
	}
	if cfg.StoreDriver == StorePostgres && strings.TrimSpace(cfg.PostgresDSN) == "" {
		return Config{}, errors.New("POSTGRES_DSN is required when STORE_DRIVER=postgres")
	}
	return cfg, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
