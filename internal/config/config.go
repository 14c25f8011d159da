package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Hub source kinds accepted by HUB_SOURCE.
const (
	SourceFixture  = "fixture"
	SourceRemote   = "remote"
	SourcePostgres = "postgres"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Hub source configuration.
	HubSource      string
	FixturePath    string
	SimulatedDelay time.Duration
	APIBaseURL     string
	APITimeout     time.Duration
	DatabaseURL    string

	// Response cache and query defaults.
	CacheTTL      time.Duration
	DefaultRadius float64

	// Status feed configuration.
	StatusFeedEnabled  bool
	KafkaBrokers       []string
	KafkaStatusTopic   string
	KafkaGroupID       string
	BatchSize          int
	BatchFlushInterval time.Duration

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
// Variables from an optional .env file (or ENV_FILE) never override the real environment.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	simulatedDelay, err := parseDuration("SIMULATED_DELAY", "0s", true)
	if err != nil {
		return nil, err
	}
	apiTimeout, err := parseDuration("HUB_API_TIMEOUT", "10s", false)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDuration("CACHE_TTL", "30s", false)
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parseDuration("MAPBOX_TIMEOUT", "5s", false)
	if err != nil {
		return nil, err
	}

	defaultRadius, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("DEFAULT_RADIUS_MILES", "50"), 64)
	if err != nil || defaultRadius <= 0 {
		return nil, errors.New("invalid DEFAULT_RADIUS_MILES")
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		HubSource:      sharedcfg.EnvOrDefault("HUB_SOURCE", SourceFixture),
		FixturePath:    os.Getenv("HUB_FIXTURE_PATH"),
		SimulatedDelay: simulatedDelay,
		APIBaseURL:     os.Getenv("HUB_API_BASE_URL"),
		APITimeout:     apiTimeout,
		DatabaseURL:    os.Getenv("DATABASE_URL"),

		CacheTTL:      cacheTTL,
		DefaultRadius: defaultRadius,

		StatusFeedEnabled:  os.Getenv("STATUS_FEED_ENABLED") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaStatusTopic:   sharedcfg.EnvOrDefault("KAFKA_STATUS_TOPIC", "hub-status-updates"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "resilience-hubs"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.HubSource {
	case SourceFixture:
	case SourceRemote:
		if c.APIBaseURL == "" {
			return errors.New("HUB_API_BASE_URL is required when HUB_SOURCE is remote")
		}
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when HUB_SOURCE is postgres")
		}
	default:
		return fmt.Errorf("invalid HUB_SOURCE %q: want fixture, remote or postgres", c.HubSource)
	}

	if c.StatusFeedEnabled {
		if c.HubSource != SourceFixture {
			return errors.New("STATUS_FEED_ENABLED requires HUB_SOURCE=fixture")
		}
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required")
		}
		if c.KafkaStatusTopic == "" {
			return errors.New("KAFKA_STATUS_TOPIC is required")
		}
	}

	if c.MapboxEnabled && c.MapboxToken == "" {
		return errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	return nil
}

// loadEnvFile loads ENV_FILE, or ./.env when present.
func loadEnvFile() error {
	path := os.Getenv("ENV_FILE")
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load ENV_FILE %s: %w", path, err)
	}
	return nil
}

func parseDuration(key, def string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
