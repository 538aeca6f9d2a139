// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Server, Postgres, Kafka, Redis, Indexer, Search, etc.).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/internal/indexer/skiplist"
	apperrors "github.com/Adithya-Monish-Kumar-K/Inverted-Index-Retrieval-Engine/pkg/errors"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Postgres PostgresConfig `yaml:"postgres"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	Indexer  IndexerConfig  `yaml:"indexer"`
	Search   SearchConfig   `yaml:"search"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// PostgresConfig holds PostgreSQL connection parameters for the run-report
// store. An empty Host disables the store.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings for the token stream.
type KafkaConfig struct {
	Brokers       []string      `yaml:"brokers"`
	ConsumerGroup string        `yaml:"consumerGroup"`
	Topics        KafkaTopics   `yaml:"topics"`
	IdleTimeout   time.Duration `yaml:"idleTimeout"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	TokenStream string `yaml:"tokenStream"`
}

// RedisConfig holds Redis connection and ranked-result caching parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// IndexerConfig controls where the token stream comes from and how the index
// artifacts are built.
type IndexerConfig struct {
	DataDir      string `yaml:"dataDir"`
	Source       string `yaml:"source"`
	TokenStream  string `yaml:"tokenStream"`
	SkipStrategy string `yaml:"skipStrategy"`
	BlockSize    int    `yaml:"blockSize"`
	SQLiteExport bool   `yaml:"sqliteExport"`
	Stemming     bool   `yaml:"stemming"`
}

// SearchConfig controls query evaluation and result limits.
type SearchConfig struct {
	DictMode       string `yaml:"dictMode"`
	UseSkips       bool   `yaml:"useSkips"`
	DefaultLimit   int    `yaml:"defaultLimit"`
	MaxResults     int    `yaml:"maxResults"`
	Workers        int    `yaml:"workers"`
	BooleanQueries string `yaml:"booleanQueries"`
	RankedQueries  string `yaml:"rankedQueries"`
	ResultsDir     string `yaml:"resultsDir"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided), applies environment-variable
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration without reading any file.
func Default() *Config {
	return defaultConfig()
}

// Validate checks values that would otherwise fail deep inside the build or
// query phase.
func (c *Config) Validate() error {
	if _, err := skiplist.Parse(c.Indexer.SkipStrategy); err != nil {
		return fmt.Errorf("indexer.skipStrategy: %w", err)
	}
	if c.Indexer.BlockSize < 1 {
		return apperrors.Newf(apperrors.ErrInvalidInput, 0, "indexer.blockSize must be >= 1, got %d", c.Indexer.BlockSize)
	}
	switch c.Indexer.Source {
	case "file", "kafka":
	default:
		return apperrors.Newf(apperrors.ErrInvalidInput, 0, "indexer.source must be file or kafka, got %q", c.Indexer.Source)
	}
	switch c.Search.DictMode {
	case "raw", "block", "front":
	default:
		return apperrors.Newf(apperrors.ErrInvalidInput, 0, "search.dictMode must be raw, block or front, got %q", c.Search.DictMode)
	}
	if c.Search.DefaultLimit < 1 || c.Search.MaxResults < 1 {
		return apperrors.New(apperrors.ErrInvalidInput, 0, "search limits must be >= 1")
	}
	if c.Search.Workers < 1 {
		return apperrors.Newf(apperrors.ErrInvalidInput, 0, "search.workers must be >= 1, got %d", c.Search.Workers)
	}
	return nil
}

// defaultConfig returns a Config with defaults for local development.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Postgres: PostgresConfig{
			Port:            5432,
			Database:        "retrieval",
			User:            "retrieval",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "retrieval-indexer",
			Topics: KafkaTopics{
				TokenStream: "token-stream",
			},
			IdleTimeout: 10 * time.Second,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Indexer: IndexerConfig{
			DataDir:      "index_json",
			Source:       "file",
			TokenStream:  "data_stage/events.tokens.jsonl",
			SkipStrategy: "sqrt",
			BlockSize:    8,
		},
		Search: SearchConfig{
			DictMode:       "raw",
			UseSkips:       true,
			DefaultLimit:   10,
			MaxResults:     100,
			Workers:        4,
			BooleanQueries: "queries/boolean.json",
			RankedQueries:  "queries/vsm.json",
			ResultsDir:     "results",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads SP_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SP_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SP_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("SP_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("SP_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("SP_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("SP_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("SP_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("SP_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("SP_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("SP_INDEXER_DATA_DIR"); v != "" {
		cfg.Indexer.DataDir = v
	}
	if v := os.Getenv("SP_INDEXER_SOURCE"); v != "" {
		cfg.Indexer.Source = v
	}
	if v := os.Getenv("SP_INDEXER_TOKEN_STREAM"); v != "" {
		cfg.Indexer.TokenStream = v
	}
	if v := os.Getenv("SP_INDEXER_SKIP_STRATEGY"); v != "" {
		cfg.Indexer.SkipStrategy = v
	}
	if v := os.Getenv("SP_INDEXER_BLOCK_SIZE"); v != "" {
		if k, err := strconv.Atoi(v); err == nil {
			cfg.Indexer.BlockSize = k
		}
	}
	if v := os.Getenv("SP_SEARCH_DICT_MODE"); v != "" {
		cfg.Search.DictMode = v
	}
	if v := os.Getenv("SP_SEARCH_USE_SKIPS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Search.UseSkips = b
		}
	}
	if v := os.Getenv("SP_SEARCH_RESULTS_DIR"); v != "" {
		cfg.Search.ResultsDir = v
	}
	if v := os.Getenv("SP_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SP_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
