package config

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

const (
	defaultPort              = "8080"
	defaultLogLevel          = "info"
	defaultSQLitePath        = "splitsettle.db"
	defaultRateLimit         = "100-M"
	defaultAMQPExchange      = "splitsettle.ledger"
	defaultAMQPQueue         = "splitsettle.invalidations"
	defaultCacheSize         = 512
	defaultCacheTTL          = 5 * time.Minute
	defaultRecordConcurrency = 4
)

// Config holds application configuration.
type Config struct {
	Port          string
	IsProduction  bool
	LogLevel      string
	EnableDBCheck bool

	StorageBackend string
	DatabaseURL    string
	SQLitePath     string

	JWTSecret string
	RateLimit string

	// Empty allows every origin.
	CORSAllowedOrigins []string

	// Empty AMQPURL disables ledger events.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	BalanceCacheSize int
	BalanceCacheTTL  time.Duration

	StrictMembership  bool
	RecordConcurrency int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", defaultPort)
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("LOG_LEVEL", defaultLogLevel)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("STORAGE_BACKEND", BackendPostgres)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("SQLITE_PATH", defaultSQLitePath)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("RATE_LIMIT", defaultRateLimit)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("AMQP_URL", "")
	v.SetDefault("AMQP_EXCHANGE", defaultAMQPExchange)
	v.SetDefault("AMQP_QUEUE", defaultAMQPQueue)
	v.SetDefault("BALANCE_CACHE_SIZE", defaultCacheSize)
	v.SetDefault("BALANCE_CACHE_TTL", defaultCacheTTL.String())
	v.SetDefault("STRICT_MEMBERSHIP", false)
	v.SetDefault("RECORD_CONCURRENCY", defaultRecordConcurrency)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:              v.GetString("PORT"),
		IsProduction:      v.GetBool("IS_PRODUCTION"),
		LogLevel:          strings.ToLower(v.GetString("LOG_LEVEL")),
		EnableDBCheck:     v.GetBool("ENABLE_DB_CHECK"),
		StorageBackend:    strings.ToLower(v.GetString("STORAGE_BACKEND")),
		DatabaseURL:       v.GetString("PGSQL_URL"),
		SQLitePath:        v.GetString("SQLITE_PATH"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		RateLimit:         v.GetString("RATE_LIMIT"),
		AMQPURL:           v.GetString("AMQP_URL"),
		AMQPExchange:      v.GetString("AMQP_EXCHANGE"),
		AMQPQueue:         v.GetString("AMQP_QUEUE"),
		BalanceCacheSize:  v.GetInt("BALANCE_CACHE_SIZE"),
		StrictMembership:  v.GetBool("STRICT_MEMBERSHIP"),
		RecordConcurrency: v.GetInt("RECORD_CONCURRENCY"),
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if cfg.Port == "" {
		cfg.Port = defaultPort
		slog.Warn("PORT not set, using default", slog.String("port", cfg.Port))
	}

	ttlStr := v.GetString("BALANCE_CACHE_TTL")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil || ttl <= 0 {
		ttl = defaultCacheTTL
		slog.Warn("Invalid BALANCE_CACHE_TTL, using default", slog.String("value", ttlStr), slog.Duration("default", ttl))
	}
	cfg.BalanceCacheTTL = ttl

	if cfg.BalanceCacheSize < 0 {
		slog.Warn("Invalid BALANCE_CACHE_SIZE, using default", slog.Int("value", cfg.BalanceCacheSize))
		cfg.BalanceCacheSize = defaultCacheSize
	}
	if cfg.RecordConcurrency <= 0 {
		slog.Warn("Invalid RECORD_CONCURRENCY, using default", slog.Int("value", cfg.RecordConcurrency))
		cfg.RecordConcurrency = defaultRecordConcurrency
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}

	switch cfg.StorageBackend {
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("PGSQL_URL must be set when STORAGE_BACKEND is postgres")
		}
	case BackendSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLITE_PATH must be set when STORAGE_BACKEND is sqlite")
		}
	default:
		return nil, errors.New("STORAGE_BACKEND must be one of postgres, sqlite")
	}

	return cfg, nil
}

// EventsEnabled reports whether a broker is configured.
func (c *Config) EventsEnabled() bool {
	return c.AMQPURL != ""
}
