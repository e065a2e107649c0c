package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"stream-realm"`
	Version     string `env:"VERSION" envDefault:"dev"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	APIKey      string `env:"API_KEY"`
	LogDir      string `env:"LOG_DIR"`

	Storage           string        `env:"STORAGE" envDefault:"postgres"`
	DBUser            string        `env:"DB_USER" envDefault:"postgres"`
	DBPassword        string        `env:"DB_PASSWORD" envDefault:"postgres"`
	DBHost            string        `env:"DB_HOST" envDefault:"localhost"`
	DBPort            string        `env:"DB_PORT" envDefault:"5432"`
	DBName            string        `env:"DB_NAME" envDefault:"streamrealm"`
	DBMaxConns        int           `env:"DB_MAX_CONNS" envDefault:"20"`
	DBMaxConnIdle     time.Duration `env:"DB_MAX_CONN_IDLE" envDefault:"5m"`
	DBMaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"30m"`

	ItemsConfigPath string `env:"ITEMS_CONFIG_PATH" envDefault:"configs/items/items.json"`
	ItemsSchemaPath string `env:"ITEMS_SCHEMA_PATH" envDefault:"configs/schemas/items.schema.json"`

	SessionCacheSize int           `env:"SESSION_CACHE_SIZE" envDefault:"10000"`
	SessionTTL       time.Duration `env:"SESSION_TTL" envDefault:"12h"`

	TradeMaxAttempts int           `env:"TRADE_MAX_ATTEMPTS" envDefault:"8"`
	TradeRetryDelay  time.Duration `env:"TRADE_RETRY_DELAY" envDefault:"75ms"`

	EventMaxRetries       int           `env:"EVENT_MAX_RETRIES" envDefault:"5"`
	EventRetryDelay       time.Duration `env:"EVENT_RETRY_DELAY" envDefault:"2s"`
	EventDeadLetterPath   string        `env:"EVENT_DEAD_LETTER_PATH" envDefault:"logs/deadletter.jsonl"`
	EventLogRetentionDays int           `env:"EVENT_LOG_RETENTION_DAYS" envDefault:"30"`
	EventLogCleanupEvery  time.Duration `env:"EVENT_LOG_CLEANUP_INTERVAL" envDefault:"24h"`

	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

// Load reads .env when present, then the process environment, and validates the result
func Load() (*Config, error) {
	// a missing .env is fine, real env vars may be set
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf(ErrMsgParseEnv, err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.Storage = strings.ToLower(cfg.Storage)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error
	if c.APIKey == "" {
		errs = append(errs, errors.New(ErrMsgMissingAPIKey))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf(ErrMsgInvalidPort, c.Port))
	}
	if c.Storage != StoragePostgres && c.Storage != StorageMemory {
		errs = append(errs, fmt.Errorf(ErrMsgInvalidStorage, StoragePostgres, StorageMemory, c.Storage))
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf(ErrMsgInvalidFormat, c.LogFormat))
	}
	if c.TradeMaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf(ErrMsgInvalidRetries, c.TradeMaxAttempts))
	}
	return errors.Join(errs...)
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
