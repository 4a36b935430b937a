package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	defaultEnv              = "development"
	defaultHTTPHost         = "0.0.0.0"
	defaultHTTPPort         = 8080
	defaultRedisDB          = 0
	defaultCacheTTLSeconds  = 30
	defaultBaseCurrency     = "rub"
	defaultMaxLookaheadDays = 10
	defaultHistoryWorkers   = 4
	defaultInvestRateLimit  = 10

	defaultInstrumentsEvery = 24 * time.Hour
	defaultLastPricesEvery  = 5 * time.Minute
	defaultCurrencyEvery    = 24 * time.Hour
)

// Config keeps the runtime configuration for the service.
type Config struct {
	Env      string
	HTTP     HTTPConfig
	Invest   InvestConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Cache    CacheConfig
	History  HistoryConfig
}

// HTTPConfig holds HTTP server related settings.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr renders the listen address in host:port form.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// InvestConfig holds market data API credentials.
type InvestConfig struct {
	Token              string
	Endpoint           string
	AppName            string
	InsecureSkipVerify bool
	// RateLimit is the request budget per second against the API.
	RateLimit int
}

// PostgresConfig stores database connection parameters. An empty DSN disables
// the historic quote store.
type PostgresConfig struct {
	DSN string
}

// RedisConfig stores Redis connection parameters. An empty Addr disables the
// HTTP response cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CacheConfig stores cache behavior.
type CacheConfig struct {
	TTLSeconds       int
	InstrumentsEvery time.Duration
	LastPricesEvery  time.Duration
	CurrencyEvery    time.Duration
}

// HistoryConfig tunes the profitability engine.
type HistoryConfig struct {
	BaseCurrency     string
	MaxLookaheadDays int
	Workers          int
}

// Load builds Config from environment variables.
func Load() (*Config, error) {
	host := getString("HTTP_HOST", defaultHTTPHost)
	port, err := getInt("HTTP_PORT", defaultHTTPPort)
	if err != nil {
		return nil, fmt.Errorf("parse HTTP_PORT: %w", err)
	}

	token := os.Getenv("INVEST_TOKEN")
	if token == "" {
		return nil, errors.New("INVEST_TOKEN is required")
	}
	skipVerify, err := getBool("INVEST_INSECURE_SKIP_VERIFY", false)
	if err != nil {
		return nil, fmt.Errorf("parse INVEST_INSECURE_SKIP_VERIFY: %w", err)
	}

	rateLimit, err := getInt("INVEST_RATE_LIMIT", defaultInvestRateLimit)
	if err != nil {
		return nil, fmt.Errorf("parse INVEST_RATE_LIMIT: %w", err)
	}
	if rateLimit <= 0 {
		return nil, fmt.Errorf("INVEST_RATE_LIMIT must be positive, got %d", rateLimit)
	}

	redisDB, err := getInt("REDIS_DB", defaultRedisDB)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_DB: %w", err)
	}

	cacheTTL, err := getInt("CACHE_TTL_SECONDS", defaultCacheTTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("parse CACHE_TTL_SECONDS: %w", err)
	}
	instrumentsEvery, err := getDuration("CACHE_INSTRUMENTS_EVERY", defaultInstrumentsEvery)
	if err != nil {
		return nil, fmt.Errorf("parse CACHE_INSTRUMENTS_EVERY: %w", err)
	}
	lastPricesEvery, err := getDuration("CACHE_LAST_PRICES_EVERY", defaultLastPricesEvery)
	if err != nil {
		return nil, fmt.Errorf("parse CACHE_LAST_PRICES_EVERY: %w", err)
	}
	currencyEvery, err := getDuration("CACHE_CURRENCY_EVERY", defaultCurrencyEvery)
	if err != nil {
		return nil, fmt.Errorf("parse CACHE_CURRENCY_EVERY: %w", err)
	}

	lookahead, err := getInt("HISTORY_MAX_LOOKAHEAD_DAYS", defaultMaxLookaheadDays)
	if err != nil {
		return nil, fmt.Errorf("parse HISTORY_MAX_LOOKAHEAD_DAYS: %w", err)
	}
	if lookahead <= 0 {
		return nil, fmt.Errorf("HISTORY_MAX_LOOKAHEAD_DAYS must be positive, got %d", lookahead)
	}
	workers, err := getInt("HISTORY_WORKERS", defaultHistoryWorkers)
	if err != nil {
		return nil, fmt.Errorf("parse HISTORY_WORKERS: %w", err)
	}
	if workers <= 0 {
		return nil, fmt.Errorf("HISTORY_WORKERS must be positive, got %d", workers)
	}

	return &Config{
		Env:  getString("APP_ENV", defaultEnv),
		HTTP: HTTPConfig{Host: host, Port: port},
		Invest: InvestConfig{
			Token:              token,
			Endpoint:           os.Getenv("INVEST_ENDPOINT"),
			AppName:            os.Getenv("INVEST_APP_NAME"),
			InsecureSkipVerify: skipVerify,
			RateLimit:          rateLimit,
		},
		Postgres: PostgresConfig{
			DSN: os.Getenv("DATABASE_DSN"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Cache: CacheConfig{
			TTLSeconds:       cacheTTL,
			InstrumentsEvery: instrumentsEvery,
			LastPricesEvery:  lastPricesEvery,
			CurrencyEvery:    currencyEvery,
		},
		History: HistoryConfig{
			BaseCurrency:     getString("BASE_CURRENCY", defaultBaseCurrency),
			MaxLookaheadDays: lookahead,
			Workers:          workers,
		},
	}, nil
}

func getString(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func getInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to int: %w", key, value, err)
	}
	return parsed, nil
}

func getBool(key string, fallback bool) (bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("convert %s value %q to bool: %w", key, value, err)
	}
	return parsed, nil
}

// getDuration accepts Go duration syntax ("5m", "24h").
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to duration: %w", key, value, err)
	}
	return parsed, nil
}
