package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	Port              string
	DBURL             string
	ReadTimeoutSecs   int
	WriteTimeoutSecs  int
	IdleTimeoutSecs   int
	DBMaxConns        int
	DBMinConns        int
	DBMaxIdleSecs     int
	DBMaxLifeSecs     int
	DBConnTimeoutSecs int
	DBStatementCache  int
	DBAutoMigrate     bool

	RedisAddr               string
	RedisPassword           string
	RedisDB                 int
	RateLimitCapacity       int
	RateLimitRefillInterval int // milliseconds
	RateLimitPrefix         string

	AMQPURL         string
	AMQPQueue       string
	AMQPTimeoutSecs int
}

// RateLimitEnabled reports whether a Redis endpoint was configured.
func (c Config) RateLimitEnabled() bool {
	return c.RedisAddr != ""
}

// EventsEnabled reports whether a broker endpoint was configured.
func (c Config) EventsEnabled() bool {
	return c.AMQPURL != ""
}

// Load reads configuration from environment variables, applying defaults and validation.
// Values from the dotenv file named by ENV_FILE (default ".env") fill in variables that
// are not already set.
func Load() (Config, error) {
	if err := loadDotEnv(getEnv("ENV_FILE", ".env")); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		DBURL:             os.Getenv("DB_URL"),
		ReadTimeoutSecs:   getEnvInt("SERVER_READ_TIMEOUT", 15),
		WriteTimeoutSecs:  getEnvInt("SERVER_WRITE_TIMEOUT", 15),
		IdleTimeoutSecs:   getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		DBMaxConns:        getEnvInt("DB_MAX_CONNS", 20),
		DBMinConns:        getEnvInt("DB_MIN_CONNS", 2),
		DBMaxIdleSecs:     getEnvInt("DB_MAX_CONN_IDLE_SECS", 300),
		DBMaxLifeSecs:     getEnvInt("DB_MAX_CONN_LIFETIME_SECS", 3600),
		DBConnTimeoutSecs: getEnvInt("DB_CONN_TIMEOUT_SECS", 10),
		DBStatementCache:  getEnvInt("DB_STATEMENT_CACHE_CAPACITY", 256),
		DBAutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", false),

		RedisAddr:               os.Getenv("REDIS_ADDR"),
		RedisPassword:           os.Getenv("REDIS_PASSWORD"),
		RedisDB:                 getEnvInt("REDIS_DB", 0),
		RateLimitCapacity:       getEnvInt("RATE_LIMIT_CAPACITY", 60),
		RateLimitRefillInterval: getEnvInt("RATE_LIMIT_REFILL_INTERVAL_MS", 1000),
		RateLimitPrefix:         getEnv("RATE_LIMIT_PREFIX", "rl"),

		AMQPURL:         os.Getenv("AMQP_URL"),
		AMQPQueue:       getEnv("AMQP_QUEUE", "cinema.events"),
		AMQPTimeoutSecs: getEnvInt("AMQP_TIMEOUT_SECS", 5),
	}

	if cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}
	if cfg.DBMaxConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return Config{}, fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMaxConns > 0 && cfg.DBMinConns > cfg.DBMaxConns {
		return Config{}, fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.DBStatementCache < 0 {
		return Config{}, fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}
	if cfg.RedisDB < 0 {
		return Config{}, fmt.Errorf("REDIS_DB must be non-negative")
	}
	if cfg.RateLimitEnabled() {
		if cfg.RateLimitCapacity <= 0 {
			return Config{}, fmt.Errorf("RATE_LIMIT_CAPACITY must be positive")
		}
		if cfg.RateLimitRefillInterval <= 0 {
			return Config{}, fmt.Errorf("RATE_LIMIT_REFILL_INTERVAL_MS must be positive")
		}
	}
	if cfg.EventsEnabled() && cfg.AMQPTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("AMQP_TIMEOUT_SECS must be positive")
	}

	return cfg, nil
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
