package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Kafka     KafkaConfig
	Redis     RedisConfig
	Rates     RatesConfig
	Stream    StreamConfig
	Schedule  ScheduleConfig
	Log       LogConfig
	Portfolio PortfolioConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	Host            string
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration. An empty Host disables the
// database loader.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// KafkaConfig holds Kafka configuration. No brokers disables Kafka.
type KafkaConfig struct {
	Brokers        []string
	PositionsTopic string
	QuotesTopic    string
	EventsTopic    string
	GroupID        string
}

// RedisConfig holds the exchange-rate cache configuration. An empty Addr
// disables the shared cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// RatesConfig holds exchange-rate provider configuration
type RatesConfig struct {
	URL      string
	TTL      time.Duration
	Fallback float64
}

// StreamConfig holds the live quote stream configuration. An empty URL
// disables the stream.
type StreamConfig struct {
	URL      string
	TokenURL string
	Symbols  []string
}

// ScheduleConfig holds cron schedules. An empty schedule disables the job.
type ScheduleConfig struct {
	ReloadPositions string
	RefreshRate     string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Pretty bool
}

// PortfolioConfig holds portfolio presentation options
type PortfolioConfig struct {
	ConsolidateAccounts bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "portfolio"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Brokers:        getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			PositionsTopic: getEnv("KAFKA_POSITIONS_TOPIC", "portfolio-positions"),
			QuotesTopic:    getEnv("KAFKA_QUOTES_TOPIC", "stock-quotes"),
			EventsTopic:    getEnv("KAFKA_EVENTS_TOPIC", "portfolio-events"),
			GroupID:        getEnv("KAFKA_GROUP_ID", "dividend-dashboard"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Key:      getEnv("REDIS_RATE_KEY", "fx:USDCAD"),
		},
		Rates: RatesConfig{
			URL:      getEnv("RATES_URL", "https://query1.finance.yahoo.com/v8/finance/chart"),
			TTL:      getEnvDuration("RATES_TTL", time.Hour),
			Fallback: getEnvFloat("RATES_FALLBACK", 1.35),
		},
		Stream: StreamConfig{
			URL:      getEnv("STREAM_URL", ""),
			TokenURL: getEnv("STREAM_TOKEN_URL", ""),
			Symbols:  getEnvList("STREAM_SYMBOLS", nil),
		},
		Schedule: ScheduleConfig{
			ReloadPositions: getEnv("SCHEDULE_RELOAD_POSITIONS", "@every 5m"),
			RefreshRate:     getEnv("SCHEDULE_REFRESH_RATE", "@every 1h"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvBool("LOG_PRETTY", false),
		},
		Portfolio: PortfolioConfig{
			ConsolidateAccounts: getEnvBool("PORTFOLIO_CONSOLIDATE_ACCOUNTS", true),
		},
	}
}

// Address returns the host:port the HTTP server listens on
func (s *ServerConfig) Address() string {
	return s.Host + ":" + s.Port
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

// Enabled reports whether any broker is configured
func (k *KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated value, dropping empty items. "none"
// yields an empty list.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if strings.EqualFold(value, "none") {
		return nil
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
