// Package config loads process settings from the environment.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/simaogato/wealthtrack-backend/internal/log"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// DefaultTrustedNetworks are the local ranges whose callers act as the bootstrap user
var DefaultTrustedNetworks = []string{"127.0.0.0/8", "::1/128", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}

type Config struct {
	// gRPC server
	GRPCAddr string

	// Storage
	DataBackend string
	DBConnStr   string

	// Auth
	APIToken          string
	JWTSecret         string
	JWTTTL            time.Duration
	TrustedNetworks   []string
	BootstrapUsername string
	BootstrapPassword string

	// Market data
	PolygonAPIKey      string
	PolygonBaseURL     string
	ExchangeRateAPIURL string
	LocalCurrency      string
	MarketDataTimeout  time.Duration
	RefreshConcurrency int

	// Scheduler
	SchedulerEnabled        bool
	SchedulerLockFile       string
	DailyRefreshSchedule    string
	MonthlySnapshotSchedule string

	// AMQP ledger feed, disabled when AMQPURL is empty
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	LogLevel string
}

// Load reads a local .env file if present, then the environment
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		GRPCAddr: getEnv("GRPC_ADDR", ":8080"),

		DataBackend: getEnv("DATA_BACKEND", BackendPostgres),
		DBConnStr:   dbConnStr(),

		APIToken:          getEnv("API_TOKEN", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWTTTL:            getEnvDuration("JWT_TTL", 24*time.Hour),
		TrustedNetworks:   getEnvList("TRUSTED_NETWORKS", DefaultTrustedNetworks),
		BootstrapUsername: getEnv("BOOTSTRAP_USERNAME", "admin"),
		BootstrapPassword: getEnv("BOOTSTRAP_PASSWORD", ""),

		PolygonAPIKey:      getEnv("POLYGON_API_KEY", ""),
		PolygonBaseURL:     getEnv("POLYGON_BASE_URL", "https://api.polygon.io"),
		ExchangeRateAPIURL: getEnv("EXCHANGE_RATE_API_URL", "https://api.exchangerate-api.com/v4/latest/USD"),
		LocalCurrency:      strings.ToUpper(getEnv("LOCAL_CURRENCY", "CNY")),
		MarketDataTimeout:  getEnvDuration("MARKET_DATA_TIMEOUT", 10*time.Second),
		RefreshConcurrency: getEnvInt("REFRESH_CONCURRENCY", 4),

		SchedulerEnabled:        getEnvBool("SCHEDULER_ENABLED", true),
		SchedulerLockFile:       getEnv("SCHEDULER_LOCK_FILE", os.TempDir()+"/wealthtrack-scheduler.lock"),
		DailyRefreshSchedule:    getEnv("DAILY_REFRESH_SCHEDULE", "0 0 * * *"),
		MonthlySnapshotSchedule: getEnv("MONTHLY_SNAPSHOT_SCHEDULE", "0 0 1 * *"),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "wealthtrack"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "ledger.entry"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// dbConnStr prefers DB_CONN_STR and otherwise builds a DSN from the DB_* parts
func dbConnStr() string {
	if conn := os.Getenv("DB_CONN_STR"); conn != "" {
		return conn
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "wealthtrack"))
}

// Validate validates the configuration and returns every problem at once
func (c *Config) Validate() error {
	var errors []string

	if _, _, err := net.SplitHostPort(c.GRPCAddr); err != nil {
		errors = append(errors, fmt.Sprintf("invalid gRPC address '%s': %v", c.GRPCAddr, err))
	}

	switch c.DataBackend {
	case BackendPostgres:
		if c.DBConnStr == "" {
			errors = append(errors, "database connection string cannot be empty when using postgres backend")
		}
	case BackendMemory:
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [%s %s]", c.DataBackend, BackendPostgres, BackendMemory))
	}

	if len(c.JWTSecret) < 16 {
		errors = append(errors, "JWT_SECRET must be at least 16 characters")
	}
	if c.JWTTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid JWT TTL %v: must be at least 1 minute", c.JWTTTL))
	}
	for _, cidr := range c.TrustedNetworks {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			errors = append(errors, fmt.Sprintf("invalid trusted network '%s': %v", cidr, err))
		}
	}

	for name, raw := range map[string]string{"POLYGON_BASE_URL": c.PolygonBaseURL, "EXCHANGE_RATE_API_URL": c.ExchangeRateAPIURL} {
		if u, err := url.Parse(raw); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errors = append(errors, fmt.Sprintf("invalid %s '%s': must be an http(s) URL", name, raw))
		}
	}
	if len(c.LocalCurrency) != 3 {
		errors = append(errors, fmt.Sprintf("invalid local currency '%s': must be a 3-letter code", c.LocalCurrency))
	}
	if c.MarketDataTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid market data timeout %v: must be at least 1 second", c.MarketDataTimeout))
	}
	if c.RefreshConcurrency < 1 || c.RefreshConcurrency > 64 {
		errors = append(errors, fmt.Sprintf("invalid refresh concurrency %d: must be between 1 and 64", c.RefreshConcurrency))
	}

	if c.SchedulerEnabled {
		if c.SchedulerLockFile == "" {
			errors = append(errors, "scheduler lock file cannot be empty when the scheduler is enabled")
		}
		for name, spec := range map[string]string{"DAILY_REFRESH_SCHEDULE": c.DailyRefreshSchedule, "MONTHLY_SNAPSHOT_SCHEDULE": c.MonthlySnapshotSchedule} {
			if _, err := cron.ParseStandard(spec); err != nil {
				errors = append(errors, fmt.Sprintf("invalid %s '%s': %v", name, spec, err))
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
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

// getEnvList splits a comma separated value; an empty entry list means none
func getEnvList(key string, defaultValue []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	out := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
