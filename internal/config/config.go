// Package config loads application configuration from environment
// variables. A .env file in the working directory is read first when
// present; real environment variables win over it.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

// Config holds all runtime configuration values.
type Config struct {
	Env      string // application environment (dev, test, prod)
	Port     string // HTTP port to listen on
	LogLevel string // zap level name

	StoreDriver string // mysql or memory
	SeedFile    string // catalog seed for the memory store (optional)

	DBUser string
	DBPass string // may be empty
	DBHost string
	DBPort string
	DBName string

	JWTSecret string // HS256 secret of the identity provider

	AMQPURL       string // empty disables event publishing
	EventsQueue   string
	AuditConsumer bool   // run the audit log consumer in-process
	AuditLogPath  string // file the consumer appends to

	ShutdownTimeout time.Duration

	Booking   BookingConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Telemetry TelemetryConfig
}

// BookingConfig is the booking policy.
type BookingConfig struct {
	RestaurantSlotCapacity int
	MaxPartySize           int
	MaxSpecialRequestLen   int
	CancelWindow           time.Duration
	DefaultPageSize        int
	MaxPageSize            int
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled       bool
	ServiceName   string
	Version       string
	CollectorAddr string
}

// Load reads the configuration. Required variables are enforced by must()
// and missing values stop the program.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}

	c := Config{
		Env:             must("APP_ENV"),
		Port:            envStr("APP_PORT", "8080"),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		StoreDriver:     strings.ToLower(envStr("STORE_DRIVER", StoreMySQL)),
		SeedFile:        os.Getenv("STORE_SEED_FILE"),
		JWTSecret:       must("JWT_SECRET"),
		AMQPURL:         firstEnv("RABBITMQ_URL", "AMQP_URL"),
		EventsQueue:     envStr("BOOKING_EVENTS_QUEUE", "booking.events"),
		AuditConsumer:   envBool("AUDIT_CONSUMER_ENABLED", false),
		AuditLogPath:    envStr("AUDIT_LOG_PATH", "logs/booking.log"),
		ShutdownTimeout: envDur("SHUTDOWN_TIMEOUT", 10*time.Second),
		Booking:         LoadBookingConfig(),
		RateLimit:       LoadRateLimitConfig(),
		Redis:           LoadRedisConfig(),
		Telemetry:       LoadTelemetryConfig(),
	}

	switch c.StoreDriver {
	case StoreMySQL:
		c.DBUser = must("DB_USER")
		c.DBPass = os.Getenv("DB_PASS")
		c.DBHost = must("DB_HOST")
		c.DBPort = envStr("DB_PORT", "3306")
		c.DBName = must("DB_NAME")
	case StoreMemory:
	default:
		log.Fatalf("invalid STORE_DRIVER: %q", c.StoreDriver)
	}
	return c
}

// LoadBookingConfig reads the booking policy with defaults.
func LoadBookingConfig() BookingConfig {
	return BookingConfig{
		RestaurantSlotCapacity: envInt("RESTAURANT_SLOT_CAPACITY", 10),
		MaxPartySize:           envInt("MAX_PARTY_SIZE", 20),
		MaxSpecialRequestLen:   envInt("MAX_SPECIAL_REQUEST_LEN", 1000),
		CancelWindow:           envDur("CANCEL_WINDOW", 24*time.Hour),
		DefaultPageSize:        envInt("PAGE_SIZE_DEFAULT", 10),
		MaxPageSize:            envInt("PAGE_SIZE_MAX", 50),
	}
}

func LoadTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:       envBool("OTEL_ENABLED", false),
		ServiceName:   envStr("OTEL_SERVICE_NAME", "booking-hub"),
		Version:       envStr("APP_VERSION", "dev"),
		CollectorAddr: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch strings.ToLower(os.Getenv(k)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	if dur, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return dur
	}
	return d
}
