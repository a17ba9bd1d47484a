package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Storage drivers accepted in DB_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv    string
	Port      string
	LogLevel  string
	LogFormat string

	DBDriver    string
	DBPath      string
	DatabaseURL string
	RedisURL    string

	JWTSecret string
	JWTIssuer string
	JWTLeeway time.Duration
	DraftTTL  time.Duration

	OCRURL            string
	OCRAPIKey         string
	OCRTimeout        time.Duration
	OCRMaxConcurrency int
	OCRMaxImageBytes  int64
	ScanRateLimit     string

	ChromePath         string
	CORSAllowedOrigins []string
	StaticPath         string

	MetricsNamespace  string
	OTelEnabled       bool
	OTelEndpoint      string
	OTelSamplingRatio float64
}

// Load reads configuration from environment variables and an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:    valueOrDefault(k.String("APP_ENV"), "development"),
		Port:      valueOrDefault(k.String("PORT"), "8080"),
		LogLevel:  valueOrDefault(k.String("LOG_LEVEL"), "info"),
		LogFormat: valueOrDefault(k.String("LOG_FORMAT"), "text"),

		DBDriver:    strings.ToLower(valueOrDefault(k.String("DB_DRIVER"), DriverSQLite)),
		DBPath:      valueOrDefault(k.String("DB_PATH"), "./data/bills.db"),
		DatabaseURL: k.String("DATABASE_URL"),
		RedisURL:    valueOrDefault(k.String("REDIS_URL"), "redis://localhost:6379/0"),

		JWTSecret: k.String("JWT_SECRET"),
		JWTIssuer: k.String("JWT_ISSUER"),
		JWTLeeway: parseDuration(k.String("JWT_LEEWAY"), "30s"),
		DraftTTL:  parseDuration(k.String("DRAFT_TTL"), "24h"),

		OCRURL:            k.String("OCR_URL"),
		OCRAPIKey:         k.String("OCR_API_KEY"),
		OCRTimeout:        parseDuration(k.String("OCR_TIMEOUT"), "30s"),
		OCRMaxConcurrency: parseInt(k.String("OCR_MAX_CONCURRENCY"), 3),
		OCRMaxImageBytes:  int64(parseInt(k.String("OCR_MAX_IMAGE_BYTES"), 10<<20)),
		ScanRateLimit:     valueOrDefault(k.String("SCAN_RATE_LIMIT"), "10-M"),

		ChromePath:         k.String("CHROME_PATH"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		StaticPath:         k.String("STATIC_PATH"),

		MetricsNamespace:  valueOrDefault(k.String("METRICS_NAMESPACE"), "taghiane"),
		OTelEnabled:       parseBool(k.String("OTEL_ENABLED")),
		OTelEndpoint:      k.String("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTelSamplingRatio: parseFloat(k.String("OTEL_SAMPLING_RATIO"), 1),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	switch cfg.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseFloat(value string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || f < 0 {
		return fallback
	}
	return f
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
