package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	_ "github.com/joho/godotenv/autoload"
)

// Config holds server configuration
type Config struct {
	Port        int
	Database    Database
	Auth        Auth
	CORSOrigins []string
	RateLimit   string
	RedisURL    string
	Telemetry   Telemetry
	Debug       bool
	LogFormat   string
}

// Database selects and locates the backing store.
type Database struct {
	Driver     string // "postgres" or "sqlite"
	URL        string // full DSN, takes precedence over the discrete fields
	Host       string
	Port       string
	Username   string
	Password   string
	Name       string
	Schema     string
	SQLitePath string
	LogQueries bool
}

// Auth configures session token verification.
type Auth struct {
	Secret string
	Issuer string
}

// Telemetry configures trace export over OTLP/HTTP.
type Telemetry struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	SampleRatio float64 // fraction of new traces sampled, 1 samples all
	Insecure    bool
}

// DSN returns the Postgres connection string.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		d.Host, d.Username, d.Password, d.Name, d.Port)
	if d.Schema != "" {
		dsn += " search_path=" + d.Schema
	}
	return dsn
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port: getEnvInt("PORT", 8080),
		Database: Database{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			URL:        getEnv("DATABASE_URL", ""),
			Host:       getEnv("BLUEPRINT_DB_HOST", "localhost"),
			Port:       getEnv("BLUEPRINT_DB_PORT", "5432"),
			Username:   getEnv("BLUEPRINT_DB_USERNAME", ""),
			Password:   getEnv("BLUEPRINT_DB_PASSWORD", ""),
			Name:       getEnv("BLUEPRINT_DB_DATABASE", ""),
			Schema:     getEnv("BLUEPRINT_DB_SCHEMA", ""),
			SQLitePath: getEnv("SQLITE_PATH", "lofi.db"),
			LogQueries: getEnvBool("DB_LOG_QUERIES", false),
		},
		Auth: Auth{
			Secret: getEnv("AUTH_SECRET", ""),
			Issuer: getEnv("AUTH_ISSUER", ""),
		},
		CORSOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"https://*", "http://*"}),
		RateLimit:   getEnv("RATE_LIMIT", "120-M"),
		RedisURL:    getEnv("REDIS_URL", ""),
		Telemetry: Telemetry{
			Enabled:     getEnvBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "lofi-api"),
			SampleRatio: getEnvFloat("OTEL_TRACES_SAMPLER_ARG", 1),
			Insecure:    getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		},
		Debug:     getEnvBool("DEBUG", false),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if cfg.Auth.Secret == "" {
		return nil, fmt.Errorf("AUTH_SECRET is required")
	}

	switch cfg.Database.Driver {
	case "postgres":
		if cfg.Database.URL == "" && cfg.Database.Name == "" {
			return nil, fmt.Errorf("DATABASE_URL or BLUEPRINT_DB_DATABASE is required for the postgres driver")
		}
	case "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite)", cfg.Database.Driver)
	}

	if r := cfg.Telemetry.SampleRatio; r < 0 || r > 1 {
		return nil, fmt.Errorf("OTEL_TRACES_SAMPLER_ARG must be between 0 and 1, got %v", r)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		fmt.Fprintf(os.Stderr, "Warning: invalid %s value %q, using default %d\n", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		fmt.Fprintf(os.Stderr, "Warning: invalid %s value %q, using default %v\n", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
