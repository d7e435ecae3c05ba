package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

type Config struct {
	Port            string
	AppEnv          string
	StorageDriver   string
	DatabaseURI     string
	CORSOrigins     []string
	KafkaBrokers    []string
	KafkaTopic      string
	KafkaTimeout    time.Duration
	AdminUsername   string
	AdminPassword   string
	Location        *time.Location
	ShutdownTimeout time.Duration
}

// Development reports whether CORS should accept any origin.
func (c Config) Development() bool {
	return c.AppEnv == "debug" || c.AppEnv == "development"
}

// Load reads .env when present and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded (%v). Using environment variables.", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, applying defaults for unset keys.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, defaultValue string) string {
		if value := strings.TrimSpace(getenv(key)); value != "" {
			return value
		}
		return defaultValue
	}

	cfg := Config{
		Port:          get("PORT", "8080"),
		AppEnv:        get("APP_ENV", "development"),
		StorageDriver: strings.ToLower(get("STORAGE_DRIVER", DriverMemory)),
		DatabaseURI:   get("DATABASE_URI", ""),
		CORSOrigins:   splitList(get("CORS_ORIGINS", "")),
		KafkaBrokers:  splitList(get("KAFKA_BROKERS", "")),
		KafkaTopic:    get("KAFKA_TOPIC_PREFIX", "resto"),
		AdminUsername: get("ADMIN_USERNAME", "admin"),
		AdminPassword: get("ADMIN_PASSWORD", "1234"),
	}

	switch cfg.StorageDriver {
	case DriverMemory, DriverSQLite:
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	location, err := time.LoadLocation(get("TIMEZONE", "UTC"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = location

	timeout, err := time.ParseDuration(get("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}
	cfg.ShutdownTimeout = timeout

	kafkaTimeout, err := time.ParseDuration(get("KAFKA_TIMEOUT", "2s"))
	if err != nil || kafkaTimeout <= 0 {
		return Config{}, fmt.Errorf("invalid KAFKA_TIMEOUT %q", get("KAFKA_TIMEOUT", "2s"))
	}
	cfg.KafkaTimeout = kafkaTimeout

	return cfg, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
