package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded from the environment.
type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	// Postgres
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Optional caching layer
	RedisURL string

	// Optional event brokers; empty disables publishing
	KafkaBrokers []string

	// All timestamp comparisons (due dates, analytics windows) happen in this zone.
	Timezone string

	// Default assessment lifetime when no due date is supplied.
	DueInHours int
}

func LoadConfig() (*Config, error) {
	// Best effort: a missing .env is fine in containerized deployments
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DBName:      getEnv("DB_NAME", "assessments"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),
		RedisURL:    getEnv("REDIS_URL", ""),
		Timezone:    getEnv("TIMEZONE", "Asia/Kolkata"),
	}

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	dueInHours, err := strconv.Atoi(getEnv("ASSESSMENT_DUE_HOURS", "72"))
	if err != nil || dueInHours <= 0 {
		return nil, fmt.Errorf("invalid ASSESSMENT_DUE_HOURS: %s", getEnv("ASSESSMENT_DUE_HOURS", "72"))
	}
	cfg.DueInHours = dueInHours

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}

	return cfg, nil
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// Location resolves the configured time zone. LoadConfig already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) DueIn() time.Duration {
	return time.Duration(c.DueInHours) * time.Hour
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
