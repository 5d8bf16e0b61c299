package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Host string
	Port string

	// Database settings
	DSN         string
	AutoMigrate bool

	// Auth settings
	JWTSecret string

	// Upload settings
	UploadBase string

	// Logging settings
	LogLevel  string
	LogFormat string

	// Cache settings
	StatusCacheTTL time.Duration
}

// loadConfig reads configuration from the environment, loading a local .env
// file first if one exists.
func loadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &Config{
		Host:       getEnv("HOST", "0.0.0.0"),
		Port:       getEnv("PORT", "8081"),
		DSN:        os.Getenv("DB_DSN"),
		JWTSecret:  getEnv("JWT_SECRET", "dev-insecure-secret-change"),
		UploadBase: getEnv("UPLOAD_BASE", "uploads"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "json"),
	}

	cfg.AutoMigrate = true
	switch getEnv("DB_AUTO_MIGRATE", "true") {
	case "false", "0", "no":
		cfg.AutoMigrate = false
	}

	ttl, err := strconv.Atoi(getEnv("STATUS_CACHE_TTL", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid STATUS_CACHE_TTL: %w", err)
	}
	cfg.StatusCacheTTL = time.Duration(ttl) * time.Second

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
