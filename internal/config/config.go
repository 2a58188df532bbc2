package config

import (
	"errors"
	"fmt"
	"os"
)

// app config: AI provider, stores, and server settings
type Config struct {
	Provider      string
	Port          string
	JWTSecret     string
	UploadDir     string
	RedisAddr     string
	RedisPassword string
	// SQLitePath switches the record store to a local SQLite file; empty
	// means PostgreSQL.
	SQLitePath string

	PostgresHost     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresPort     string
	PostgresSSLMode  string
}

// loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		Provider:      getEnvOrDefault("AI_PROVIDER", "gemini"),
		Port:          getEnvOrDefault("PORT", "8080"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		UploadDir:     getEnvOrDefault("UPLOAD_DIR", "./uploads"),
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		SQLitePath:    os.Getenv("SQLITE_PATH"),

		PostgresHost:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresUser:     getEnvOrDefault("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getEnvOrDefault("POSTGRES_DB", "postgres"),
		PostgresPort:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	// "none" runs the evaluator gateway in fallback-only mode.
	if config.Provider != "gemini" && config.Provider != "none" {
		return errors.New("unsupported AI provider: " + config.Provider + ". Currently supported: gemini, none")
	}
	if config.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	// Gemini validation is handled by gemini.NewConfig()
	return nil
}

// PostgresDSN assembles the record store connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresPort, c.PostgresSSLMode)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
