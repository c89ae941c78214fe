package config

import (
	"fmt"
	"os"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion     string
	DynamoDBTable string
	IndexName     string // GSI1 - owner-scoped note queries

	// Authentication
	JWTSecret    string
	JWTIssuer    string
	CookieSecret string

	// CORS
	CORSOrigin string

	// Logging
	LogLevel string
}

// LoadConfig loads configuration from environment variables. It is called
// once at process start; nothing re-reads the environment afterwards.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":"+getEnv("PORT", "8080")),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("TABLE_NAME", "notes"),
		IndexName:     getEnv("INDEX_NAME", "OwnerIndex"),

		JWTSecret:    getEnv("JWT_SECRET", ""),
		JWTIssuer:    getEnv("JWT_ISSUER", "notes-backend"),
		CookieSecret: getEnv("COOKIE_SECRET", ""),

		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:5173"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.IsProduction() {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.CookieSecret == "" {
			return fmt.Errorf("COOKIE_SECRET is required in production")
		}
		if c.DynamoDBTable == "" {
			return fmt.Errorf("TABLE_NAME is required")
		}
	}

	// The two secrets gate different layers; sharing one value would make
	// the cookie envelope forgeable by anyone who can mint tokens.
	if c.JWTSecret != "" && c.JWTSecret == c.CookieSecret {
		return fmt.Errorf("JWT_SECRET and COOKIE_SECRET must differ")
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
