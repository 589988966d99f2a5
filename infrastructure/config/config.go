package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Environment
	Environment string
	AWSRegion   string

	// Database configuration. DatabaseURL wins when set; otherwise the
	// discrete fields are used. DBSecretARN points at a Secrets Manager
	// secret holding the credentials for the VPC-resident bridge.
	DatabaseURL string
	DBHost      string
	DBPort      int
	DBUser      string
	DBPassword  string
	DBName      string
	DBSecretARN string

	// Migration configuration
	MigrationsTable string
	FailOnDrift     bool

	// Bridge configuration
	BridgeFunctionName string

	// Deployment events
	EventBusName string

	// Logging and features
	LogLevel      string
	EnableMetrics bool
	EnableTracing bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		AWSRegion:   getEnv("AWS_REGION", "us-west-2"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnvInt("DB_PORT", 5432),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DBName:      getEnv("DB_NAME", "quizcore"),
		DBSecretARN: getEnv("DB_SECRET_ARN", ""),

		MigrationsTable: getEnv("MIGRATIONS_TABLE", "schema_migrations"),
		FailOnDrift:     getEnvBool("MIGRATIONS_FAIL_ON_DRIFT", false),

		BridgeFunctionName: getEnv("BRIDGE_FUNCTION_NAME", ""),

		EventBusName: getEnv("EVENT_BUS_NAME", ""),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", false),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.DatabaseURL == "" && c.DBSecretARN == "" && c.DBPassword == "" {
			return fmt.Errorf("one of DATABASE_URL, DB_SECRET_ARN or DB_PASSWORD is required in production")
		}
		if c.MigrationsTable == "" {
			return fmt.Errorf("MIGRATIONS_TABLE is required")
		}
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

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
