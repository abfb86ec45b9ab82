package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Business BusinessConfig `mapstructure:"business"`
	Health   HealthConfig   `mapstructure:"health"`
}

type ServerConfig struct {
	Port string `mapstructure:"SERVER_PORT"`
	Host string `mapstructure:"SERVER_HOST"`
	Env  string `mapstructure:"ENV"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"DATABASE_URL"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type BusinessConfig struct {
	LateFeePerDay     string `mapstructure:"LATE_FEE_PER_DAY"`
	ReferenceCacheTTL string `mapstructure:"REFERENCE_CACHE_TTL"`
}

type HealthConfig struct {
	Timeout string `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Optional .env file for local development
	_ = godotenv.Load()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("LATE_FEE_PER_DAY", "0.50")
	viper.SetDefault("REFERENCE_CACHE_TTL", "24h")
	viper.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")

	// Read from environment variables
	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	// Validate late fee rate
	rate, err := decimal.NewFromString(c.Business.LateFeePerDay)
	if err != nil {
		return fmt.Errorf("LATE_FEE_PER_DAY must be a valid decimal: %w", err)
	}
	if rate.IsNegative() {
		return fmt.Errorf("LATE_FEE_PER_DAY must not be negative")
	}

	// Validate cache TTL
	if _, err := time.ParseDuration(c.Business.ReferenceCacheTTL); err != nil {
		return fmt.Errorf("REFERENCE_CACHE_TTL must be a valid duration: %w", err)
	}

	// Validate health check timeout
	if _, err := time.ParseDuration(c.Health.Timeout); err != nil {
		return fmt.Errorf("HEALTH_CHECK_TIMEOUT must be a valid duration: %w", err)
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// GetLateFeePerDay returns the per-day late fee as decimal
func (c *Config) GetLateFeePerDay() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.Business.LateFeePerDay)
	return rate
}

// GetReferenceCacheTTL returns the reference-data cache TTL as duration
func (c *Config) GetReferenceCacheTTL() time.Duration {
	ttl, _ := time.ParseDuration(c.Business.ReferenceCacheTTL)
	return ttl
}

// GetHealthTimeout returns the health check timeout as duration
func (c *Config) GetHealthTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.Health.Timeout)
	return timeout
}
