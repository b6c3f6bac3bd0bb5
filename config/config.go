package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// InsecureDefaultSecret is only acceptable outside production.
const InsecureDefaultSecret = "dev-secret-change-me"

type Config struct {
	Server              ServerConfig
	Database            DatabaseConfig
	JWT                 JWTConfig
	CORS                CORSConfig
	RateLimit           RateLimitConfig
	Log                 LogConfig
	Seed                SeedConfig
	ExposeStorageErrors bool
}

type ServerConfig struct {
	Port    string
	GinMode string
	Env     string
}

type DatabaseConfig struct {
	Driver       string
	URL          string
	SQLitePath   string
	MaxOpenConns int
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
	Issuer      string
}

// Expiry returns the validity window of issued tokens.
func (c JWTConfig) Expiry() time.Duration {
	return time.Duration(c.ExpiryHours) * time.Hour
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

type LogConfig struct {
	Level  string
	Format string
}

type SeedConfig struct {
	File string
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "debug"),
			Env:     getEnv("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			URL:          os.Getenv("DB_URL"),
			SQLitePath:   getEnv("SQLITE_PATH", "sanitation.db"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", InsecureDefaultSecret),
			ExpiryHours: getEnvAsInt("JWT_EXPIRY_HOURS", 8),
			Issuer:      getEnv("JWT_ISSUER", "sanitation-feedback-server"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		},
		RateLimit: RateLimitConfig{
			PerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 30),
			Burst:     getEnvAsInt("RATE_LIMIT_BURST", 10),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Seed: SeedConfig{
			File: os.Getenv("SEED_FILE"),
		},
	}
	cfg.ExposeStorageErrors = getEnvAsBool("EXPOSE_STORAGE_ERRORS", !cfg.IsProduction())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the process runs as a production deployment.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.GinMode == "release"
}

// Validate rejects configurations that must never be served.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DB_URL is required for the postgres driver")
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite)", c.Database.Driver)
	}

	if c.JWT.ExpiryHours <= 0 {
		return fmt.Errorf("JWT_EXPIRY_HOURS must be positive, got %d", c.JWT.ExpiryHours)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.IsProduction() {
		if c.JWT.Secret == InsecureDefaultSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 bytes in production")
		}
	}

	for _, origin := range c.CORS.AllowedOrigins {
		if origin == "*" && len(c.CORS.AllowedOrigins) == 1 {
			continue
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("CORS origin %q must start with http:// or https://", origin)
		}
	}

	if c.RateLimit.PerMinute <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit settings must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
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
