package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// NSE archives
	NSE NSEConfig

	// Strength engine
	Engine EngineConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// NSEConfig holds NSE data source configuration
type NSEConfig struct {
	ArchivesBaseURL string // participant OI CSV and FII stats files
	BaseURL         string // nseindia.com, cookie bootstrap + cash JSON
	RequestTimeout  time.Duration
	RatePerSecond   float64 // request rate against NSE hosts
}

// EngineConfig holds strength engine defaults
type EngineConfig struct {
	LookbackDays       int       // distinct trading dates per threshold window
	WindowMode         string    // "fixed" or "rolling"
	OptionsPooling     string    // "respective" or "combined"
	MovementThresholds []float64 // backtest movement thresholds, percent
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8086"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		NSE: NSEConfig{
			ArchivesBaseURL: getEnv("NSE_ARCHIVES_BASE_URL", "https://nsearchives.nseindia.com"),
			BaseURL:         getEnv("NSE_BASE_URL", "https://www.nseindia.com"),
			RequestTimeout:  getEnvAsDuration("NSE_REQUEST_TIMEOUT", "30s"),
			RatePerSecond:   getEnvAsFloat("NSE_RATE_PER_SECOND", 1.0),
		},

		Engine: EngineConfig{
			LookbackDays:       getEnvAsInt("ENGINE_LOOKBACK_DAYS", 60),
			WindowMode:         getEnv("ENGINE_WINDOW_MODE", "fixed"),
			OptionsPooling:     getEnv("ENGINE_OPTIONS_POOLING", "respective"),
			MovementThresholds: getEnvAsFloats("BACKTEST_THRESHOLDS", []float64{0.2, 0.3, 0.4}),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Engine.LookbackDays <= 0 {
		return fmt.Errorf("ENGINE_LOOKBACK_DAYS must be positive")
	}

	switch c.Engine.WindowMode {
	case "fixed", "rolling":
	default:
		return fmt.Errorf("ENGINE_WINDOW_MODE must be fixed or rolling")
	}

	switch c.Engine.OptionsPooling {
	case "respective", "combined":
	default:
		return fmt.Errorf("ENGINE_OPTIONS_POOLING must be respective or combined")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloats parses a comma-separated float list, e.g. "0.2,0.3,0.4".
func getEnvAsFloats(key string, defaultValue []float64) []float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return defaultValue
		}
		values = append(values, v)
	}
	return values
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
