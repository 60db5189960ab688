package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	Port string

	// Store configuration
	StoreDriver string
	DataFile    string
	DatabaseURL string
	WatchStore  bool

	StaticDir string
	JWTSecret string
	LogLevel  string
}

// Load reads .env (if present) and the process environment. Call Validate
// once any command-line overrides have been applied.
func Load() *Config {
	// A missing .env is normal in production.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", DriverFile)),
		DataFile:    getEnv("DATA_FILE", "data/db.json"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		WatchStore:  getEnvAsBool("WATCH_STORE", true),
		StaticDir:   getEnv("STATIC_DIR", "dist"),
		JWTSecret:   os.Getenv("API_JWT_SECRET"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

// Validate checks driver-specific requirements.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverFile:
		if c.DataFile == "" {
			return fmt.Errorf("DATA_FILE is required for the %s driver", DriverFile)
		}
	case DriverPostgres, DriverSQLite:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s driver", c.StoreDriver)
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
