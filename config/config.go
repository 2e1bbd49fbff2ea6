package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"mir4tracker/database"
)

// Supported record store backends
const (
	StoreBackendPostgres = "postgres"
	StoreBackendMongo    = "mongo"
	StoreBackendMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	// HTTP configuration
	Port        int
	CORSOrigins string // Comma-separated list of allowed origins

	// Record store configuration
	StoreBackend string // "postgres", "mongo" or "memory"

	// PostgreSQL configuration
	DatabaseURL  string
	DatabaseName string

	// MongoDB configuration
	MongoURL    string
	MongoDBName string

	// NATS configuration, empty disables event forwarding
	NATSServers string

	// Upper bound on accounts returned by a single list read
	AccountListLimit int

	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// A missing .env file is fine, the environment may already be populated
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Failed to load .env file")
	}

	config := &Config{
		Port:        8001,
		CORSOrigins: getEnvWithDefault("CORS_ORIGINS", "*"),

		StoreBackend: getEnvWithDefault("STORE_BACKEND", StoreBackendPostgres),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		MongoURL:    os.Getenv("MONGO_URL"),
		MongoDBName: getEnvWithDefault("DB_NAME", "mir4"),

		NATSServers: os.Getenv("NATS_SERVERS"),

		AccountListLimit: 1000,

		LogLevel: getEnvWithDefault("LOG_LEVEL", "info"),

		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if port := os.Getenv("PORT"); port != "" {
		if parsedPort, err := strconv.Atoi(port); err == nil {
			config.Port = parsedPort
		}
	}
	if limit := os.Getenv("ACCOUNT_LIST_LIMIT"); limit != "" {
		if parsedLimit, err := strconv.Atoi(limit); err == nil && parsedLimit > 0 {
			config.AccountListLimit = parsedLimit
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.StoreBackend) {
	case StoreBackendPostgres:
		if c.DatabaseURL == "" && c.Environment != "test" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case StoreBackendMongo:
		if c.MongoURL == "" && c.Environment != "test" {
			return fmt.Errorf("MONGO_URL is required for the mongo store")
		}
	case StoreBackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	c.StoreBackend = strings.ToLower(c.StoreBackend)

	if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
		return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
	}
	return nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Port:             8001,
		CORSOrigins:      "*",
		StoreBackend:     StoreBackendMemory,
		AccountListLimit: 1000,
		LogLevel:         "debug",
		Environment:      "test",
	}
}
