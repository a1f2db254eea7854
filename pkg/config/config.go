package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Inventory InventoryConfig
	Flow      FlowConfig
	Session   SessionConfig
	App       AppConfig
}

type ServerConfig struct {
	Address      string
	WriteTimeout time.Duration
	ReadTimeout  time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	MaxPoolConns int
}

// InventoryConfig points at a remote itinerary service. An empty BaseURL selects the built-in generator.
type InventoryConfig struct {
	BaseURL string
}

type FlowConfig struct {
	SearchDelay  time.Duration
	PaymentDelay time.Duration
}

type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

type AppConfig struct {
	Version          string
	AdminKey         string
	LogLevel         string
	MetricsNamespace string
}

func (dc *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s pool_max_conns=%d",
		dc.Host,
		dc.Port,
		dc.Name,
		dc.User,
		dc.Password,
		dc.MaxPoolConns,
	)
}

// Enabled reports whether a booking ledger database is configured.
func (dc *DatabaseConfig) Enabled() bool {
	return dc.Host != ""
}

// NewConfig reads the environment, after loading a .env file when one exists.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	serverCfg, err := newServerConfig()
	if err != nil {
		return nil, fmt.Errorf("server config error: %w", err)
	}

	dbCfg, err := newDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("database config error: %w", err)
	}

	flowCfg, err := newFlowConfig()
	if err != nil {
		return nil, fmt.Errorf("flow config error: %w", err)
	}

	sessionCfg, err := newSessionConfig()
	if err != nil {
		return nil, fmt.Errorf("session config error: %w", err)
	}

	return &Config{
		Server:    serverCfg,
		Database:  dbCfg,
		Inventory: InventoryConfig{BaseURL: os.Getenv("INVENTORY_URL")},
		Flow:      flowCfg,
		Session:   sessionCfg,
		App: AppConfig{
			Version:          getEnvOrDefault("APP_VERSION", "1.0.0"),
			AdminKey:         os.Getenv("ADMIN_KEY"),
			LogLevel:         getEnvOrDefault("LOG_LEVEL", "info"),
			MetricsNamespace: getEnvOrDefault("METRICS_NAMESPACE", "skybooker"),
		},
	}, nil
}

func newServerConfig() (ServerConfig, error) {
	writeTimeout, err := getDurationFromEnv("SERVER_WRITE_TIMEOUT", "15s")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("write timeout parse error: %w", err)
	}

	readTimeout, err := getDurationFromEnv("SERVER_READ_TIMEOUT", "15s")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("read timeout parse error: %w", err)
	}

	idleTimeout, err := getDurationFromEnv("SERVER_IDLE_TIMEOUT", "30s")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("idle timeout parse error: %w", err)
	}

	return ServerConfig{
		Address:      getEnvOrDefault("SERVER_ADDRESS", ":5000"),
		WriteTimeout: writeTimeout,
		ReadTimeout:  readTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func newDatabaseConfig() (DatabaseConfig, error) {
	maxConns, err := strconv.Atoi(getEnvOrDefault("MAX_CONNS", "10"))
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("max connections parse error: %w", err)
	}

	return DatabaseConfig{
		Host:         os.Getenv("POSTGRES_HOST"),
		Port:         getEnvOrDefault("POSTGRES_PORT", "5432"),
		Name:         getEnvOrDefault("POSTGRES_DB", "skybooker"),
		User:         getEnvOrDefault("POSTGRES_USER", "postgres"),
		Password:     getEnvOrDefault("POSTGRES_PASSWORD", ""),
		MaxPoolConns: maxConns,
	}, nil
}

func newFlowConfig() (FlowConfig, error) {
	searchDelay, err := getDurationFromEnv("SEARCH_DELAY", "1.5s")
	if err != nil {
		return FlowConfig{}, fmt.Errorf("search delay parse error: %w", err)
	}

	paymentDelay, err := getDurationFromEnv("PAYMENT_DELAY", "2s")
	if err != nil {
		return FlowConfig{}, fmt.Errorf("payment delay parse error: %w", err)
	}

	return FlowConfig{
		SearchDelay:  searchDelay,
		PaymentDelay: paymentDelay,
	}, nil
}

func newSessionConfig() (SessionConfig, error) {
	ttl, err := getDurationFromEnv("SESSION_TTL", "30m")
	if err != nil {
		return SessionConfig{}, fmt.Errorf("session ttl parse error: %w", err)
	}

	sweep, err := getDurationFromEnv("SESSION_SWEEP_INTERVAL", "1m")
	if err != nil {
		return SessionConfig{}, fmt.Errorf("sweep interval parse error: %w", err)
	}
	if sweep <= 0 {
		return SessionConfig{}, fmt.Errorf("sweep interval must be positive, got %s", sweep)
	}

	return SessionConfig{
		TTL:           ttl,
		SweepInterval: sweep,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationFromEnv(key, defaultValue string) (time.Duration, error) {
	return time.ParseDuration(getEnvOrDefault(key, defaultValue))
}
