package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	PayFast  PayFastConfig
	Routing  RoutingConfig
	Pricing  PricingConfig
	NSQ      NSQConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	BaseURL      string // public base URL used to build gateway callback URLs
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// PayFastConfig holds the gateway merchant credentials and endpoints.
// Sandbox selects the gateway environment; the URL fields override the
// environment's endpoints when set.
type PayFastConfig struct {
	MerchantID       string
	MerchantKey      string
	Passphrase       string
	Sandbox          bool
	ProcessURL       string
	ValidateURL      string
	RemoteValidation bool // confirm notifications with the gateway's validate endpoint
	Timeout          time.Duration
}

// RoutingConfig holds the road-distance provider configuration.
type RoutingConfig struct {
	GoogleMapsAPIKey string
	Timeout          time.Duration
}

// PricingConfig holds quote engine configuration.
type PricingConfig struct {
	DefaultCategory string
	Timezone        string // IANA zone the surge rule evaluates wall-clock time in
}

// NSQConfig holds the notification publisher configuration.
type NSQConfig struct {
	Addr    string
	Topic   string
	Enabled bool
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			BaseURL:      getEnv("SERVER_BASE_URL", "http://localhost:8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "loadhitch"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "loadhitch-payments"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		PayFast: PayFastConfig{
			MerchantID:       getEnv("PAYFAST_MERCHANT_ID", ""),
			MerchantKey:      getEnv("PAYFAST_MERCHANT_KEY", ""),
			Passphrase:       getEnv("PAYFAST_PASSPHRASE", ""),
			Sandbox:          getBoolEnv("PAYFAST_SANDBOX", true),
			ProcessURL:       getEnv("PAYFAST_PROCESS_URL", ""),
			ValidateURL:      getEnv("PAYFAST_VALIDATE_URL", ""),
			RemoteValidation: getBoolEnv("PAYFAST_REMOTE_VALIDATION", true),
			Timeout:          getDurationEnv("PAYFAST_TIMEOUT", 10*time.Second),
		},
		Routing: RoutingConfig{
			GoogleMapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
			Timeout:          getDurationEnv("ROUTING_TIMEOUT", 5*time.Second),
		},
		Pricing: PricingConfig{
			DefaultCategory: getEnv("PRICING_DEFAULT_CATEGORY", "General"),
			Timezone:        getEnv("PRICING_TIMEZONE", "Africa/Johannesburg"),
		},
		NSQ: NSQConfig{
			Addr:    getEnv("NSQ_ADDR", "localhost:4150"),
			Topic:   getEnv("NSQ_TOPIC", "loadhitch.notifications"),
			Enabled: getBoolEnv("NSQ_ENABLED", false),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
