package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	SMS      SMSConfig
	Dispatch DispatchConfig
	OTEL     OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SMSConfig holds SMS gateway configuration
type SMSConfig struct {
	BaseURL  string
	APIKey   string
	SenderID string
}

// DispatchConfig holds emergency dispatch configuration
type DispatchConfig struct {
	// OperationsPhone receives the admin alert for every dispatch.
	// Empty disables the admin channel.
	OperationsPhone string

	// CountryCode is prepended to phone numbers that are not already
	// prefixed with it before any SMS send.
	CountryCode string

	// VideoCallBaseURL is the base URL video-call links are derived from;
	// the emergency id is the room identifier.
	VideoCallBaseURL string

	// AmbulanceAlertLimit caps how many ranked ambulance services are
	// alerted per dispatch.
	AmbulanceAlertLimit int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
			Env:  getEnv("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "telemed_dispatch"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		SMS: SMSConfig{
			BaseURL:  getEnv("SMS_GATEWAY_URL", "https://api.sms-gateway.example.com"),
			APIKey:   getEnv("SMS_GATEWAY_API_KEY", ""),
			SenderID: getEnv("SMS_SENDER_ID", "CAREBRIDGE"),
		},
		Dispatch: DispatchConfig{
			OperationsPhone:     getEnv("DISPATCH_OPERATIONS_PHONE", ""),
			CountryCode:         getEnv("DISPATCH_COUNTRY_CODE", "+91"),
			VideoCallBaseURL:    getEnv("VIDEO_CALL_BASE_URL", "https://meet.carebridge.health/room"),
			AmbulanceAlertLimit: getEnvAsInt("DISPATCH_AMBULANCE_LIMIT", 3),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "telemed-dispatch"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
