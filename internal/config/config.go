// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ServerConfig holds all server-related settings
type ServerConfig struct {
	Port           int
	Host           string
	MetricsEnabled bool
}

// DatabaseConfig holds document-store connection settings
type DatabaseConfig struct {
	URI  string
	Name string
}

// BookingConfig holds the scheduling-provider settings. The API key is a
// secret: it goes into the Authorization header and never into logs.
type BookingConfig struct {
	BaseURL string
	APIKey  string
}

// ChatConfig holds the chat-completion provider settings.
type ChatConfig struct {
	APIKey  string
	BaseURL string // empty means the provider default
	Model   string
}

// Config holds the complete application configuration
type Config struct {
	Server         *ServerConfig
	Database       *DatabaseConfig
	Booking        *BookingConfig
	Chat           *ChatConfig
	JWTSecret      string
	AllowedOrigins []string
	Debug          bool
}

// DefaultConfig provides default server settings
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Port:           8080,
		Host:           "0.0.0.0",
		MetricsEnabled: true,
	}
}

// LoadConfig loads configuration from environment variables and applies defaults
func LoadConfig() (*Config, error) {
	// Try to load a .env file from the usual locations; a missing file is fine
	envLocations := []string{
		".env",
		"../../.env", // project root when running from cmd/server
	}
	for _, location := range envLocations {
		if err := godotenv.Load(location); err == nil {
			break
		}
	}

	serverConfig := DefaultConfig()

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			serverConfig.Port = port
		}
	}
	if host := os.Getenv("HOST"); host != "" {
		serverConfig.Host = host
	}
	if metricsEnabled := os.Getenv("METRICS_ENABLED"); metricsEnabled != "" {
		serverConfig.MetricsEnabled = metricsEnabled == "true"
	}

	dbConfig := &DatabaseConfig{
		URI:  os.Getenv("MONGODB_URI"),
		Name: getEnvOrDefault("MONGODB_DATABASE", "med_overflow"),
	}
	if dbConfig.URI == "" {
		return nil, fmt.Errorf("MONGODB_URI environment variable is required")
	}

	bookingConfig := &BookingConfig{
		BaseURL: getEnvOrDefault("BOOKING_API_URL", "https://shop.rumehealth.com/wp-admin/admin-ajax.php"),
		APIKey:  os.Getenv("BOOKING_API_KEY"),
	}

	chatConfig := &ChatConfig{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
		Model:   getEnvOrDefault("CHAT_MODEL", "gpt-4-0125-preview"),
	}

	config := &Config{
		Server:         serverConfig,
		Database:       dbConfig,
		Booking:        bookingConfig,
		Chat:           chatConfig,
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AllowedOrigins: []string{"*"},
		Debug:          os.Getenv("DEBUG") == "true",
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = strings.Split(origins, ",")
	}

	return config, nil
}

// Helper function to get environment variable with default fallback
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
