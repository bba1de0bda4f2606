package config

import (
	"chat-rag/internal/logger"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// AppConfig holds all application configuration
type AppConfig struct {
	Server    ServerConfig
	Database  DatabaseConfig
	LLM       LLMConfig
	Messaging MessagingConfig
	Upload    UploadConfig
	Models    *ModelsConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database connection configuration.
// URL takes precedence over the individual parts when set.
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// LLMConfig holds completion provider configuration. The API key itself
// lives in the configs table, not in the environment.
type LLMConfig struct {
	CompletionURL string
	SiteURL       string
	ClientTimeout time.Duration
}

// MessagingConfig holds the WhatsApp gateway (Evolution API) settings
type MessagingConfig struct {
	BaseURL       string
	Instance      string
	APIKey        string
	ClientTimeout time.Duration
}

// UploadConfig bounds document uploads
type UploadConfig struct {
	MaxFileBytes int64
	TempDir      string
}

const (
	DefaultCompletionURL = "https://openrouter.ai/api/v1/chat/completions"
	DefaultSiteURL       = "http://localhost:3000"
	DefaultInstance      = "chat-rag"
	DefaultMaxFileBytes  = 10 * 1024 * 1024

	// writeTimeoutMargin is added on top of the outbound calls a webhook
	// request may chain (one completion then one send)
	writeTimeoutMargin = 30 * time.Second
)

// LoadConfig loads and validates application configuration from environment
func LoadConfig() (*AppConfig, error) {
	config := &AppConfig{}

	clientTimeout := getEnvAsDuration("HTTP_CLIENT_TIMEOUT", 60*time.Second)

	config.Server = ServerConfig{
		Port:         getEnvOrDefault("SERVER_PORT", "8080"),
		ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
		WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", DefaultWriteTimeout(clientTimeout)),
	}

	config.Database = DatabaseConfig{
		URL:      os.Getenv("DATABASE_URL"),
		Host:     getEnvOrDefault("DB_HOST", "postgres"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		User:     getEnvOrDefault("DB_USER", "postgres"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     getEnvOrDefault("DB_NAME", "chatrag"),
		SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
	}
	if config.Database.URL == "" && config.Database.Password == "" {
		return nil, fmt.Errorf("missing store credentials: set DATABASE_URL or DB_PASSWORD")
	}

	config.LLM = LLMConfig{
		CompletionURL: getEnvOrDefault("OPENROUTER_URL", DefaultCompletionURL),
		SiteURL:       getEnvOrDefault("SITE_URL", DefaultSiteURL),
		ClientTimeout: clientTimeout,
	}

	config.Messaging = MessagingConfig{
		BaseURL:       os.Getenv("EVOLUTION_API_URL"),
		Instance:      getEnvOrDefault("EVOLUTION_INSTANCE", DefaultInstance),
		APIKey:        os.Getenv("EVOLUTION_API_KEY"),
		ClientTimeout: clientTimeout,
	}
	if config.Messaging.BaseURL == "" {
		logger.Log.Warn("EVOLUTION_API_URL environment variable not set, webhook replies will not be delivered")
	}

	config.Upload = UploadConfig{
		MaxFileBytes: int64(getEnvAsInt("UPLOAD_MAX_BYTES", DefaultMaxFileBytes)),
		TempDir:      os.Getenv("UPLOAD_TEMP_DIR"),
	}

	modelsConfig, err := LoadModelsConfig(os.Getenv("MODELS_CONFIG_PATH"))
	if err != nil {
		return nil, fmt.Errorf("failed to load models config: %w", err)
	}
	config.Models = modelsConfig

	return config, nil
}

// DefaultWriteTimeout outlasts a completion call followed by a messaging
// call, each bounded by clientTimeout
func DefaultWriteTimeout(clientTimeout time.Duration) time.Duration {
	return 2*clientTimeout + writeTimeoutMargin
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Redacted returns a loggable description of the target database
func (c *DatabaseConfig) Redacted() string {
	if c.URL != "" {
		return "DATABASE_URL"
	}
	return fmt.Sprintf("host=%s port=%s dbname=%s", c.Host, c.Port, c.Name)
}

// Helper functions for environment variable parsing

func getEnvOrDefault(key, defaultValue string) string {
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
		logger.Log.WithFields(logrus.Fields{"key": key, "default": defaultValue}).Warn("Invalid integer value, using default")
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"key": key, "default": defaultValue}).Warn("Invalid duration value, using default")
		return defaultValue
	}
	return value
}
