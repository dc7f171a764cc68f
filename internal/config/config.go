// ABOUTME: Centralized configuration for the document chat service
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the document chat service.
type Config struct {
	// Grounding store settings (OAuth2 client credentials)
	GroundingAPIURL  string
	GroundingAuthURL string
	ClientID         string
	ClientSecret     string
	ResourceGroup    string
	EmbeddingModel   string
	// Outbound requests/second to the grounding store; 0 disables limiting.
	GroundingRateLimitRPS float64

	// Generation service settings
	LLMAPIKey     string
	LLMBaseURL    string
	AllowedModels []string

	// Ingestion settings
	DefaultChunkSize int
	MaxUploadBytes   int64

	// Remote call behavior
	RequestTimeout time.Duration
	MaxAttempts    int
	RetryBaseDelay time.Duration

	// HTTP server settings
	Host         string
	Port         int
	CORSOrigins  []string
	RateLimitRPS float64

	// Registry backend: "memory" or "charm"
	RegistryBackend string
	CharmHost       string
	CharmDBName     string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		GroundingAPIURL:  os.Getenv("GROUNDING_API_URL"),
		GroundingAuthURL: os.Getenv("GROUNDING_AUTH_URL"),
		ClientID:         os.Getenv("GROUNDING_CLIENT_ID"),
		ClientSecret:     os.Getenv("GROUNDING_CLIENT_SECRET"),
		ResourceGroup:    getEnv("GROUNDING_RESOURCE_GROUP", "default"),
		EmbeddingModel:   getEnv("GROUNDING_EMBEDDING_MODEL", "text-embedding-ada-002"),

		GroundingRateLimitRPS: getEnvFloat("GROUNDING_RATE_LIMIT_RPS", 0),

		LLMAPIKey:     getEnv("LLM_API_KEY", os.Getenv("OPENAI_API_KEY")),
		LLMBaseURL:    os.Getenv("LLM_BASE_URL"),
		AllowedModels: getEnvList("DOCCHAT_ALLOWED_MODELS", []string{"gpt-4o", "gpt-4o-mini", "gpt-4.1", "gpt-4.1-mini"}),

		DefaultChunkSize: getEnvInt("DOCCHAT_DEFAULT_CHUNK_SIZE", 500),
		MaxUploadBytes:   int64(getEnvInt("DOCCHAT_MAX_UPLOAD_BYTES", 10<<20)),

		RequestTimeout: getEnvDuration("DOCCHAT_REQUEST_TIMEOUT", 30*time.Second),
		MaxAttempts:    getEnvInt("DOCCHAT_MAX_ATTEMPTS", 3),
		RetryBaseDelay: getEnvDuration("DOCCHAT_RETRY_BASE_DELAY", 500*time.Millisecond),

		Host:         getEnv("DOCCHAT_HOST", "0.0.0.0"),
		Port:         getEnvInt("DOCCHAT_PORT", 8000),
		CORSOrigins:  getEnvList("DOCCHAT_CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		RateLimitRPS: getEnvFloat("DOCCHAT_RATE_LIMIT_RPS", 0),

		RegistryBackend: getEnv("DOCCHAT_REGISTRY", "memory"),
		CharmHost:       getEnv("CHARM_HOST", "cloud.charm.sh"),
		CharmDBName:     getEnv("CHARM_DB", "docchat"),
	}

	return cfg, cfg.Validate()
}

// Validate checks ranges and cross-field consistency.
func (c *Config) Validate() error {
	if c.DefaultChunkSize <= 0 {
		return fmt.Errorf("DOCCHAT_DEFAULT_CHUNK_SIZE must be positive, got %d", c.DefaultChunkSize)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("DOCCHAT_MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if c.MaxAttempts < 1 || c.MaxAttempts > 10 {
		return fmt.Errorf("DOCCHAT_MAX_ATTEMPTS must be 1-10, got %d", c.MaxAttempts)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("DOCCHAT_PORT must be 1-65535, got %d", c.Port)
	}
	if c.RegistryBackend != "memory" && c.RegistryBackend != "charm" {
		return fmt.Errorf("DOCCHAT_REGISTRY must be \"memory\" or \"charm\", got %q", c.RegistryBackend)
	}
	if len(c.AllowedModels) == 0 {
		return fmt.Errorf("DOCCHAT_ALLOWED_MODELS must not be empty")
	}
	return nil
}

// Addr returns the host:port the HTTP server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var result []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	if len(result) == 0 {
		return defaultVal
	}
	return result
}
