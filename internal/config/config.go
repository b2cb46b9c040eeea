// Package config provides environment configuration for the API server.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// Transcription service (speech-to-text + audio sentiment)
	DeepgramAPIKey  string
	DeepgramBaseURL string
	DeepgramTimeout time.Duration

	// Ticketing service
	TrelloAPIKey  string
	TrelloToken   string
	TrelloListID  string
	TrelloBaseURL string
	TrelloTimeout time.Duration

	// Escalation policy thresholds
	PolicyNegativeStreak int
	PolicyMaxTurns       int

	// NATS event publishing (optional)
	NATSURL   string
	NATSToken string

	// LLM ticket summaries (optional)
	AnthropicAPIKey string
	OpenAIAPIKey    string
	DefaultLLM      string

	// Auth (optional; off when the secret is empty)
	AuthJWTSecret string

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "8001"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),

		// Transcription
		DeepgramAPIKey:  getEnv("DEEPGRAM_API_KEY", ""),
		DeepgramBaseURL: getEnv("DEEPGRAM_BASE_URL", "https://api.deepgram.com/v1"),
		DeepgramTimeout: getDurationEnv("DEEPGRAM_TIMEOUT", 30*time.Second),

		// Ticketing
		TrelloAPIKey:  getEnv("TRELLO_API_KEY", ""),
		TrelloToken:   getEnv("TRELLO_TOKEN", ""),
		TrelloListID:  getEnv("TRELLO_LIST_ID", ""),
		TrelloBaseURL: getEnv("TRELLO_BASE_URL", "https://api.trello.com/1"),
		TrelloTimeout: getDurationEnv("TRELLO_TIMEOUT", 15*time.Second),

		// Policy
		PolicyNegativeStreak: getIntEnv("POLICY_NEGATIVE_STREAK", 2),
		PolicyMaxTurns:       getIntEnv("POLICY_MAX_TURNS", 10),

		// NATS
		NATSURL:   getEnv("NATS_URL", ""),
		NATSToken: getEnv("NATS_TOKEN", ""),

		// LLM
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		DefaultLLM:      getEnv("DEFAULT_LLM", "anthropic"),

		// Auth
		AuthJWTSecret: getEnv("AUTH_JWT_SECRET", ""),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
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
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
