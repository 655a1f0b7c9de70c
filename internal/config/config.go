package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	StoreMongo   = "mongodb"
	StoreSurreal = "surrealdb"
	StoreMemory  = "memory"
)

// LLM providers.
const (
	ProviderVertex    = "vertex"
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderBedrock   = "bedrock"
)

// ErrMissingSetting indicates a required environment variable is absent.
var ErrMissingSetting = errors.New("missing required setting")

// Config holds all configuration values.
type Config struct {
	// Store selection
	Store string

	// MongoDB connection
	MongoURI      string
	MongoDatabase string

	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Generation
	LLMProvider     string
	LLMModel        string
	GCPProject      string
	GCPLocation     string
	EmbedModel      string
	OllamaHost      string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	AWSRegion       string
	AITimeout       time.Duration
	BreakerFailures uint32

	// Server
	ServerPort  string
	CORSOrigins []string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		Store: strings.ToLower(getEnv("AKILIQUEST_STORE", StoreMongo)),

		MongoURI:      os.Getenv("MONGODB_URI"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "akiliquest"),

		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "akiliquest"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "explore"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		LLMProvider:     strings.ToLower(getEnv("AKILIQUEST_LLM_PROVIDER", ProviderVertex)),
		LLMModel:        getEnv("AKILIQUEST_LLM_MODEL", "gemini-2.0-flash"),
		GCPProject:      os.Getenv("GOOGLE_CLOUD_PROJECT_ID"),
		GCPLocation:     getEnv("GOOGLE_CLOUD_LOCATION", "us-central1"),
		EmbedModel:      os.Getenv("AKILIQUEST_EMBED_MODEL"),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		AITimeout:       parseDuration(getEnv("AKILIQUEST_AI_TIMEOUT", "30s"), 30*time.Second),
		BreakerFailures: uint32(parseInt(getEnv("AKILIQUEST_BREAKER_FAILURES", "5"), 5)),

		ServerPort:  getEnv("AKILIQUEST_SERVER_PORT", "8080"),
		CORSOrigins: splitList(getEnv("AKILIQUEST_CORS_ORIGINS", "http://localhost:3000")),

		LogFile:  getEnv("AKILIQUEST_LOG_FILE", "/tmp/akiliquest.log"),
		LogLevel: parseLogLevel(getEnv("AKILIQUEST_LOG_LEVEL", "INFO")),
	}
}

// Validate reports deployment errors: settings the selected backends cannot run without.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("%w: MONGODB_URI", ErrMissingSetting)
		}
	case StoreSurreal:
		if c.SurrealDBURL == "" {
			return fmt.Errorf("%w: SURREALDB_URL", ErrMissingSetting)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unsupported store: %s", c.Store)
	}

	switch c.LLMProvider {
	case ProviderVertex, ProviderOllama, ProviderBedrock:
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY", ErrMissingSetting)
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("%w: ANTHROPIC_API_KEY", ErrMissingSetting)
		}
	default:
		return fmt.Errorf("unsupported LLM provider: %s", c.LLMProvider)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
