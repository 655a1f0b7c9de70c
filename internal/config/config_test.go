package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"AKILIQUEST_STORE", "MONGODB_URI", "MONGODB_DATABASE", "AKILIQUEST_LLM_PROVIDER",
		"GOOGLE_CLOUD_LOCATION", "AKILIQUEST_AI_TIMEOUT", "AKILIQUEST_CORS_ORIGINS",
		"AKILIQUEST_LOG_LEVEL", "AKILIQUEST_BREAKER_FAILURES",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, StoreMongo, cfg.Store)
	assert.Equal(t, "akiliquest", cfg.MongoDatabase)
	assert.Equal(t, ProviderVertex, cfg.LLMProvider)
	assert.Equal(t, "us-central1", cfg.GCPLocation)
	assert.Equal(t, 30*time.Second, cfg.AITimeout)
	assert.Equal(t, uint32(5), cfg.BreakerFailures)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AKILIQUEST_STORE", "SurrealDB")
	t.Setenv("AKILIQUEST_AI_TIMEOUT", "5s")
	t.Setenv("AKILIQUEST_CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("AKILIQUEST_LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, StoreSurreal, cfg.Store)
	assert.Equal(t, 5*time.Second, cfg.AITimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadBadTimeoutFallsBack(t *testing.T) {
	t.Setenv("AKILIQUEST_AI_TIMEOUT", "soon")
	assert.Equal(t, 30*time.Second, Load().AITimeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
		wantMsg string
	}{
		{"mongo without uri", Config{Store: StoreMongo, LLMProvider: ProviderVertex}, ErrMissingSetting, "MONGODB_URI"},
		{"mongo with uri", Config{Store: StoreMongo, MongoURI: "mongodb://x", LLMProvider: ProviderVertex}, nil, ""},
		{"memory store", Config{Store: StoreMemory, LLMProvider: ProviderOllama}, nil, ""},
		{"unknown store", Config{Store: "redis", LLMProvider: ProviderVertex}, nil, "unsupported store"},
		{"openai without key", Config{Store: StoreMemory, LLMProvider: ProviderOpenAI}, ErrMissingSetting, "OPENAI_API_KEY"},
		{"unknown provider", Config{Store: StoreMemory, LLMProvider: "llama"}, nil, "unsupported LLM provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil && tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
			}
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Info("topic explored", "topic", "Jazz")
	logger.Debug("hidden")

	assert.Contains(t, stderr.String(), "topic=Jazz")
	assert.NotContains(t, stderr.String(), "hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(file.String())), &entry))
	assert.Equal(t, "topic explored", entry["msg"])
}

func TestSetupLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "akiliquest.log")
	logger, cleanup := SetupLogger(Config{LogFile: path, LogLevel: slog.LevelInfo})
	require.NotNil(t, logger)
	logger.Info("hello")
	require.NoError(t, cleanup())
}
