package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontdesk-backend/internal/storage"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.LLMBaseURL)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 1, cfg.LLMMaxRetries)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, storage.BackendMemory, cfg.TranscriptBackend)
	assert.Equal(t, storage.BackendFile, cfg.KnowledgeBackend)
	assert.Equal(t, storage.DefaultTranscriptCapacity, cfg.TranscriptCapacity)
	assert.Equal(t, QueueMemory, cfg.QueueBackend)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("API_PORT", "9000")
	t.Setenv("LLM_PROVIDER", "langchain")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,https://sprouts.example")
	t.Setenv("TRANSCRIPT_BACKEND", "database")
	t.Setenv("DATABASE_URL", "postgres://user:pass@db:5432/frontdesk")
	t.Setenv("S3_ENDPOINT_URL", "http://minio:9000")
	t.Setenv("KNOWLEDGE_BUCKET", "handbooks")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "langchain", cfg.LLMProvider)
	assert.Equal(t, 5*time.Second, cfg.LLM().Timeout)
	assert.Equal(t, []string{"http://localhost:3000", "https://sprouts.example"}, cfg.AllowedOrigins)

	storageCfg := cfg.Storage()
	assert.Equal(t, storage.BackendDatabase, storageCfg.TranscriptBackend)
	assert.Equal(t, "postgres://user:pass@db:5432/frontdesk", storageCfg.DatabaseURL)
	assert.Equal(t, "http://minio:9000", storageCfg.S3.Endpoint)
	assert.Equal(t, "handbooks", storageCfg.S3Bucket)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Run("Provider", func(t *testing.T) {
		t.Setenv("LLM_PROVIDER", "anthropic")
		_, err := Load()
		assert.ErrorContains(t, err, "LLM_PROVIDER")
	})

	t.Run("Queue", func(t *testing.T) {
		t.Setenv("QUEUE_BACKEND", "kafka")
		_, err := Load()
		assert.ErrorContains(t, err, "QUEUE_BACKEND")
	})

	t.Run("Capacity", func(t *testing.T) {
		t.Setenv("TRANSCRIPT_CAPACITY", "0")
		_, err := Load()
		assert.ErrorContains(t, err, "TRANSCRIPT_CAPACITY")
	})

	t.Run("Port", func(t *testing.T) {
		t.Setenv("API_PORT", "not-a-port")
		_, err := Load()
		assert.Error(t, err)
	})
}
