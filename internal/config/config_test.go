package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FITPAL_MODE", "")
	t.Setenv("FITPAL_PORT", "")
	t.Setenv("FITPAL_USE_MOCK_LLM", "")
	t.Setenv("FITPAL_STORAGE_BACKEND", "")
	t.Setenv("FITPAL_LLM_TIMEOUT_SECONDS", "")

	cfg := Load()

	assert.Equal(t, ModeLocal, cfg.Mode)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.StorageBackend)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 3, cfg.ExtractRetries)
	// Local mode runs on the mock by default.
	assert.True(t, cfg.UseMockLLM)
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("FITPAL_MODE", "gcp")
	t.Setenv("FITPAL_GCP_PROJECT", "my-project")
	t.Setenv("FITPAL_PORT", "9090")
	t.Setenv("FITPAL_STORAGE_BACKEND", "sqlite")
	t.Setenv("FITPAL_SQLITE_PATH", "/tmp/test.db")
	t.Setenv("FITPAL_LLM_TIMEOUT_SECONDS", "5")
	t.Setenv("FITPAL_USE_MOCK_LLM", "")

	cfg := Load()

	assert.Equal(t, ModeGCP, cfg.Mode)
	assert.Equal(t, "my-project", cfg.GCPProjectID)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "sqlite", cfg.StorageBackend)
	assert.Equal(t, "/tmp/test.db", cfg.SQLitePath)
	assert.Equal(t, 5*time.Second, cfg.LLMTimeout)
	// GCP mode talks to the real model unless the mock is forced.
	assert.False(t, cfg.UseMockLLM)
}

func TestBoolAndIntEnvHelpers(t *testing.T) {
	t.Setenv("FITPAL_TEST_BOOL", "true")
	assert.True(t, getBoolEnv("FITPAL_TEST_BOOL", false))
	t.Setenv("FITPAL_TEST_BOOL", "0")
	assert.False(t, getBoolEnv("FITPAL_TEST_BOOL", true))

	t.Setenv("FITPAL_TEST_INT", "not a number")
	assert.Equal(t, 7, getIntEnv("FITPAL_TEST_INT", 7))
	t.Setenv("FITPAL_TEST_INT", "12")
	assert.Equal(t, 12, getIntEnv("FITPAL_TEST_INT", 12))
}
