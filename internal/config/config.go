package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

type Config struct {
	Mode Mode

	Port string

	GCPProjectID string
	GCPLocation  string
	ModelName    string

	StorageBackend string // "memory" or "sqlite"
	SQLitePath     string
	UseMockLLM     bool // true = use the rule-based mock even on GCP

	// Turn engine budgets.
	LLMTimeout     time.Duration
	ExtractRetries int
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "TRUE"
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Load reads a .env file if present, then all env vars, and builds the config.
func Load() *Config {
	_ = godotenv.Load()

	modeStr := getEnv("FITPAL_MODE", "local")
	var mode Mode
	switch modeStr {
	case "gcp":
		mode = ModeGCP
	default:
		mode = ModeLocal
	}

	cfg := &Config{
		Mode: mode,

		Port: getEnv("FITPAL_PORT", "8080"),

		GCPProjectID: getEnv("FITPAL_GCP_PROJECT", ""),
		GCPLocation:  getEnv("FITPAL_GCP_LOCATION", "us-central1"),
		ModelName:    getEnv("FITPAL_MODEL_NAME", "gemini-2.5-flash"),

		StorageBackend: getEnv("FITPAL_STORAGE_BACKEND", "memory"),
		SQLitePath:     getEnv("FITPAL_SQLITE_PATH", "fitpal.db"),
		UseMockLLM:     getBoolEnv("FITPAL_USE_MOCK_LLM", mode == ModeLocal),

		LLMTimeout:     time.Duration(getIntEnv("FITPAL_LLM_TIMEOUT_SECONDS", 30)) * time.Second,
		ExtractRetries: getIntEnv("FITPAL_EXTRACT_RETRIES", 3),
	}

	// Minimal validation in GCP mode
	if cfg.Mode == ModeGCP && cfg.GCPProjectID == "" {
		log.Fatal("FITPAL_GCP_PROJECT must be set in gcp mode")
	}

	return cfg
}
