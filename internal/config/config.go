package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeCloud Mode = "cloud"
)

type Config struct {
	Mode Mode

	Port string

	// LLMBackend is "mock", "vertex" or "openai".
	LLMBackend string

	GCPProjectID string
	GCPLocation  string
	ModelName    string

	OpenAIModel string

	// StorageBackend is "memory", "redis" or "firestore".
	StorageBackend string
	RedisAddr      string

	QuestionCadence int
	AnalysisTimeout time.Duration
	IdleTimeout     time.Duration
	SweepInterval   time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
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

func getDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// Load reads all env vars and builds the config
func Load() *Config {
	modeStr := getEnv("HAVEN_MODE", "local")
	var mode Mode
	switch modeStr {
	case "cloud":
		mode = ModeCloud
	default:
		mode = ModeLocal
	}

	defaultLLM := "mock"
	if mode == ModeCloud {
		defaultLLM = "vertex"
	}

	cfg := &Config{
		Mode: mode,

		Port: getEnv("HAVEN_PORT", "8080"),

		LLMBackend: getEnv("HAVEN_LLM_BACKEND", defaultLLM),

		GCPProjectID: getEnv("HAVEN_GCP_PROJECT", ""),
		GCPLocation:  getEnv("HAVEN_GCP_LOCATION", "us-central1"),
		ModelName:    getEnv("HAVEN_MODEL_NAME", "gemini-2.5-flash-lite"),

		OpenAIModel: getEnv("HAVEN_OPENAI_MODEL", "gpt-4o-mini"),

		StorageBackend: getEnv("HAVEN_STORAGE_BACKEND", "memory"),
		RedisAddr:      getEnv("HAVEN_REDIS_ADDR", "localhost:6379"),

		QuestionCadence: getIntEnv("HAVEN_QUESTION_CADENCE", 3),
		AnalysisTimeout: getDurationEnv("HAVEN_ANALYSIS_TIMEOUT", 15*time.Second),
		IdleTimeout:     getDurationEnv("HAVEN_IDLE_TIMEOUT", 30*time.Minute),
		SweepInterval:   getDurationEnv("HAVEN_SWEEP_INTERVAL", 5*time.Minute),
	}

	// Minimal validation for the cloud backends
	if cfg.LLMBackend == "vertex" && cfg.GCPProjectID == "" {
		log.Fatal("HAVEN_GCP_PROJECT must be set with the vertex backend")
	}
	if cfg.StorageBackend == "firestore" && cfg.GCPProjectID == "" {
		log.Fatal("HAVEN_GCP_PROJECT must be set with the firestore backend")
	}

	return cfg
}
