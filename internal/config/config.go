package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application settings loaded from environment variables.
type Config struct {
	ServerAddr       string
	DatabasePath     string
	LogLevel         string
	ContextKeepCount int
	InferenceBackend string // "mock" or "openai"
	OpenAIBaseURL    string
	OpenAIAPIKey     string
	OpenAIModel      string
	CORSOrigins      []string
}

// Load reads configuration from the environment, consulting a .env file first
// when one is present. Every setting has a development-friendly default.
func Load() (*Config, error) {
	// A missing .env is fine; production sets real environment variables.
	_ = godotenv.Load()

	keepCount, err := strconv.Atoi(getEnv("CONTEXT_KEEP_COUNT", "10"))
	if err != nil || keepCount <= 0 {
		keepCount = 10
	}

	cfg := &Config{
		ServerAddr:       getEnv("SERVER_ADDR", ":8080"),
		DatabasePath:     getEnv("DATABASE_PATH", "data/assistant.db"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		ContextKeepCount: keepCount,
		InferenceBackend: getEnv("INFERENCE_BACKEND", "mock"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "http://localhost:11434/v1/"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4"),
		CORSOrigins:      splitOrigins(getEnv("CORS_ORIGINS", "*")),
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}
