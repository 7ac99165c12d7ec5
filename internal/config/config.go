package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Auth (single tenant)
	JWTSecret          string
	AccessPasswordHash string

	// Credential store encryption key, 64 hex chars (32 bytes)
	CredentialKeyHex string

	// Smart rename worker pool
	RenameWorkers int
	RenameModelID string

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:               getEnvOrDefault("PORT", "8080"),
		Env:                getEnvOrDefault("ENV", "development"),
		DatabaseURL:        mustGetEnv("DATABASE_URL"),
		RedisURL:           mustGetEnv("REDIS_URL"),
		JWTSecret:          mustGetEnv("JWT_SECRET"),
		AccessPasswordHash: mustGetEnv("ACCESS_PASSWORD_HASH"),
		CredentialKeyHex:   mustGetEnv("CREDENTIAL_KEY"),
		RenameWorkers:      getEnvAsIntOrDefault("RENAME_WORKERS", 2),
		RenameModelID:      getEnvOrDefault("RENAME_MODEL_ID", "gemini-2.0-flash-lite"),
		FrontendURL:        getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
