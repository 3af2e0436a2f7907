package config

import (
	"os"
	"strconv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	BotToken       string
	WebhookBaseURL string
	WebhookSecret  string
	ServerPort     string

	LastfmAPIKey string

	LogLevel            string
	GuessTimeoutSeconds int
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "scrambl"),

		BotToken:       getEnv("BOT_TOKEN", ""),
		WebhookBaseURL: getEnv("WEBHOOK_BASE_URL", ""),
		WebhookSecret:  getEnv("WEBHOOK_SECRET", ""),
		ServerPort:     getEnv("SERVER_PORT", "8080"),

		LastfmAPIKey: getEnv("LASTFM_API_KEY", ""),

		LogLevel:            getEnv("LOG_LEVEL", "info"),
		GuessTimeoutSeconds: getEnvInt("GUESS_TIMEOUT", 35),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}
