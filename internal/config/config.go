// Package config loads runtime settings from the environment, with a
// .env file picked up when present.
package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings
type Config struct {
	// DBType selects the backend: "sqlite" (default) or "postgres".
	DBType      string
	SQLitePath  string
	PostgresURL string

	HTTPAddr string

	TelegramToken string
	OpenAIKey     string

	// NotifyStartHour/NotifyEndHour bound the daily window in which
	// review reminders may be sent.
	NotifyStartHour int
	NotifyEndHour   int

	NewCardsPerDay int
}

// Load reads configuration from the environment. A missing .env file
// is not an error.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	return &Config{
		DBType:          getEnv("DB_TYPE", "sqlite"),
		SQLitePath:      getEnv("DB_PATH", "data/lingo.db"),
		PostgresURL:     getEnv("DATABASE_URL", ""),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		TelegramToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
		OpenAIKey:       getEnv("OPENAI_API_KEY", ""),
		NotifyStartHour: getEnvInt("NOTIFY_START_HOUR", 8),
		NotifyEndHour:   getEnvInt("NOTIFY_END_HOUR", 22),
		NewCardsPerDay:  getEnvInt("NEW_CARDS_PER_DAY", 10),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid value for %s: %q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
