package config

import (
	"os"
	"strconv"
)

type Config struct {
	DBPath         string
	VocabPath      string
	APIPort        string
	LogLevel       string
	MatchThreshold int
}

func Load() *Config {
	return &Config{
		DBPath:         GetEnv("CARS_DB", "db/polish_cars.db"),
		VocabPath:      GetEnv("VOCAB_PATH", "data/makes_models.json"),
		APIPort:        GetEnv("API_PORT", "8080"),
		LogLevel:       GetEnv("LOG_LEVEL", "info"),
		MatchThreshold: GetEnvInt("MATCH_THRESHOLD", 80),
	}
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
