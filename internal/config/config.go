// Package config loads the service configuration from the environment.
// A .env file in the working directory is picked up automatically.
package config

import (
	"errors"
	"os"
	"strconv"

	_ "github.com/joho/godotenv/autoload"
)

// Config holds everything the binary needs to start.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port int

	// InferenceAPIKey authenticates against the chat-completions provider.
	InferenceAPIKey string

	// WeatherAPIKey authenticates against OpenWeatherMap.
	WeatherAPIKey string

	// DatabaseURL selects PostgreSQL storage when set; empty means the
	// in-memory store.
	DatabaseURL string

	// NormalizeCityKeys folds case and whitespace in weather cache keys.
	NormalizeCityKeys bool
}

// Load reads the environment and fails fast on missing credentials so a
// misconfigured deployment dies at startup instead of on the first request.
func Load() (*Config, error) {
	cfg := &Config{
		InferenceAPIKey:   os.Getenv("DEEPSEEK_API_KEY"),
		WeatherAPIKey:     os.Getenv("OPENWEATHERMAP_API_KEY"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		NormalizeCityKeys: os.Getenv("WEATHER_NORMALIZE_CITY_KEYS") == "true",
	}
	if cfg.InferenceAPIKey == "" {
		return nil, errors.New("DEEPSEEK_API_KEY is not set")
	}
	if cfg.WeatherAPIKey == "" {
		return nil, errors.New("OPENWEATHERMAP_API_KEY is not set")
	}

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil || port == 0 {
		port = 8080
	}
	cfg.Port = port

	return cfg, nil
}
