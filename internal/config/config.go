package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const devSessionKey = "blogly-dev-session-key-change-me"

type Config struct {
	DSN           string
	Port          string
	SessionKey    string
	SecureCookies bool
	// RateLimit is the number of POST requests allowed per IP and endpoint each minute. 0 disables it.
	RateLimit int
	LogSQL    bool
}

// Load reads .env if present, then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		DSN:        os.Getenv("DSN"),
		Port:       os.Getenv("PORT"),
		SessionKey: os.Getenv("SESSION_KEY"),
		RateLimit:  60,
	}
	if cfg.DSN == "" {
		return Config{}, errors.New("DSN is not set")
	}
	if cfg.Port == "" {
		cfg.Port = "3000"
	}
	if cfg.SessionKey == "" {
		log.Println("SESSION_KEY not set, using the development key")
		cfg.SessionKey = devSessionKey
	}

	var err error
	if cfg.SecureCookies, err = boolEnv("SECURE_COOKIES"); err != nil {
		return Config{}, err
	}
	if cfg.LogSQL, err = boolEnv("DB_LOG_SQL"); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("invalid RATE_LIMIT %q", v)
		}
		cfg.RateLimit = n
	}
	return cfg, nil
}

func boolEnv(key string) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}
