package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultAPIURL = "http://localhost:8000"

type Config struct {
	Server  ServerConfig
	API     APIConfig
	Session SessionConfig
	App     AppConfig
}

type ServerConfig struct {
	Port               string
	CORSOrigins        []string
	LoginRatePerMinute int
}

type APIConfig struct {
	BaseURL                  string
	Timeout                  time.Duration
	UploadTimeout            time.Duration
	RollbackOrphanedPrograms bool
}

type SessionConfig struct {
	RedisURL     string
	CookieName   string
	CookieSecure bool
	TTL          time.Duration
	TokenFile    string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "3000"),
			CORSOrigins:        getEnvAsList("CORS_ORIGINS"),
			LoginRatePerMinute: getEnvAsInt("LOGIN_RATE_PER_MINUTE", 20),
		},
		API: APIConfig{
			BaseURL:                  strings.TrimRight(getEnv("API_URL", DefaultAPIURL), "/"),
			Timeout:                  getEnvAsDuration("API_TIMEOUT", 30*time.Second),
			UploadTimeout:            getEnvAsDuration("UPLOAD_TIMEOUT", 3*time.Minute),
			RollbackOrphanedPrograms: getEnvAsBool("ROLLBACK_ORPHANED_PROGRAMS", false),
		},
		Session: SessionConfig{
			RedisURL:     getEnv("REDIS_URL", ""),
			CookieName:   getEnv("SESSION_COOKIE", "innovo_sid"),
			CookieSecure: getEnvAsBool("COOKIE_SECURE", false),
			TTL:          getEnvAsDuration("SESSION_TTL", 7*24*time.Hour),
			TokenFile:    getEnv("TOKEN_FILE", defaultTokenFile()),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_URL must be an absolute URL, got %q", c.API.BaseURL)
	}

	if c.Session.CookieName == "" {
		return fmt.Errorf("SESSION_COOKIE is required")
	}

	if c.Server.LoginRatePerMinute <= 0 {
		return fmt.Errorf("LOGIN_RATE_PER_MINUTE must be positive")
	}

	return nil
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "innovo", "token.json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
