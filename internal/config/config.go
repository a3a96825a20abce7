package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	APIURL         string        // Base URL of the Serenify backend (VENT_API_URL, NEXT_PUBLIC_API_URL)
	APITimeout     time.Duration // Per-request timeout
	APIRPS         float64       // Outbound request rate; 0 disables pacing
	APIBurst       int
	StoreDriver    string // sqlite, redis or memory
	SQLitePath     string
	RedisURI       string
	EncryptionKey  string // Optional base64 key for at-rest encryption of stored records
	SessionID      string // Scopes guest history; a fresh one is generated when empty
	LogLevel       string
	Environment    string // ENV: production, development, etc.
	ViewportHeight int    // Rows available for history; 0 means ask the terminal
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	apiURL := getEnv("VENT_API_URL", getEnv("NEXT_PUBLIC_API_URL", "http://localhost:8080"))
	apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")

	driver := strings.ToLower(strings.TrimSpace(getEnv("STORE_DRIVER", StoreSQLite)))
	switch driver {
	case StoreSQLite, StoreRedis, StoreMemory:
	default:
		driver = StoreSQLite
	}

	return &Config{
		APIURL:         apiURL,
		APITimeout:     getEnvDuration("API_TIMEOUT", 10*time.Second),
		APIRPS:         getEnvFloat("API_RPS", 1),
		APIBurst:       getEnvInt("API_BURST", 10),
		StoreDriver:    driver,
		SQLitePath:     getEnv("SQLITE_PATH", "vent.db"),
		RedisURI:       getEnv("REDIS_URI", "redis://localhost:6379/0"),
		EncryptionKey:  getEnv("ENCRYPTION_KEY", ""),
		SessionID:      getEnv("VENT_SESSION_ID", ""),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Environment:    env,
		ViewportHeight: getEnvInt("VIEWPORT_HEIGHT", 0),
	}
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil && v >= 0 {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil && v >= 0 {
		return v
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("15s") or whole seconds ("15").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
