package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Port         string
	DataDir      string // directory for the local snapshot cache
	DatabasePath string // SQLite file holding user accounts

	// Remote data gateway (upstream REST API)
	RemoteAPIURL   string
	RemoteAPIToken string
	RemoteRate     float64 // outbound requests/second toward the upstream API

	// Auth
	JWTSecret string

	// Sync policy file (per-entity persistence configuration, hot-reloaded)
	SyncPolicyPath string

	// Housekeeping
	SnapshotInterval      time.Duration
	NotificationRetention time.Duration

	// Table pagination
	PageSize int
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "3001"),
		DataDir:      getEnv("DATA_DIR", "./data"),
		DatabasePath: getEnv("DATABASE_PATH", "./data/studiodesk.db"),

		RemoteAPIURL:   getEnv("REMOTE_API_URL", ""),
		RemoteAPIToken: getEnv("REMOTE_API_TOKEN", ""),
		RemoteRate:     getFloatEnv("REMOTE_API_RATE", 10),

		JWTSecret: getEnv("JWT_SECRET", ""),

		SyncPolicyPath: getEnv("SYNC_POLICY_PATH", "./sync_policy.json"),

		SnapshotInterval:      time.Duration(getIntEnv("SNAPSHOT_INTERVAL_MINUTES", 5)) * time.Minute,
		NotificationRetention: time.Duration(getIntEnv("NOTIFICATION_RETENTION_HOURS", 24)) * time.Hour,

		PageSize: getIntEnv("PAGE_SIZE", 10),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
