package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Collapse store backends
const (
	CollapseStoreMemory = "memory"
	CollapseStoreSQLite = "sqlite"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	TablePrefix string
	CORSOrigins string

	// Auth
	SupabaseURL  string
	JWKSURL      string // Constructed from SupabaseURL + /auth/v1/.well-known/jwks.json
	AuthDisabled bool   // Dev only: every request runs as DevUserID
	DevUserID    string

	// Tree
	ReorderDebounce    time.Duration
	ReorderSendTimeout time.Duration
	CollapseStore      string // memory | sqlite
	SQLitePath         string

	// Logging
	LogDir      string // Empty disables file logging
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	supabaseURL := strings.TrimRight(getEnv("SUPABASE_URL", ""), "/")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", getEnv("SUPABASE_DB_URL", "")),
		TablePrefix: getTablePrefix(env),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),

		SupabaseURL:  supabaseURL,
		JWKSURL:      supabaseURL + "/auth/v1/.well-known/jwks.json",
		AuthDisabled: getEnvBool("AUTH_DISABLED", false),
		DevUserID:    getEnv("DEV_USER_ID", "00000000-0000-0000-0000-000000000001"),

		ReorderDebounce:    getEnvDuration("REORDER_DEBOUNCE", 300*time.Millisecond),
		ReorderSendTimeout: getEnvDuration("REORDER_SEND_TIMEOUT", 10*time.Second),
		CollapseStore:      strings.ToLower(getEnv("COLLAPSE_STORE", CollapseStoreMemory)),
		SQLitePath:         getEnv("SQLITE_PATH", "collapse.db"),

		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getEnvInt("LOG_MAX_FILES", 10),
	}
}

// Validate reports settings that would make the server fail later
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.AuthDisabled && c.Environment == "prod" {
		return fmt.Errorf("AUTH_DISABLED is not allowed in prod")
	}
	if !c.AuthDisabled && c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required unless AUTH_DISABLED=true")
	}
	switch c.CollapseStore {
	case CollapseStoreMemory, CollapseStoreSQLite:
	default:
		return fmt.Errorf("COLLAPSE_STORE must be %q or %q, got %q", CollapseStoreMemory, CollapseStoreSQLite, c.CollapseStore)
	}
	return nil
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

// getEnvDuration accepts Go durations ("300ms") or bare milliseconds ("300")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}
