package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	StoreDriver  string // Optional: token store driver (sqlite, postgres) (default: sqlite)
	DatabaseFile string // Optional: path to SQLite database file (default: ./auth.db)
	DatabaseURL  string // Required for postgres: connection string
	InstanceUUID string // Optional: platform instance identifier (default: generated at boot)

	DefaultExpiration time.Duration // Optional: token lifetime when the request omits it (default: 2h)
	MaxExpiration     time.Duration // Optional: largest accepted token lifetime (default: 10 days)
	DefaultBackend    string        // Optional: backend used when the request omits it (default: stock)
	BackendsFile      string        // Optional: YAML backend configuration (default: ./backends.yml)
	TenantsFile       string        // Optional: YAML tenant seed applied at boot
	PepperFile        string        // Optional: path to file containing pepper for password hashing (default: ./pepper)
	BackendTimeout    time.Duration // Optional: deadline for one backend call including retries (default: 5s)
	BackendRetries    int           // Optional: transport retries per backend call (default: 2)

	TokenCache     bool  // Optional: enable the in-process token cache (default: false)
	TokenCacheSize int64 // Optional: cache capacity in tokens (default: 100000)

	Env                   string        // Environment (dev, staging, prod) (default: dev)
	LogLevel              string        // Log level (debug, info, warn, error) (default: info)
	LogFormat             string        // Log format (json, text) (default: json)
	Port                  int           // HTTP server port (default: 8080)
	ShutdownGracePeriod   time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval  time.Duration // Housekeeping interval (default: 1h)
	TenantRefreshInterval time.Duration // Tenant index reload interval (default: 30s)
	RefreshTokenRetention time.Duration // Refresh tokens older than this are removed; 0 keeps them (default: 0)
}

func LoadConfig() Config {
	return Config{
		StoreDriver:  strings.ToLower(getEnvOrDefault("AUTH_STORE_DRIVER", "sqlite")),
		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		DatabaseURL:  os.Getenv("AUTH_DATABASE_URL"),
		InstanceUUID: os.Getenv("AUTH_INSTANCE_UUID"),

		DefaultExpiration: time.Duration(getEnvIntOrDefault("AUTH_DEFAULT_EXPIRATION", 7200)) * time.Second,
		MaxExpiration:     time.Duration(getEnvIntOrDefault("AUTH_MAX_EXPIRATION", 864000)) * time.Second,
		DefaultBackend:    getEnvOrDefault("AUTH_DEFAULT_BACKEND", "stock"),
		BackendsFile:      getEnvOrDefault("AUTH_BACKENDS_FILE", "backends.yml"),
		TenantsFile:       os.Getenv("AUTH_TENANTS_FILE"),
		PepperFile:        getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		BackendTimeout:    getEnvDurationOrDefault("AUTH_BACKEND_TIMEOUT", 5*time.Second),
		BackendRetries:    getEnvIntOrDefault("AUTH_BACKEND_RETRIES", 2),

		TokenCache:     getEnvBoolOrDefault("AUTH_TOKEN_CACHE", false),
		TokenCacheSize: int64(getEnvIntOrDefault("AUTH_TOKEN_CACHE_SIZE", 100_000)),

		Env:                   getEnvOrDefault("ENV", "dev"),
		LogLevel:              getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:             getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                  getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:   getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval:  getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		TenantRefreshInterval: getEnvDurationOrDefault("TENANT_REFRESH_INTERVAL", 30*time.Second),
		RefreshTokenRetention: getEnvDurationOrDefault("REFRESH_TOKEN_RETENTION", 0),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
