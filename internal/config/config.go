// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
	"github.com/joho/godotenv"

	customValidation "github.com/allisson/secretbroker/internal/validation"
	"github.com/allisson/secretbroker/internal/platform"
)

// Config holds all application configuration.
type Config struct {
	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// TokenTTL is the lifetime of issued tokens when the caller does not ask for one.
	TokenTTL time.Duration
	// TokenAlgorithm is the AEAD tokens are sealed with ("aes-gcm" or "chacha20-poly1305").
	TokenAlgorithm string
	// KeyGracePeriod is how long the previous token key keeps opening tokens after a rotation.
	KeyGracePeriod time.Duration
	// KeyRotationInterval is how often the server rotates the token key. Zero disables it.
	KeyRotationInterval time.Duration

	// ExecTimeout is the default delegated exec timeout. Zero means no timeout.
	ExecTimeout time.Duration
	// SecretPlaceholder is the marker replaced by the secret in exec arguments and env values.
	SecretPlaceholder string

	// BackendProvider selects the secret store ("memory" or "keeper").
	BackendProvider string
	// BackendKeeperURI is the gocloud.dev/secrets URL sealing the keeper backend.
	BackendKeeperURI string
	// BackendDirectory is where the keeper backend stores sealed files.
	BackendDirectory string

	// ApprovalCacheTTL is how long a cached approval is honored.
	ApprovalCacheTTL time.Duration

	// RevocationDBDriver selects a shared revocation registry ("postgres" or "mysql").
	// Empty keeps revocations in process memory.
	RevocationDBDriver string
	// RevocationDBConnectionString is the DSN of the shared revocation registry.
	RevocationDBConnectionString string
	// DBMaxOpenConnections is the maximum number of open connections to the database.
	DBMaxOpenConnections int
	// DBMaxIdleConnections is the maximum number of idle connections in the database pool.
	DBMaxIdleConnections int
	// DBConnMaxLifetime is the maximum amount of time a connection may be reused.
	DBConnMaxLifetime time.Duration

	// ServerHost is the host address the API server will bind to.
	ServerHost string
	// ServerPort is the port number the API server will listen on.
	ServerPort int
	// APITokenHash is the Argon2id hash of the API bearer token. Empty disables the API.
	APITokenHash string

	// RateLimitEnabled indicates whether per-client rate limiting is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second per client IP.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for rate limiting.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int
}

// Load loads configuration from environment variables and .env files.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Tokens and keys
		TokenTTL:            env.GetDuration("TOKEN_TTL_SECONDS", 60, time.Second),
		TokenAlgorithm:      env.GetString("TOKEN_ALGORITHM", "aes-gcm"),
		KeyGracePeriod:      env.GetDuration("KEY_GRACE_PERIOD_SECONDS", 300, time.Second),
		KeyRotationInterval: env.GetDuration("KEY_ROTATION_INTERVAL_SECONDS", 0, time.Second),

		// Delegated actions
		ExecTimeout:       env.GetDuration("EXEC_TIMEOUT_SECONDS", 0, time.Second),
		SecretPlaceholder: env.GetString("SECRET_PLACEHOLDER", "{{secret}}"),

		// Backend
		BackendProvider:  env.GetString("BACKEND_PROVIDER", "memory"),
		BackendKeeperURI: env.GetString("BACKEND_KEEPER_URI", ""),
		BackendDirectory: env.GetString("BACKEND_DIRECTORY", defaultSecretsDir()),

		// Approval
		ApprovalCacheTTL: env.GetDuration("APPROVAL_CACHE_TTL_SECONDS", 900, time.Second),

		// Shared revocation registry
		RevocationDBDriver:           env.GetString("REVOCATION_DB_DRIVER", ""),
		RevocationDBConnectionString: env.GetString("REVOCATION_DB_CONNECTION_STRING", ""),
		DBMaxOpenConnections:         env.GetInt("DB_MAX_OPEN_CONNECTIONS", 25),
		DBMaxIdleConnections:         env.GetInt("DB_MAX_IDLE_CONNECTIONS", 5),
		DBConnMaxLifetime:            env.GetDuration("DB_CONN_MAX_LIFETIME_MINUTES", 5, time.Minute),

		// Server configuration
		ServerHost:   env.GetString("SERVER_HOST", "127.0.0.1"),
		ServerPort:   env.GetInt("SERVER_PORT", 8080),
		APITokenHash: env.GetString("API_TOKEN_HASH", ""),

		// Rate Limiting
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "secretbroker"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),
	}
}

// Validate checks the values that would otherwise fail late, deep inside a
// command.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.TokenTTL, validation.Min(time.Second)),
		validation.Field(&c.TokenAlgorithm, validation.In("aes-gcm", "chacha20-poly1305")),
		validation.Field(&c.KeyGracePeriod, validation.Min(time.Duration(0))),
		validation.Field(&c.KeyRotationInterval, validation.Min(time.Duration(0))),
		validation.Field(&c.ExecTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.SecretPlaceholder, validation.Required, customValidation.NotBlank),
		validation.Field(&c.BackendProvider, validation.Required, validation.In("memory", "keeper")),
		validation.Field(&c.BackendKeeperURI,
			validation.When(c.BackendProvider == "keeper", validation.Required, customValidation.KeeperURI),
		),
		validation.Field(&c.BackendDirectory, validation.When(c.BackendProvider == "keeper", validation.Required)),
		validation.Field(&c.RevocationDBDriver, validation.In("postgres", "mysql")),
		validation.Field(&c.RevocationDBConnectionString,
			validation.When(c.RevocationDBDriver != "", validation.Required),
		),
	)
	return customValidation.WrapValidationError(err)
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	default:
		return "release"
	}
}

func defaultSecretsDir() string {
	p, err := platform.Detect()
	if err != nil {
		return ""
	}
	dir, err := p.SecretsDir()
	if err != nil {
		return ""
	}
	return dir
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found. The file written by setup
// in the platform config directory is loaded afterwards; godotenv never
// overrides a variable that is already set, so the nearest file wins.
func loadDotEnv() {
	if cwd, err := os.Getwd(); err == nil {
		dir := cwd
		for {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}

			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	p, err := platform.Detect()
	if err != nil {
		return
	}
	if envPath, err := p.EnvFile(); err == nil {
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
		}
	}
}
