// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	OAuth    OAuthConfig
	Storage  StorageConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
	// BaseURL is the public origin of this deployment, e.g. https://folllow.link
	BaseURL string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// DatabaseConfig holds persistence configuration.
type DatabaseConfig struct {
	// Path to the SQLite database file. Defaults to {data}/folllow.db.
	Path string
	// DataDir is the base directory for server state.
	DataDir string
}

// AuthConfig holds session token configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key for session tokens (32 bytes, hex-encoded).
	SessionKeyHex string
	// SessionDuration is the lifetime of a session token (default: 720h).
	SessionDuration time.Duration
}

// OAuthConfig holds sign-in provider configuration.
type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	// RedirectURL defaults to {BaseURL}/api/v1/auth/callback/google.
	RedirectURL string
}

// StorageConfig holds object storage configuration for avatar uploads.
type StorageConfig struct {
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	// Endpoint overrides the S3 endpoint (e.g. for MinIO). Empty = AWS.
	Endpoint string
	// PublicHost is the host public object URLs are derived from,
	// e.g. https://folllow-avatars.s3.eu-west-3.amazonaws.com
	PublicHost string
	// PresignTTL is how long an issued upload descriptor stays valid.
	PresignTTL time.Duration
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	// Define command-line flags.
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	baseURL := flag.String("base-url", "", "Public origin of this deployment")
	dataDir := flag.String("data-dir", "", "Base directory for server state")
	dbPath := flag.String("db-path", "", "Path to the SQLite database file")

	// Server flags
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	// Auth flags
	sessionDuration := flag.String("session-duration", "", "Session token lifetime (e.g., 720h)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	// Parse flags but don't exit on error - we want to handle it gracefully.
	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	// Build config with proper precedence.
	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
			BaseURL:     getConfigValue(*baseURL, "BASE_URL", "http://localhost:8080"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			DataDir: getConfigValue(*dataDir, "DATA_DIR", ""),
			Path:    getConfigValue(*dbPath, "DB_PATH", ""),
		},
		Auth: AuthConfig{
			SessionKeyHex: getConfigValue("", "SESSION_KEY", ""),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     getConfigValue("", "GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getConfigValue("", "GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:        getConfigValue("", "GOOGLE_REDIRECT_URL", ""),
		},
		Storage: StorageConfig{
			Bucket:     getConfigValue("", "STORAGE_BUCKET", ""),
			Region:     getConfigValue("", "STORAGE_REGION", "eu-west-3"),
			AccessKey:  getConfigValue("", "STORAGE_ACCESS_KEY", ""),
			SecretKey:  getConfigValue("", "STORAGE_SECRET_KEY", ""),
			Endpoint:   getConfigValue("", "STORAGE_ENDPOINT", ""),
			PublicHost: getConfigValue("", "STORAGE_PUBLIC_HOST", ""),
		},
	}

	// Parse session duration.
	sessionDurationStr := getConfigValue(*sessionDuration, "SESSION_DURATION", "720h")
	parsedSession, err := time.ParseDuration(sessionDurationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid session duration %q: %w", sessionDurationStr, err)
	}
	cfg.Auth.SessionDuration = parsedSession

	// Parse presign TTL.
	presignTTLStr := getConfigValue("", "STORAGE_PRESIGN_TTL", "15m")
	parsedTTL, err := time.ParseDuration(presignTTLStr)
	if err != nil {
		return nil, fmt.Errorf("invalid presign TTL %q: %w", presignTTLStr, err)
	}
	cfg.Storage.PresignTTL = parsedTTL

	// Parse server timeouts.
	readTimeoutStr := getConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s")
	readTimeoutDuration, err := time.ParseDuration(readTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid read timeout %q: %w", readTimeoutStr, err)
	}
	cfg.Server.ReadTimeout = readTimeoutDuration

	writeTimeoutStr := getConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s")
	writeTimeoutDuration, err := time.ParseDuration(writeTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid write timeout %q: %w", writeTimeoutStr, err)
	}
	cfg.Server.WriteTimeout = writeTimeoutDuration

	idleTimeoutStr := getConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s")
	idleTimeoutDuration, err := time.ParseDuration(idleTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid idle timeout %q: %w", idleTimeoutStr, err)
	}
	cfg.Server.IdleTimeout = idleTimeoutDuration

	// Expand and validate the data directory, then derive the database path.
	if err := cfg.expandDataDir(); err != nil {
		return nil, fmt.Errorf("invalid data dir: %w", err)
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = filepath.Join(cfg.Database.DataDir, "folllow.db")
	}

	// Default the OAuth redirect URL from the base URL.
	if cfg.OAuth.RedirectURL == "" {
		cfg.OAuth.RedirectURL = cfg.App.BaseURL + "/api/v1/auth/callback/google"
	}

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Database.DataDir == "" {
		return errors.New("data dir cannot be empty after expansion")
	}

	// OAuth and storage credentials may be empty in development; the affected
	// features degrade (sign-in disabled, uploads disabled) rather than fail boot.

	return nil
}

// expandDataDir expands ~ and makes the path absolute.
// Defaults to ~/Folllow if not specified.
func (c *Config) expandDataDir() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "Folllow")

	expanded, err := expandPath(c.Database.DataDir, defaultPath)
	if err != nil {
		return err
	}
	c.Database.DataDir = expanded
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
