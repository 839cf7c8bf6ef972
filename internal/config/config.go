// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App        AppConfig
	Logger     LoggerConfig
	Server     ServerConfig
	Database   DatabaseConfig
	Storage    StorageConfig
	Cloudinary CloudinaryConfig
	Auth       AuthConfig
	WhatsApp   WhatsAppConfig
	Admin      AdminConfig
	RateLimit  RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 30s)
	WriteTimeout time.Duration // HTTP write timeout (default: 60s, uploads are slow)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
	// PublicURL is where the web client lives; share pages redirect there.
	PublicURL string
	// ShareBaseURL prefixes share links sent in WhatsApp messages.
	ShareBaseURL string
	// MediaBaseURL prefixes locally stored media URLs. Defaults to ShareBaseURL.
	MediaBaseURL string
	CORSOrigins  []string
}

// DatabaseConfig selects and configures the store backend.
type DatabaseConfig struct {
	Driver   string // sqlite or postgres
	Path     string // SQLite file (default: {data}/link.db)
	URL      string // PostgreSQL connection URL
	MaxConns int
}

// StorageConfig holds on-disk storage configuration.
type StorageConfig struct {
	DataPath      string
	MediaDir      string // default: {data}/media
	MaxUploadSize int64  // per file, bytes
}

// CloudinaryConfig holds the optional CDN credentials.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Enabled reports whether all credentials are present.
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key for access tokens (32 bytes)
	AccessTokenKey      []byte
	AccessTokenDuration time.Duration // e.g., 720h
}

// WhatsAppConfig holds the Graph API broadcast settings.
type WhatsAppConfig struct {
	AccessToken      string
	PhoneNumberID    string
	APIVersion       string
	TemplateName     string
	TemplateLanguage string
	GraphBaseURL     string
	Recipients       []string
}

// Enabled reports whether broadcasts can be sent.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != ""
}

// AdminConfig lists who may read admin statistics.
type AdminConfig struct {
	UserIDs         []string
	WhatsAppNumbers []string
}

// RateLimitConfig holds per-IP API rate limiting. Zero RPS disables it.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load is LoadConfig with explicit command-line arguments.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("link-server", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	// Server flags
	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 30s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 60s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	publicURL := fs.String("public-url", "", "Web client URL")
	shareBaseURL := fs.String("share-base-url", "", "Base URL for share links")

	// Storage flags
	dbDriver := fs.String("db-driver", "", "Store backend: sqlite or postgres (default: sqlite)")
	dbPath := fs.String("db-path", "", "SQLite database file")
	dbURL := fs.String("database-url", "", "PostgreSQL connection URL")
	dataPath := fs.String("data-path", "", "Base path for server data")
	mediaDir := fs.String("media-dir", "", "Directory for locally stored media")

	accessTokenDuration := fs.String("access-token-duration", "", "Access token lifetime (e.g., 720h)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists. Variables already in the environment win.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %w", *envFile, err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:         getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			PublicURL:    strings.TrimRight(getConfigValue(*publicURL, "PUBLIC_URL", "http://localhost:3000"), "/"),
			ShareBaseURL: strings.TrimRight(getConfigValue(*shareBaseURL, "SHARE_BASE_URL", ""), "/"),
			MediaBaseURL: strings.TrimRight(getConfigValue("", "MEDIA_BASE_URL", ""), "/"),
			CORSOrigins:  getListConfigValue("CORS_ORIGINS"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getConfigValue(*dbDriver, "DB_DRIVER", "sqlite")),
			Path:     getConfigValue(*dbPath, "DB_PATH", ""),
			URL:      getConfigValue(*dbURL, "DATABASE_URL", ""),
			MaxConns: getIntConfigValue("", "DB_MAX_CONNS", 10),
		},
		Storage: StorageConfig{
			DataPath:      getConfigValue(*dataPath, "DATA_PATH", ""),
			MediaDir:      getConfigValue(*mediaDir, "MEDIA_DIR", ""),
			MaxUploadSize: int64(getIntConfigValue("", "MAX_UPLOAD_MB", 50)) << 20,
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getConfigValue("", "CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getConfigValue("", "CLOUDINARY_API_KEY", ""),
			APISecret: getConfigValue("", "CLOUDINARY_API_SECRET", ""),
			Folder:    getConfigValue("", "CLOUDINARY_FOLDER", "link"),
		},
		Auth: AuthConfig{
			AccessTokenKey: nil, // Will be set by auth.LoadOrGenerateKey in the DI container
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:      getConfigValue("", "WHATSAPP_ACCESS_TOKEN", ""),
			PhoneNumberID:    getConfigValue("", "WHATSAPP_PHONE_NUMBER_ID", ""),
			APIVersion:       getConfigValue("", "WHATSAPP_API_VERSION", "v21.0"),
			TemplateName:     getConfigValue("", "WHATSAPP_TEMPLATE_NAME", ""),
			TemplateLanguage: getConfigValue("", "WHATSAPP_TEMPLATE_LANGUAGE", "fr"),
			GraphBaseURL:     getConfigValue("", "WHATSAPP_GRAPH_BASE_URL", "https://graph.facebook.com"),
			Recipients:       getListConfigValue("WHATSAPP_BROADCAST_RECIPIENTS"),
		},
		Admin: AdminConfig{
			UserIDs:         getListConfigValue("ADMIN_USER_IDS"),
			WhatsAppNumbers: getListConfigValue("ADMIN_WHATSAPP_NUMBERS"),
		},
		RateLimit: RateLimitConfig{
			RPS:   getFloatConfigValue("RATE_LIMIT_RPS", 20),
			Burst: getIntConfigValue("", "RATE_LIMIT_BURST", 40),
		},
	}

	var err error
	if cfg.Auth.AccessTokenDuration, err = getDurationConfigValue(*accessTokenDuration, "ACCESS_TOKEN_DURATION", "720h"); err != nil {
		return nil, err
	}
	if cfg.Server.ReadTimeout, err = getDurationConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}

	if cfg.Server.ShareBaseURL == "" {
		cfg.Server.ShareBaseURL = "http://localhost:" + cfg.Server.Port
	}
	if cfg.Server.MediaBaseURL == "" {
		cfg.Server.MediaBaseURL = cfg.Server.ShareBaseURL
	}

	if err := cfg.expandStoragePaths(); err != nil {
		return nil, fmt.Errorf("invalid storage path: %w", err)
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

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("sqlite database path cannot be empty after expansion")
		}
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid database driver: %s (must be sqlite or postgres)", c.Database.Driver)
	}

	if c.Storage.MediaDir == "" {
		return errors.New("media directory cannot be empty after expansion")
	}
	if c.Storage.MaxUploadSize <= 0 {
		return errors.New("MAX_UPLOAD_MB must be positive")
	}

	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		return errors.New("rate limit values cannot be negative")
	}

	if c.WhatsApp.Enabled() && len(c.WhatsApp.Recipients) == 0 {
		return errors.New("WHATSAPP_BROADCAST_RECIPIENTS is required when WhatsApp credentials are set")
	}

	// Auth key is set by auth.LoadOrGenerateKey in the DI container.

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

// expandStoragePaths resolves the data directory and the paths derived from it.
func (c *Config) expandStoragePaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	if c.Storage.DataPath, err = expandPath(c.Storage.DataPath, filepath.Join(homeDir, "Link", "data")); err != nil {
		return err
	}
	if c.Storage.MediaDir, err = expandPath(c.Storage.MediaDir, filepath.Join(c.Storage.DataPath, "media")); err != nil {
		return err
	}
	if c.Database.Driver == "sqlite" {
		if c.Database.Path, err = expandPath(c.Database.Path, filepath.Join(c.Storage.DataPath, "link.db")); err != nil {
			return err
		}
	}
	return nil
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

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strings.TrimSpace(strValue))
	if err != nil {
		return defaultValue
	}
	return result
}

func getFloatConfigValue(envKey string, defaultValue float64) float64 {
	strValue := getConfigValue("", envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.ParseFloat(strings.TrimSpace(strValue), 64)
	if err != nil {
		return defaultValue
	}
	return result
}

func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), strValue, err)
	}
	return d, nil
}

// getListConfigValue splits a comma-separated env var, dropping blanks.
func getListConfigValue(envKey string) []string {
	var out []string
	for part := range strings.SplitSeq(os.Getenv(envKey), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
