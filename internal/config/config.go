package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/localrivet/configurator"
	"github.com/localrivet/gomcp/logx"
)

// Global configuration instance
var (
	// Global is the global configuration instance
	Global *Config
	// initOnce ensures initialization happens only once
	initOnce sync.Once
)

// InitGlobal initializes the global configuration
func InitGlobal(configPath string) (*Config, error) {
	var err error
	initOnce.Do(func() {
		Global, err = LoadConfigWithPath(configPath)
	})
	return Global, err
}

// Config represents the NetSummary configuration
type Config struct {
	// Backend contains model-backend configuration.
	Backend struct {
		// Variant selects the backend protocol ("completion", "conversational").
		Variant string `json:"variant" env:"BACKEND_VARIANT" validate:"required"`

		// Host is the completion backend host.
		Host string `json:"host" env:"BACKEND_HOST"`

		// Port is the completion backend port. Zero omits the port from the URL.
		Port int `json:"port" env:"BACKEND_PORT"`

		// APIBase is the conversational endpoint prefix.
		APIBase string `json:"api_base" env:"BACKEND_API_BASE"`

		// Model is the conversational model identifier appended to APIBase.
		Model string `json:"model" env:"BACKEND_MODEL"`

		// APIKey is the bearer token for the conversational backend.
		APIKey string `json:"api_key" env:"BACKEND_API_KEY"`

		// SystemPreamble overrides the default role preamble when set.
		SystemPreamble string `json:"system_preamble" env:"BACKEND_SYSTEM_PREAMBLE"`

		// MaxOutputTokens caps the generated summary length. Zero uses the
		// variant default.
		MaxOutputTokens int `json:"max_output_tokens" env:"BACKEND_MAX_OUTPUT_TOKENS"`

		// TimeoutSeconds bounds a single backend request.
		TimeoutSeconds int `json:"timeout_seconds" env:"BACKEND_TIMEOUT_SECONDS" validate:"min:1"`
	} `json:"backend"`

	// Chunker contains input splitting configuration.
	Chunker struct {
		// Policy selects the splitting strategy ("word-wrap", "fixed-window").
		// Empty uses the variant default.
		Policy string `json:"policy" env:"CHUNKER_POLICY"`

		// MaxChunkLen is the per-chunk size bound in characters. Zero uses
		// the variant default.
		MaxChunkLen int `json:"max_chunk_len" env:"CHUNKER_MAX_CHUNK_LEN"`
	} `json:"chunker"`

	// Store contains summary-cache configuration.
	Store struct {
		// Driver selects the cache backing ("memory", "sqlite").
		Driver string `json:"driver" env:"STORE_DRIVER" validate:"required"`

		// SQLitePath is the database file used by the sqlite driver.
		SQLitePath string `json:"sqlite_path" env:"STORE_SQLITE_PATH"`
	} `json:"store"`

	// Logging contains logging-related configuration.
	Logging struct {
		// Level is the minimum log level to display ("debug", "info", "warn", "error").
		Level string `json:"level" env:"LOG_LEVEL" validate:"required"`

		// Format is the log format to use ("text", "json").
		Format string `json:"format" env:"LOG_FORMAT"`
	} `json:"logging"`

	// Internal state (not saved to config file)
	configPath     string       `json:"-"`
	mutex          sync.RWMutex `json:"-"`
	lastModifiedAt time.Time    `json:"-"`
}

// Default configuration values
const (
	DefaultConfigFilename = ".netsummaryconfig"
	DefaultBackendVariant = "completion"
	DefaultBackendHost    = "localhost"
	DefaultBackendPort    = 8080
	DefaultTimeoutSeconds = 30
	DefaultStoreDriver    = "memory"
	DefaultSQLitePath     = ".netsummary.db"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// NewConfig creates a new Config instance with default values
func NewConfig() *Config {
	config := &Config{}
	config.Backend.Variant = DefaultBackendVariant
	config.Backend.Host = DefaultBackendHost
	config.Backend.Port = DefaultBackendPort
	config.Backend.TimeoutSeconds = DefaultTimeoutSeconds
	config.Store.Driver = DefaultStoreDriver
	config.Store.SQLitePath = DefaultSQLitePath
	config.Logging.Level = DefaultLogLevel
	config.Logging.Format = DefaultLogFormat
	return config
}

// LoadConfig loads the configuration from the default path
func LoadConfig() (*Config, error) {
	return LoadConfigWithPath(DefaultConfigFilename)
}

// LoadConfigWithPath loads the configuration from a specific path
func LoadConfigWithPath(configPath string) (*Config, error) {
	// Create a default logger for configuration loading
	stdLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Create default configuration
	cfg := NewConfig()

	// Try to find config file if path is default
	if configPath == DefaultConfigFilename {
		foundPath, err := configurator.FindConfigFile(configPath)
		if err == nil {
			configPath = foundPath
			stdLogger.Debug("Found config file at " + foundPath)
		}
	}

	// Check if the file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// File doesn't exist, return default config
		stdLogger.Info("Config file not found, using default configuration", "path", configPath)
		cfg.configPath = configPath
		cfg.lastModifiedAt = time.Now()
		return cfg, nil
	}

	stdLogger.Info("Loading configuration", "path", configPath)

	// Create configurator instance
	config := configurator.New(stdLogger).
		WithProvider(configurator.NewDefaultProvider()).
		WithProvider(configurator.NewFileProvider(configPath)).
		WithProvider(configurator.NewEnvProvider("NETSUMMARY")).
		WithValidator(configurator.NewDefaultValidator())

	// Load configuration
	ctx := context.Background()
	if err := config.Load(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Store the config path for future operations
	cfg.configPath = configPath
	cfg.lastModifiedAt = time.Now()

	return cfg, nil
}

// SaveToFile saves the configuration to the specified file
func (c *Config) SaveToFile(path string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	// Create directory if needed
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Save using configurator's SaveToFile function
	if err := configurator.SaveToFile(c, path, configurator.FormatJSON); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	// Update internal state
	c.configPath = path
	c.lastModifiedAt = time.Now()

	return nil
}

// Save saves the configuration to the last used file path
func (c *Config) Save() error {
	if c.configPath == "" {
		c.configPath = DefaultConfigFilename
	}
	return c.SaveToFile(c.configPath)
}

// GetConfigPath returns the path of the currently loaded configuration file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// GetLoggerFromConfig creates a gomcp logx.Logger based on the configuration
func GetLoggerFromConfig(cfg *Config) logx.Logger {
	return logx.NewLogger(cfg.Logging.Level)
}
