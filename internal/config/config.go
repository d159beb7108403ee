package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/JaimeStill/loadextract/pkg/database"
	"github.com/JaimeStill/loadextract/pkg/storage"
	"github.com/pelletier/go-toml/v2"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvLoadExtractEnv  = "LOADEXTRACT_ENV"
	EnvShutdownTimeout = "LOADEXTRACT_SHUTDOWN_TIMEOUT"
	EnvVersion         = "LOADEXTRACT_VERSION"
	EnvLogLevel        = "LOADEXTRACT_LOG_LEVEL"
)

var databaseEnv = &database.Env{
	Host:            "LOADEXTRACT_DB_HOST",
	Port:            "LOADEXTRACT_DB_PORT",
	Name:            "LOADEXTRACT_DB_NAME",
	User:            "LOADEXTRACT_DB_USER",
	Password:        "LOADEXTRACT_DB_PASSWORD",
	SSLMode:         "LOADEXTRACT_DB_SSL_MODE",
	MaxOpenConns:    "LOADEXTRACT_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "LOADEXTRACT_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "LOADEXTRACT_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "LOADEXTRACT_DB_CONN_TIMEOUT",
	ApplicationName: "LOADEXTRACT_DB_APPLICATION_NAME",
}

var storageEnv = &storage.Env{
	Provider:         "LOADEXTRACT_STORAGE_PROVIDER",
	Root:             "LOADEXTRACT_UPLOAD_ROOT",
	ContainerName:    "LOADEXTRACT_STORAGE_CONTAINER_NAME",
	ConnectionString: "LOADEXTRACT_STORAGE_CONNECTION_STRING",
}

// Config is the root configuration for the extraction worker.
type Config struct {
	Server          ServerConfig     `toml:"server"`
	Database        database.Config  `toml:"database"`
	Storage         storage.Config   `toml:"storage"`
	Worker          WorkerConfig     `toml:"worker"`
	Extraction      ExtractionConfig `toml:"extraction"`
	Learning        LearningConfig   `toml:"learning"`
	Events          EventsConfig     `toml:"events"`
	API             APIConfig        `toml:"api"`
	ShutdownTimeout string           `toml:"shutdown_timeout"`
	Version         string           `toml:"version"`
	LogLevel        string           `toml:"log_level"`
}

// Env returns the LOADEXTRACT_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvLoadExtractEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Level returns LogLevel as a slog.Level.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Worker.Merge(&overlay.Worker)
	c.Extraction.Merge(&overlay.Extraction)
	c.Learning.Merge(&overlay.Learning)
	c.Events.Merge(&overlay.Events)
	c.API.Merge(&overlay.API)
}

// Finalize applies defaults, environment overrides, and validation to the
// root config and every section.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Worker.Finalize(); err != nil {
		return fmt.Errorf("worker: %w", err)
	}
	if err := c.Extraction.Finalize(); err != nil {
		return fmt.Errorf("extraction: %w", err)
	}
	if err := c.Learning.Finalize(); err != nil {
		return fmt.Errorf("learning: %w", err)
	}
	if err := c.Events.Finalize(); err != nil {
		return fmt.Errorf("events: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return c.validateStaleness()
}

// validateStaleness requires the stale window to outlast the longest OCR
// stage a live worker can run: ocrmypdf, pdftoppm, then tesseract per page.
func (c *Config) validateStaleness() error {
	worst := time.Duration(c.Extraction.MaxPages+2) * c.Extraction.OCRTimeout()
	if stale := c.Worker.StaleAfter(); stale <= worst {
		return fmt.Errorf(
			"worker: stale_minutes (%v) must exceed worst-case OCR time %v ((max_pages+2) x ocr_timeout)",
			stale, worst,
		)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvLoadExtractEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
