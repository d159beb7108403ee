package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/loadextract/pkg/formatting"
	"github.com/JaimeStill/loadextract/pkg/pagination"
)

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "LOADEXTRACT_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "LOADEXTRACT_PAGINATION_MAX_PAGE_SIZE",
}

const (
	EnvAPIBasePath    = "LOADEXTRACT_API_BASE_PATH"
	EnvAPIMaxBodySize = "LOADEXTRACT_API_MAX_BODY_SIZE"
)

// APIConfig holds ops API routing, request size, and pagination settings.
type APIConfig struct {
	BasePath    string            `toml:"base_path"`
	MaxBodySize string            `toml:"max_body_size"`
	Pagination  pagination.Config `toml:"pagination"`
}

// MaxBodySizeBytes returns MaxBodySize parsed into bytes.
func (c *APIConfig) MaxBodySizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxBodySize)
	if err != nil {
		return 2 * 1024 * 1024
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested pagination config.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if _, err := formatting.ParseBytes(c.MaxBodySize); err != nil {
		return fmt.Errorf("invalid max_body_size: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxBodySize != "" {
		c.MaxBodySize = overlay.MaxBodySize
	}
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "2MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxBodySize); v != "" {
		c.MaxBodySize = v
	}
}
