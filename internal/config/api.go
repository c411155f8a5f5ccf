package config

import (
	"fmt"
	"os"
	"time"

	"causemap/pkg/formatting"
	"causemap/pkg/middleware"
	"causemap/pkg/pagination"
)

// APIConfig holds API surface settings: upload bounds, review lifetime,
// pagination, CORS, and prompt template overrides.
type APIConfig struct {
	MaxUploadSize string                `toml:"max_upload_size"`
	ReviewTTL     string                `toml:"review_ttl"`
	PromptDir     string                `toml:"prompt_dir"`
	Pagination    pagination.Config     `toml:"pagination"`
	CORS          middleware.CORSConfig `toml:"cors"`
}

// MaxUploadBytes returns MaxUploadSize as a byte count.
func (c *APIConfig) MaxUploadBytes() int64 {
	n, _ := formatting.ParseBytes(c.MaxUploadSize)
	return n
}

// ReviewTTLDuration returns ReviewTTL as a time.Duration.
func (c *APIConfig) ReviewTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.ReviewTTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.Pagination.Finalize(&pagination.ConfigEnv{
		DefaultPageSize: "CAUSEMAP_API_DEFAULT_PAGE_SIZE",
		MaxPageSize:     "CAUSEMAP_API_MAX_PAGE_SIZE",
	}); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}

	if err := c.CORS.Finalize(&middleware.CORSEnv{
		Enabled:          "CAUSEMAP_CORS_ENABLED",
		Origins:          "CAUSEMAP_CORS_ORIGINS",
		AllowedMethods:   "CAUSEMAP_CORS_METHODS",
		AllowedHeaders:   "CAUSEMAP_CORS_HEADERS",
		AllowCredentials: "CAUSEMAP_CORS_CREDENTIALS",
		MaxAge:           "CAUSEMAP_CORS_MAX_AGE",
	}); err != nil {
		return fmt.Errorf("cors: %w", err)
	}

	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	if overlay.ReviewTTL != "" {
		c.ReviewTTL = overlay.ReviewTTL
	}
	if overlay.PromptDir != "" {
		c.PromptDir = overlay.PromptDir
	}
	c.Pagination.Merge(&overlay.Pagination)
	c.CORS.Merge(&overlay.CORS)
}

func (c *APIConfig) loadDefaults() {
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "25MB"
	}
	if c.ReviewTTL == "" {
		c.ReviewTTL = "1h"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("CAUSEMAP_API_MAX_UPLOAD_SIZE"); v != "" {
		c.MaxUploadSize = v
	}
	if v := os.Getenv("CAUSEMAP_API_REVIEW_TTL"); v != "" {
		c.ReviewTTL = v
	}
	if v := os.Getenv("CAUSEMAP_API_PROMPT_DIR"); v != "" {
		c.PromptDir = v
	}
}

func (c *APIConfig) validate() error {
	if _, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if _, err := time.ParseDuration(c.ReviewTTL); err != nil {
		return fmt.Errorf("invalid review_ttl: %w", err)
	}
	return nil
}
