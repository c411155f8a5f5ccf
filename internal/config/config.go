// Package config loads the root service configuration from TOML with
// environment-specific overlays and environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"causemap/internal/extraction"
	"causemap/pkg/database"
	"causemap/pkg/storage"
)

// Config is the root service configuration.
type Config struct {
	Environment string            `toml:"environment"`
	Server      ServerConfig      `toml:"server"`
	Database    database.Config   `toml:"database"`
	Storage     storage.Config    `toml:"storage"`
	Extraction  extraction.Config `toml:"extraction"`
	API         APIConfig         `toml:"api"`
}

// Load reads the base config file, applies an environment overlay if one
// exists (config.<environment>.toml beside the base file), then finalizes
// every section. A .env file in the working directory is loaded first so env
// overrides work in local development.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	if path != "" {
		if err := readFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if env := cfg.environment(); env != "" && path != "" {
		overlayPath := overlayFor(path, env)
		if _, err := os.Stat(overlayPath); err == nil {
			overlay := &Config{}
			if err := readFile(overlayPath, overlay); err != nil {
				return nil, err
			}
			cfg.merge(overlay)
		}
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) environment() string {
	if v := os.Getenv("CAUSEMAP_ENVIRONMENT"); v != "" {
		return v
	}
	return c.Environment
}

func (c *Config) merge(overlay *Config) {
	if overlay.Environment != "" {
		c.Environment = overlay.Environment
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Extraction.Merge(&overlay.Extraction)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.Environment = c.environment()
	if c.Environment == "" {
		c.Environment = "development"
	}

	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Database.Finalize(&database.Env{
		Host:     "CAUSEMAP_DB_HOST",
		Port:     "CAUSEMAP_DB_PORT",
		Name:     "CAUSEMAP_DB_NAME",
		User:     "CAUSEMAP_DB_USER",
		Password: "CAUSEMAP_DB_PASSWORD",
		SSLMode:  "CAUSEMAP_DB_SSL_MODE",
	}); err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	if err := c.Storage.Finalize(); err != nil {
		return fmt.Errorf("storage config: %w", err)
	}

	if err := c.Extraction.Finalize(); err != nil {
		return fmt.Errorf("extraction config: %w", err)
	}

	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api config: %w", err)
	}

	return nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	return nil
}

func overlayFor(base, env string) string {
	dir := filepath.Dir(base)
	name := filepath.Base(base)
	ext := filepath.Ext(name)
	stem := name[:len(name)-len(ext)]
	return filepath.Join(dir, fmt.Sprintf("%s.%s%s", stem, env, ext))
}
