package storage

import (
	"fmt"
	"os"
)

// Config holds the blob storage settings for the image archive.
type Config struct {
	ConnectionString string `toml:"connection_string"`
	ContainerName    string `toml:"container_name"`
}

// Finalize applies defaults, overlays environment variables, and validates
// the configuration.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overlays non-empty values from o onto c.
func (c *Config) Merge(o *Config) {
	if o == nil {
		return
	}
	if o.ConnectionString != "" {
		c.ConnectionString = o.ConnectionString
	}
	if o.ContainerName != "" {
		c.ContainerName = o.ContainerName
	}
}

func (c *Config) loadDefaults() {
	if c.ContainerName == "" {
		c.ContainerName = "diagrams"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv("CAUSEMAP_STORAGE_CONNECTION_STRING"); v != "" {
		c.ConnectionString = v
	}
	if v := os.Getenv("CAUSEMAP_STORAGE_CONTAINER"); v != "" {
		c.ContainerName = v
	}
}

func (c *Config) validate() error {
	if c.ConnectionString == "" {
		return fmt.Errorf("storage connection string is required")
	}
	if c.ContainerName == "" {
		return fmt.Errorf("storage container name is required")
	}
	return nil
}
