package extraction

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the vision model endpoint settings.
type Config struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	RequestTimeout string `toml:"request_timeout"`
	// JSONMode requests structured JSON output from endpoints that support it.
	JSONMode bool `toml:"json_mode"`
}

// RequestTimeoutDuration returns RequestTimeout as a time.Duration.
func (c *Config) RequestTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RequestTimeout)
	return d
}

// Finalize applies defaults, overlays environment variables, and validates
// the configuration.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overlays non-zero values from o onto c.
func (c *Config) Merge(o *Config) {
	if o == nil {
		return
	}
	if o.BaseURL != "" {
		c.BaseURL = o.BaseURL
	}
	if o.APIKey != "" {
		c.APIKey = o.APIKey
	}
	if o.Model != "" {
		c.Model = o.Model
	}
	if o.RequestTimeout != "" {
		c.RequestTimeout = o.RequestTimeout
	}
	if o.JSONMode {
		c.JSONMode = true
	}
}

func (c *Config) loadDefaults() {
	if c.Model == "" {
		c.Model = "gpt-4o"
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = "60s"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv("CAUSEMAP_EXTRACTION_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("CAUSEMAP_EXTRACTION_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("CAUSEMAP_EXTRACTION_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("CAUSEMAP_EXTRACTION_TIMEOUT"); v != "" {
		c.RequestTimeout = v
	}
	if v := os.Getenv("CAUSEMAP_EXTRACTION_JSON_MODE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.JSONMode = b
		}
	}
}

func (c *Config) validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("extraction api key is required")
	}
	if c.Model == "" {
		return fmt.Errorf("extraction model is required")
	}
	if d, err := time.ParseDuration(c.RequestTimeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid request_timeout: %q", c.RequestTimeout)
	}
	return nil
}
