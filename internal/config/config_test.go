package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"causemap/internal/config"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const baseConfig = `
environment = "development"

[server]
port = 9090

[database]
name = "causemap"
user = "causemap"

[storage]
connection_string = "UseDevelopmentStorage=true"

[extraction]
api_key = "test-key"
model = "gpt-4o"

[api]
max_upload_size = "10MB"
review_ttl = "30m"
`

func TestLoad(t *testing.T) {
	t.Run("base config", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, dir, "config.toml", baseConfig)

		cfg, err := config.Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.Server.Port != 9090 {
			t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Addr() != ":9090" {
			t.Errorf("Addr() = %q", cfg.Server.Addr())
		}
		if cfg.Database.Port != 5432 {
			t.Errorf("Database.Port = %d, want default 5432", cfg.Database.Port)
		}
		if cfg.API.MaxUploadBytes() != 10*1024*1024 {
			t.Errorf("MaxUploadBytes() = %d", cfg.API.MaxUploadBytes())
		}
		if cfg.API.ReviewTTLDuration() != 30*time.Minute {
			t.Errorf("ReviewTTLDuration() = %v", cfg.API.ReviewTTLDuration())
		}
		if cfg.API.Pagination.DefaultPageSize != 20 {
			t.Errorf("DefaultPageSize = %d, want default 20", cfg.API.Pagination.DefaultPageSize)
		}
	})

	t.Run("environment overlay", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, dir, "config.toml", baseConfig)
		writeConfig(t, dir, "config.development.toml", `
[server]
port = 9999

[extraction]
model = "gpt-4o-mini"
`)

		cfg, err := config.Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.Server.Port != 9999 {
			t.Errorf("Server.Port = %d, want overlay 9999", cfg.Server.Port)
		}
		if cfg.Extraction.Model != "gpt-4o-mini" {
			t.Errorf("Extraction.Model = %q, want overlay", cfg.Extraction.Model)
		}
		// untouched fields survive the overlay
		if cfg.Database.Name != "causemap" {
			t.Errorf("Database.Name = %q", cfg.Database.Name)
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("CAUSEMAP_SERVER_PORT", "7070")
		t.Setenv("CAUSEMAP_DB_PASSWORD", "secret")

		dir := t.TempDir()
		path := writeConfig(t, dir, "config.toml", baseConfig)

		cfg, err := config.Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if cfg.Server.Port != 7070 {
			t.Errorf("Server.Port = %d, want env 7070", cfg.Server.Port)
		}
		if cfg.Database.Password != "secret" {
			t.Errorf("Database.Password = %q, want env value", cfg.Database.Password)
		}
	})

	t.Run("invalid upload size rejected", func(t *testing.T) {
		dir := t.TempDir()
		path := writeConfig(t, dir, "config.toml", `
[database]
name = "causemap"
user = "causemap"

[storage]
connection_string = "UseDevelopmentStorage=true"

[extraction]
api_key = "k"

[api]
max_upload_size = "lots"
`)

		if _, err := config.Load(path); err == nil {
			t.Error("Load() expected error for invalid max_upload_size")
		}
	})
}
