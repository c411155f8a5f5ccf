package database_test

import (
	"strings"
	"testing"
	"time"

	"causemap/pkg/database"
)

func TestConfigFinalize(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		cfg := database.Config{Name: "causemap", User: "app"}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("Finalize() error = %v", err)
		}

		if cfg.Host != "localhost" || cfg.Port != 5432 {
			t.Errorf("host = %q port = %d, want localhost:5432", cfg.Host, cfg.Port)
		}
		if cfg.ConnTimeoutDuration() != 5*time.Second {
			t.Errorf("ConnTimeoutDuration() = %v, want 5s", cfg.ConnTimeoutDuration())
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_DB_HOST", "db.internal")
		t.Setenv("TEST_DB_MAX_OPEN", "40")

		cfg := database.Config{Name: "causemap", User: "app"}
		err := cfg.Finalize(&database.Env{Host: "TEST_DB_HOST", MaxOpenConns: "TEST_DB_MAX_OPEN"})
		if err != nil {
			t.Fatalf("Finalize() error = %v", err)
		}

		if cfg.Host != "db.internal" {
			t.Errorf("Host = %q, want env value", cfg.Host)
		}
		if cfg.MaxOpenConns != 40 {
			t.Errorf("MaxOpenConns = %d, want 40", cfg.MaxOpenConns)
		}
	})

	t.Run("rejects bad duration", func(t *testing.T) {
		cfg := database.Config{Name: "causemap", User: "app", ConnTimeout: "soon"}
		if err := cfg.Finalize(nil); err == nil {
			t.Error("Finalize() should reject an unparseable conn_timeout")
		}
	})
}

func TestConfigDsn(t *testing.T) {
	cfg := database.Config{Name: "causemap", User: "app", ConnTimeout: "1500ms"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	dsn := cfg.Dsn()
	if !strings.Contains(dsn, "dbname=causemap") {
		t.Errorf("Dsn() = %q, missing dbname", dsn)
	}
	// sub-second timeouts round up to a whole second for the driver
	if !strings.Contains(dsn, "connect_timeout=2") {
		t.Errorf("Dsn() = %q, want connect_timeout=2", dsn)
	}
}

func TestConfigMerge(t *testing.T) {
	base := database.Config{Host: "localhost", Name: "causemap", User: "app", MaxIdleConns: 5}
	base.Merge(&database.Config{Host: "db.prod", Password: "secret"})

	if base.Host != "db.prod" || base.Password != "secret" {
		t.Errorf("merge did not apply overlay: %+v", base)
	}
	if base.Name != "causemap" || base.MaxIdleConns != 5 {
		t.Errorf("merge clobbered base fields: %+v", base)
	}
}
