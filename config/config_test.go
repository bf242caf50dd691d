package config_test

import (
	"testing"
	"time"

	"Wanderfund/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("LEDGER_TIMEOUT", "3s")
	t.Setenv("SCHEDULER_INTERVAL", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Ledger.Timeout != 3*time.Second {
		t.Fatalf("expected ledger timeout 3s, got %s", cfg.Ledger.Timeout)
	}
	if cfg.Scheduler.Interval != time.Hour {
		t.Fatalf("expected default scheduler interval 1h, got %s", cfg.Scheduler.Interval)
	}
	if cfg.Database.DSN == "" {
		t.Fatalf("expected DSN to be assembled from DB_* variables")
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error when JWT_SECRET is missing in production")
	}
}
