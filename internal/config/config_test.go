package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	os.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	os.Setenv("MONGODB_DATABASE", "scrapbook_test")
	os.Setenv("REDIS_HOST", "localhost")
	os.Setenv("REDIS_PORT", "6379")
	os.Setenv("JWT_SECRET", "testsecret123456789012345678901234")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.MongoDB.URI == "" || cfg.Redis.Host == "" {
		t.Fatalf("unexpected empty config values: %+v", cfg)
	}
}

func TestLoadConfig_ExportDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Export.AppURL == "" {
		t.Fatalf("expected a default APP_URL")
	}
	if cfg.Export.NavigationTimeout < 60*time.Second {
		t.Fatalf("navigation timeout should be generous, got %v", cfg.Export.NavigationTimeout)
	}
	if cfg.Export.ReadyTimeout != 30*time.Second {
		t.Fatalf("unexpected ready timeout: %v", cfg.Export.ReadyTimeout)
	}
	if cfg.Export.RequestTimeout != 300*time.Second {
		t.Fatalf("unexpected request ceiling: %v", cfg.Export.RequestTimeout)
	}
}
