package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestViperLoader_Defaults(t *testing.T) {
	cfg, err := NewViperLoader("", "UGC").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTP.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.HTTP.Port)
	}
	if cfg.Mongo.Database != "movies" {
		t.Errorf("expected default database movies, got %s", cfg.Mongo.Database)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("unexpected log defaults: %+v", cfg.Log)
	}
}

func TestViperLoader_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("UGC_HTTP_PORT", "9000")
	t.Setenv("UGC_MONGO_URL", "mongodb://mongo:27017")
	t.Setenv("UGC_LOG_LEVEL", "debug")

	cfg, err := NewViperLoader("", "UGC").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTP.Port != 9000 {
		t.Errorf("expected port 9000 from env, got %d", cfg.HTTP.Port)
	}
	if cfg.Mongo.URL != "mongodb://mongo:27017" {
		t.Errorf("expected mongo url from env, got %s", cfg.Mongo.URL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Log.Level)
	}
}

func TestViperLoader_FileThenEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("http:\n  port: 8100\nmongo:\n  database: ugc\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("UGC_HTTP_PORT", "8200")

	cfg, err := NewViperLoader(path, "UGC").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	// ENV beats file, file beats defaults.
	if cfg.HTTP.Port != 8200 {
		t.Errorf("expected env to win over file, got %d", cfg.HTTP.Port)
	}
	if cfg.Mongo.Database != "ugc" {
		t.Errorf("expected database from file, got %s", cfg.Mongo.Database)
	}
}

func TestViperLoader_MissingFile(t *testing.T) {
	if _, err := NewViperLoader("/nonexistent/config.yaml", "UGC").Load(); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestViperLoader_ValidateRejectsBadPort(t *testing.T) {
	t.Setenv("UGC_HTTP_PORT", "70000")
	if _, err := NewViperLoader("", "UGC").Load(); err == nil {
		t.Fatal("expected validation to reject an out-of-range port")
	}
}

func TestViperLoader_DurationValues(t *testing.T) {
	t.Setenv("UGC_MONGO_OPERATION_TIMEOUT", "2s")

	cfg, err := NewViperLoader("", "UGC").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Mongo.OperationTimeout != 2*time.Second {
		t.Errorf("expected 2s operation timeout, got %s", cfg.Mongo.OperationTimeout)
	}
}
