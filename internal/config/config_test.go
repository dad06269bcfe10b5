package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.Mode != "debug" {
		t.Errorf("expected default mode debug, got %s", cfg.Server.Mode)
	}
	if !cfg.Server.CORS.AllowAllOrigins {
		t.Error("expected CORS to allow all origins by default")
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected default driver sqlite, got %s", cfg.Database.Driver)
	}
	if cfg.Database.ConnMaxLifetime != time.Hour {
		t.Errorf("expected default conn lifetime 1h, got %v", cfg.Database.ConnMaxLifetime)
	}
	if cfg.Storage.Bucket != "storydesk-media" {
		t.Errorf("expected default bucket storydesk-media, got %s", cfg.Storage.Bucket)
	}
	if !cfg.Providers.Media3P.Enabled {
		t.Error("expected Media3P provider enabled by default")
	}
	if cfg.Providers.Media3P.PageSize != 30 {
		t.Errorf("expected default page size 30, got %d", cfg.Providers.Media3P.PageSize)
	}
	if cfg.Sync.Workers != 5 || cfg.Sync.BatchSize != 10 {
		t.Errorf("expected default sync workers/batch 5/10, got %d/%d", cfg.Sync.Workers, cfg.Sync.BatchSize)
	}
	if cfg.Dashboard.PerPage != 20 {
		t.Errorf("expected default per page 20, got %d", cfg.Dashboard.PerPage)
	}
	if cfg.Dashboard.SearchDebounceMs != 800 {
		t.Errorf("expected default search debounce 800ms, got %d", cfg.Dashboard.SearchDebounceMs)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORAGE_ACCESS_KEY", "test-access-key")
	t.Setenv("MEDIA3P_API_KEY", "test-api-key")
	t.Setenv("DASHBOARD_API_BASE_URL", "http://api.internal:8080")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090 from env, got %d", cfg.Server.Port)
	}
	if cfg.Storage.AccessKey != "test-access-key" {
		t.Errorf("expected access key from env, got %q", cfg.Storage.AccessKey)
	}
	if cfg.Providers.Media3P.APIKey != "test-api-key" {
		t.Errorf("expected API key from env, got %q", cfg.Providers.Media3P.APIKey)
	}
	if cfg.Dashboard.APIBaseURL != "http://api.internal:8080" {
		t.Errorf("expected API base URL from env, got %q", cfg.Dashboard.APIBaseURL)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	content := `server:
  port: 9999
  mode: release
database:
  driver: postgres
  dsn: "host=db user=storydesk dbname=storydesk"
sync:
  workers: 2
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Server.Mode != "release" {
		t.Errorf("expected mode release, got %s", cfg.Server.Mode)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("expected driver postgres, got %s", cfg.Database.Driver)
	}
	// Values absent from the file keep their defaults
	if cfg.Sync.BatchSize != 10 {
		t.Errorf("expected default batch size 10, got %d", cfg.Sync.BatchSize)
	}
	if cfg.Sync.Workers != 2 {
		t.Errorf("expected workers 2 from file, got %d", cfg.Sync.Workers)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file, got nil")
	}
}
