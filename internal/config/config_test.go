package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.Port != DefaultPort {
		t.Errorf("Expected port %d, got %d", DefaultPort, cfg.Server.Port)
	}
	if cfg.Cookies.Mode != CookieModeUpload {
		t.Errorf("Expected cookie mode %q, got %q", CookieModeUpload, cfg.Cookies.Mode)
	}
	if cfg.Retention.MaxFiles != DefaultUploadMaxFiles {
		t.Errorf("Expected max files %d, got %d", DefaultUploadMaxFiles, cfg.Retention.MaxFiles)
	}
	if cfg.RequestDelay() != DefaultRequestDelay {
		t.Errorf("Expected request delay %v, got %v", DefaultRequestDelay, cfg.RequestDelay())
	}
	if cfg.Ytdlp.Binary != DefaultYtdlpBinary {
		t.Errorf("Expected binary %q, got %q", DefaultYtdlpBinary, cfg.Ytdlp.Binary)
	}
	if len(cfg.Cookies.Markers) != len(DefaultCookieMarkers) {
		t.Errorf("Expected default markers, got %v", cfg.Cookies.Markers)
	}
}

func TestLoadConfig_PortFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "4123")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 4123 {
		t.Errorf("Expected port 4123 from PORT, got %d", cfg.Server.Port)
	}
}

func TestLoadConfig_FixedModeRetentionDefault(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_COOKIES_MODE", "FIXED")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Cookies.Mode != CookieModeFixed {
		t.Fatalf("Expected fixed mode, got %q", cfg.Cookies.Mode)
	}
	if cfg.Retention.MaxFiles != DefaultFixedMaxFiles {
		t.Errorf("Expected max files %d, got %d", DefaultFixedMaxFiles, cfg.Retention.MaxFiles)
	}
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := `
server:
  port: 8081
ytdlp:
  request_delay: 250ms
  metadata_timeout: "0"
retention:
  max_files: 12
cache:
  provider: none
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 8081 {
		t.Errorf("Expected port 8081, got %d", cfg.Server.Port)
	}
	if cfg.RequestDelay() != 250*time.Millisecond {
		t.Errorf("Expected 250ms delay, got %v", cfg.RequestDelay())
	}
	if cfg.MetadataTimeout() != 0 {
		t.Errorf("Expected disabled metadata timeout, got %v", cfg.MetadataTimeout())
	}
	if cfg.Retention.MaxFiles != 12 {
		t.Errorf("Expected max files 12, got %d", cfg.Retention.MaxFiles)
	}
	if cfg.Cache.Provider != "none" {
		t.Errorf("Expected cache provider none, got %q", cfg.Cache.Provider)
	}
}

func TestParseDuration_InvalidFallsBack(t *testing.T) {
	got := parseDuration("soon", time.Second, "test.key")
	if got != time.Second {
		t.Errorf("Expected fallback 1s, got %v", got)
	}

	got = parseDuration("-5s", time.Second, "test.key")
	if got != time.Second {
		t.Errorf("Expected fallback for negative duration, got %v", got)
	}
}

func TestReload_ReplacesGlobalConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	previous := GetConfig()
	t.Cleanup(func() { apply(previous) })

	t.Setenv("APP_COOKIES_MODE", "fixed")
	cfg, err := Reload()
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if GetConfig() != cfg {
		t.Error("Expected GetConfig to return the reloaded config")
	}
	if cfg.Cookies.Mode != CookieModeFixed {
		t.Errorf("Expected fixed mode from env, got %q", cfg.Cookies.Mode)
	}
}

func TestLoadConfig_NestedKeysFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_RETENTION_MAX_FILES", "9")
	t.Setenv("APP_CACHE_REDIS_ADDRESS", "redis:6379")
	t.Setenv("APP_SENTRY_DSN", "https://key@sentry.example/1")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Retention.MaxFiles != 9 {
		t.Errorf("Expected max files 9, got %d", cfg.Retention.MaxFiles)
	}
	if cfg.Cache.RedisAddress != "redis:6379" {
		t.Errorf("Expected redis address from env, got %q", cfg.Cache.RedisAddress)
	}
	if cfg.Sentry.DSN == "" {
		t.Error("Expected sentry DSN from env")
	}
}
