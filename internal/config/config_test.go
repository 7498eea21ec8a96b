package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	var cfg Config
	cfg.App.Host = "127.0.0.1"
	cfg.App.Port = 38472
	cfg.LogStore.URL = "https://logs.example.com/expArr/send_logs"
	cfg.LogStore.Username = "user"
	cfg.WordPress.BaseURL = "https://site.example.com/wp-json/wp/v2"
	cfg.WordPress.FreshnessSeconds = 3600
	cfg.HTTP.TimeoutSeconds = 15
	cfg.HTTP.MaxRetries = 3
	cfg.HTTP.RetryDelayMS = 1000
	cfg.HTTP.ReqPerSec = 10
	cfg.HTTP.Burst = 5
	cfg.Pipeline.MaxConcurrent = 8
	cfg.Pipeline.DefaultPageSize = 10
	return cfg
}

func TestNormalizeAndValidate_AcceptsValidConfig(t *testing.T) {
	out, res := NormalizeAndValidate(validConfig())
	if !res.OK() {
		t.Fatalf("expected valid config, got errors: %v", res.Errors)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
	if out.WordPress.BaseURL != "https://site.example.com/wp-json/wp/v2" {
		t.Fatalf("base url changed unexpectedly: %q", out.WordPress.BaseURL)
	}
}

func TestNormalizeAndValidate_Normalizes(t *testing.T) {
	cfg := validConfig()
	cfg.WordPress.BaseURL = "  https://site.example.com/wp-json/wp/v2/  "
	cfg.Filters.TypesAllow = []string{" Post ", "post", "JOB-LISTING", ""}

	out, res := NormalizeAndValidate(cfg)
	if !res.OK() {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if out.WordPress.BaseURL != "https://site.example.com/wp-json/wp/v2" {
		t.Fatalf("trailing slash not trimmed: %q", out.WordPress.BaseURL)
	}
	if len(out.Filters.TypesAllow) != 2 || out.Filters.TypesAllow[0] != "post" || out.Filters.TypesAllow[1] != "job-listing" {
		t.Fatalf("types_allow not normalized: %v", out.Filters.TypesAllow)
	}
}

func TestNormalizeAndValidate_Errors(t *testing.T) {
	cfg := validConfig()
	cfg.App.Port = 0
	cfg.LogStore.URL = "not a url"
	cfg.LogStore.Username = " "
	cfg.HTTP.MaxRetries = 0
	cfg.Filters.TypesAllow = []string{"page"}

	_, res := NormalizeAndValidate(cfg)
	if res.OK() {
		t.Fatal("expected validation errors")
	}
	wantSubstrings := []string{"app.port", "logstore.url", "logstore.username", "http.max_retries", "types_allow"}
	for _, want := range wantSubstrings {
		found := false
		for _, e := range res.Errors {
			if strings.Contains(e, want) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing error about %s in %v", want, res.Errors)
		}
	}
}

func TestNormalizeAndValidate_PasswordWarning(t *testing.T) {
	cfg := validConfig()
	cfg.LogStore.Password = "secret"

	_, res := NormalizeAndValidate(cfg)
	if !res.OK() {
		t.Fatalf("password in file is allowed, got errors: %v", res.Errors)
	}
	if len(res.Warnings) == 0 {
		t.Fatal("expected a warning about the in-file password")
	}
}

func TestNormalizeAndValidate_RefreshInterval(t *testing.T) {
	cfg := validConfig()
	cfg.Refresh.Enabled = true
	cfg.Refresh.IntervalSeconds = 0
	if _, res := NormalizeAndValidate(cfg); res.OK() {
		t.Fatal("expected an error for enabled refresh without an interval")
	}

	cfg.Refresh.IntervalSeconds = 30
	if _, res := NormalizeAndValidate(cfg); !res.OK() || len(res.Warnings) == 0 {
		t.Fatal("expected a warning for a very low refresh interval")
	}
}

func TestSaveAtomic_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	cfg := validConfig()

	if err := SaveAtomic(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.LogStore.URL != cfg.LogStore.URL || loaded.App.Port != cfg.App.Port {
		t.Fatalf("roundtrip mismatch: %+v", loaded)
	}

	cfg.App.Port = 38473
	if err := SaveAtomic(path, cfg); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if _, err := os.Stat(path + ".bak"); err != nil {
		t.Fatalf("expected a .bak of the previous config: %v", err)
	}
}

func TestSaveAtomic_RejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	cfg := validConfig()
	cfg.LogStore.URL = ""

	if err := SaveAtomic(path, cfg); err == nil {
		t.Fatal("expected a validation failure")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatal("invalid config must not be written")
	}
}

func TestEnsureUserConfig(t *testing.T) {
	dataDir := t.TempDir()
	defaultPath := filepath.Join(t.TempDir(), "default.yml")
	if err := os.WriteFile(defaultPath, []byte("app:\n  port: 38472\n"), 0o644); err != nil {
		t.Fatalf("write default: %v", err)
	}

	userPath, err := EnsureUserConfig(dataDir, defaultPath)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if userPath != filepath.Join(dataDir, "config.yml") {
		t.Fatalf("unexpected user path %q", userPath)
	}
	cfg, err := Load(userPath)
	if err != nil || cfg.App.Port != 38472 {
		t.Fatalf("seeded config not readable: %v %+v", err, cfg)
	}

	// the user copy wins on subsequent runs
	if err := os.WriteFile(userPath, []byte("app:\n  port: 40000\n"), 0o644); err != nil {
		t.Fatalf("edit user copy: %v", err)
	}
	again, err := EnsureUserConfig(dataDir, defaultPath)
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	cfg, err = Load(again)
	if err != nil || cfg.App.Port != 40000 {
		t.Fatalf("user edits must survive: %v %+v", err, cfg)
	}
}
