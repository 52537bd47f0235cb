package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mpboonchaipolice/tcsd2-dashboard/internal/extractor"
)

var envKeys = []string{"EXCEL_PATH", "DATA_DIR", "HOST", "PORT", "APP_USER", "APP_PASS"}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Defaults(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(extractor.DefaultSheetNames, cfg.SheetNames()); diff != "" {
		t.Errorf("sheet names mismatch (-want +got):\n%s", diff)
	}
	if cfg.AuthEnabled() {
		t.Error("expected auth disabled by default")
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[source]
path = "/srv/tcsd2/cases.xlsx"
cases_sheet = "คดี"

[server]
port = 9090
reload_rate_limit = 0

[history]
enabled = false
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source.Path != "/srv/tcsd2/cases.xlsx" || cfg.Server.Port != 9090 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Server.ReloadRateLimit != 0 || cfg.History.Enabled {
		t.Errorf("expected explicit zero values to override defaults: %+v", cfg)
	}
	// Unset keys keep their defaults.
	if cfg.Server.Host != "0.0.0.0" || cfg.Source.SuspectsSheet != "Suspects" {
		t.Errorf("expected defaults for unset keys: %+v", cfg)
	}
	if got := cfg.SheetNames().Cases; got != "คดี" {
		t.Errorf("expected cases sheet override, got %q", got)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server\nport = "), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected decode error")
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server]\nport = 9090\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("EXCEL_PATH", "/data/other.xlsx")
	t.Setenv("DATA_DIR", "/var/lib/tcsd2")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "8080")
	t.Setenv("APP_USER", "admin")
	t.Setenv("APP_PASS", "secret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := ServerConfig{Host: "127.0.0.1", Port: 8080, ReloadRateLimit: 0.2, ReloadBurst: 1}
	if diff := cmp.Diff(want, cfg.Server); diff != "" {
		t.Errorf("server mismatch (-want +got):\n%s", diff)
	}
	if cfg.Source.Path != "/data/other.xlsx" || cfg.Data.Dir != "/var/lib/tcsd2" {
		t.Errorf("env paths not applied: %+v", cfg)
	}
	if !cfg.AuthEnabled() {
		t.Error("expected auth enabled with both credentials")
	}
}

func TestInvalidPortIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "eighty")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
}

func TestAuthEnabled(t *testing.T) {
	tests := []struct {
		user, pass string
		want       bool
	}{
		{"", "", false},
		{"admin", "", false},
		{"", "secret", false},
		{"admin", "secret", true},
	}
	for _, tt := range tests {
		cfg := Defaults()
		cfg.Auth = AuthConfig{User: tt.user, Password: tt.pass}
		if got := cfg.AuthEnabled(); got != tt.want {
			t.Errorf("AuthEnabled(%q, %q) = %v, want %v", tt.user, tt.pass, got, tt.want)
		}
	}
}
