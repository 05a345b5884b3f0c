package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/storagesync/internal/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Addr != DefaultAddr {
		t.Errorf("Addr = %q, want %q", cfg.Addr, DefaultAddr)
	}
	if cfg.Path != DefaultPath {
		t.Errorf("Path = %q, want %q", cfg.Path, DefaultPath)
	}
	if cfg.PingInterval.Std() != 25*time.Second {
		t.Errorf("PingInterval = %s, want 25s", cfg.PingInterval)
	}
	if cfg.Storage.Enabled() {
		t.Error("storage should default to memory")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFileYAML(t *testing.T) {
	path := writeFile(t, "storagehub.yaml", `
addr: ":9000"
read_timeout: 30s
ping_interval: 10s
storage:
  bucket: prefs
  prefix: local/
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.ReadTimeout.Std() != 30*time.Second || cfg.PingInterval.Std() != 10*time.Second {
		t.Errorf("timeouts = %s/%s", cfg.ReadTimeout, cfg.PingInterval)
	}
	if cfg.Storage.Bucket != "prefs" || cfg.Storage.Prefix != "local/" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	// Unset fields keep their defaults.
	if cfg.Path != DefaultPath || cfg.Storage.Region != "us-east-1" {
		t.Errorf("defaults lost: path=%q region=%q", cfg.Path, cfg.Storage.Region)
	}
	if cfg.File() != path {
		t.Errorf("File() = %q, want %q", cfg.File(), path)
	}
}

func TestLoadFileJSON(t *testing.T) {
	path := writeFile(t, "storagehub.json", `{"path": "/sync", "send_queue": 8, "write_timeout": "2s"}`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Path != "/sync" || cfg.SendQueue != 8 || cfg.WriteTimeout.Std() != 2*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name     string
		path     func(t *testing.T) string
		wantCode string
	}{
		{
			name:     "missing",
			path:     func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") },
			wantCode: "S101",
		},
		{
			name:     "malformed yaml",
			path:     func(t *testing.T) string { return writeFile(t, "bad.yml", "addr: [") },
			wantCode: "S102",
		},
		{
			name:     "malformed json",
			path:     func(t *testing.T) string { return writeFile(t, "bad.json", "{") },
			wantCode: "S102",
		},
		{
			name:     "bad duration",
			path:     func(t *testing.T) string { return writeFile(t, "bad.yaml", "read_timeout: soon") },
			wantCode: "S102",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(tt.path(t))
			se, ok := err.(*errors.SyncError)
			if !ok {
				t.Fatalf("err = %v (%T), want *SyncError", err, err)
			}
			if se.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", se.Code, tt.wantCode)
			}
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeFile(t, "storagehub.yaml", "addr: \":9000\"\nlog_level: warn\n")
	t.Setenv("STORAGESYNC_ADDR", ":9100")
	t.Setenv("STORAGESYNC_READ_TIMEOUT", "2m")
	t.Setenv("STORAGESYNC_STORAGE_BUCKET", "from-env")
	t.Setenv("STORAGESYNC_STORAGE_ACCESS_KEY_ID", "AKIDEXAMPLE")
	t.Setenv("STORAGESYNC_METRICS_NAMESPACE", "edge")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9100" {
		t.Errorf("Addr = %q, want env override", cfg.Addr)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want file value", cfg.LogLevel)
	}
	if cfg.ReadTimeout.Std() != 2*time.Minute {
		t.Errorf("ReadTimeout = %s", cfg.ReadTimeout)
	}
	if cfg.Storage.Bucket != "from-env" || cfg.Storage.AccessKeyID != "AKIDEXAMPLE" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.MetricsNamespace != "edge" {
		t.Errorf("MetricsNamespace = %q", cfg.MetricsNamespace)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("STORAGESYNC_SEND_QUEUE", "not-a-number")

	_, err := Load("")
	se, ok := err.(*errors.SyncError)
	if !ok || se.Code != "S103" {
		t.Fatalf("err = %v, want S103", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty addr", func(c *Config) { c.Addr = "" }, "addr"},
		{"relative path", func(c *Config) { c.Path = "ws" }, "must start with /"},
		{"zero timeout", func(c *Config) { c.WriteTimeout = 0 }, "timeouts"},
		{"ping above read", func(c *Config) { c.PingInterval = c.ReadTimeout }, "ping_interval"},
		{"zero queue", func(c *Config) { c.SendQueue = 0 }, "send_queue"},
		{"zero max message", func(c *Config) { c.MaxMessageBytes = 0 }, "max_message_bytes"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			se := err.(*errors.SyncError)
			if se.Code != "S104" {
				t.Errorf("Code = %q", se.Code)
			}
			if !strings.Contains(se.Detail+err.Error(), tt.want) {
				t.Errorf("error %q (detail %q) should mention %q", err, se.Detail, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"debug", "INFO", "warn", "error"} {
		if _, err := ParseLevel(s); err != nil {
			t.Errorf("ParseLevel(%q): %v", s, err)
		}
	}
	if _, err := ParseLevel(""); err == nil {
		t.Error("ParseLevel(\"\") should fail")
	}
}
