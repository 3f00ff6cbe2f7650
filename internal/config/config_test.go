package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracker.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.SessionTTL != 24*time.Hour {
		t.Errorf("Expected 24h session ttl, got %s", c.SessionTTL)
	}
	if c.SessionTimeout != 30*time.Minute {
		t.Errorf("Expected 30m session timeout, got %s", c.SessionTimeout)
	}
	if c.SlidingSession {
		t.Error("Expected fixed expiry by default")
	}
	if !c.Beacon || c.CTAClass != "cta" || c.TextLimit != 50 {
		t.Errorf("Unexpected defaults %+v", c)
	}
	if c.Storage.Driver != DriverMemory {
		t.Errorf("Expected memory driver, got %s", c.Storage.Driver)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
endpoint: http://localhost:8123/track
session_ttl: 2h
sliding_session: true
session_timeout: 15m
beacon: false
storage:
  driver: sqlite
  path: /tmp/jar.db
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Endpoint != "http://localhost:8123/track" {
		t.Errorf("Unexpected endpoint %s", c.Endpoint)
	}
	if c.SessionTTL != 2*time.Hour || c.SessionTimeout != 15*time.Minute || !c.SlidingSession {
		t.Errorf("Unexpected session settings %+v", c)
	}
	if c.Beacon {
		t.Error("Expected beacon disabled")
	}
	if c.Storage.Driver != DriverSQLite || c.Storage.Path != "/tmp/jar.db" {
		t.Errorf("Unexpected storage %+v", c.Storage)
	}
	if c.TextLimit != 50 {
		t.Errorf("Expected unset fields to keep defaults, got %d", c.TextLimit)
	}
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, "endpoint: http://localhost:8123/track\n")
	t.Setenv("BROWSETRACE_ENDPOINT", "https://collector.example.com/track")
	t.Setenv("BROWSETRACE_STORAGE_DRIVER", "redis")
	t.Setenv("BROWSETRACE_STORAGE_REDIS_DB", "3")
	t.Setenv("BROWSETRACE_TEXT_LIMIT", "20")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Endpoint != "https://collector.example.com/track" {
		t.Errorf("Expected env endpoint, got %s", c.Endpoint)
	}
	if c.Storage.Driver != DriverRedis || c.Storage.RedisDB != 3 {
		t.Errorf("Unexpected storage %+v", c.Storage)
	}
	if c.TextLimit != 20 {
		t.Errorf("Expected 20, got %d", c.TextLimit)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"relative endpoint", func(c *Config) { c.Endpoint = "/track" }, "endpoint"},
		{"ftp endpoint", func(c *Config) { c.Endpoint = "ftp://example.com/track" }, "endpoint"},
		{"zero ttl", func(c *Config) { c.SessionTTL = 0 }, "session_ttl"},
		{"sliding without timeout", func(c *Config) { c.SlidingSession = true; c.SessionTimeout = 0 }, "session_timeout"},
		{"zero text limit", func(c *Config) { c.TextLimit = 0 }, "text_limit"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "etcd" }, "storage driver"},
		{"sqlite without path", func(c *Config) { c.Storage.Driver = DriverSQLite; c.Storage.Path = "" }, "storage.path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Expected error for missing file")
	}
}
