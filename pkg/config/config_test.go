package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const minimalYAML = `
environment: test
backend:
  type: clickhouse
feed:
  websocket_url: wss://feed.local/ws
  countries: [DE, US]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("server.port default = %d", cfg.Server.Port)
	}
	if cfg.Kafka.Consumer.GroupID != "yieldpull" {
		t.Fatalf("consumer group default = %q", cfg.Kafka.Consumer.GroupID)
	}
	if cfg.Rates.CacheTTL.Curve != 15*time.Second {
		t.Fatalf("curve cache ttl default = %v", cfg.Rates.CacheTTL.Curve)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing environment", "backend:\n  type: kafka\nfeed:\n  websocket_url: wss://x\n  countries: [DE]\n"},
		{"unknown backend", "environment: test\nbackend:\n  type: postgres\nfeed:\n  websocket_url: wss://x\n  countries: [DE]\n"},
		{"no countries", "environment: test\nbackend:\n  type: kafka\nfeed:\n  websocket_url: wss://x\n"},
		{"bad method", minimalYAML + "bootstrap:\n  default_method: quadratic\n"},
	}
	for _, tc := range cases {
		if _, err := Load(writeConfig(t, tc.body)); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("BACKEND", "kafka")
	t.Setenv("COUNTRIES", "JP,GB")
	t.Setenv("REDIS_ADDR", "redis.local:6380")

	cfg, err := LoadWithEnv(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if cfg.Backend.Type != "kafka" {
		t.Fatalf("backend = %q", cfg.Backend.Type)
	}
	if len(cfg.Feed.Countries) != 2 || cfg.Feed.Countries[0] != "JP" {
		t.Fatalf("countries = %v", cfg.Feed.Countries)
	}
	if cfg.Rates.Redis.Addr != "redis.local:6380" {
		t.Fatalf("redis addr = %q", cfg.Rates.Redis.Addr)
	}
}
