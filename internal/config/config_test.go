package config

import (
	"testing"
	"time"
)

func TestLoadServerConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := loadServerConfig()
	if err != nil {
		t.Fatalf("loadServerConfig err: %v", err)
	}
	if cfg.Addr != ":8000" {
		t.Fatalf("addr: got %s want :8000", cfg.Addr)
	}
}

func TestLoadServerConfigBarePort(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg, err := loadServerConfig()
	if err != nil {
		t.Fatalf("loadServerConfig err: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("addr: got %s want :9090", cfg.Addr)
	}
}

func TestLoadServerConfigFullAddr(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:8000")

	cfg, err := loadServerConfig()
	if err != nil {
		t.Fatalf("loadServerConfig err: %v", err)
	}
	if cfg.Addr != "127.0.0.1:8000" {
		t.Fatalf("addr: got %s want 127.0.0.1:8000", cfg.Addr)
	}
}

func TestLoadServerConfigRejectsSpaces(t *testing.T) {
	t.Setenv("PORT", "80 00")

	if _, err := loadServerConfig(); err == nil {
		t.Fatal("expected error for PORT with spaces")
	}
}

func TestSessionTTLDefault(t *testing.T) {
	t.Setenv("SESSION_TTL_HOURS", "")

	cfg, err := loadSessionConfig()
	if err != nil {
		t.Fatalf("loadSessionConfig err: %v", err)
	}
	if cfg.TTL != 24*time.Hour {
		t.Fatalf("ttl: got %v want 24h", cfg.TTL)
	}
}

func TestSessionTTLOverride(t *testing.T) {
	t.Setenv("SESSION_TTL_HOURS", "48")

	cfg, err := loadSessionConfig()
	if err != nil {
		t.Fatalf("loadSessionConfig err: %v", err)
	}
	if cfg.TTL != 48*time.Hour {
		t.Fatalf("ttl: got %v want 48h", cfg.TTL)
	}
}

func TestAIConfigEnabled(t *testing.T) {
	cases := []struct {
		name string
		cfg  AIConfig
		want bool
	}{
		{"api key", AIConfig{Model: "m", APIKey: "k"}, true},
		{"ak/sk pair", AIConfig{Model: "m", AccessKey: "a", SecretKey: "s"}, true},
		{"missing model", AIConfig{APIKey: "k"}, false},
		{"missing credentials", AIConfig{Model: "m"}, false},
		{"partial pair", AIConfig{Model: "m", AccessKey: "a"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cfg.Enabled(); got != tc.want {
				t.Fatalf("Enabled: got %v want %v", got, tc.want)
			}
		})
	}
}
