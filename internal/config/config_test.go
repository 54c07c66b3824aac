package config

import (
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Host != DefaultHost {
		t.Errorf("Host = %q, want %q", cfg.Host, DefaultHost)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, DefaultPort)
	}
	if !strings.HasSuffix(cfg.DBPath, "macro_tracker.db") {
		t.Errorf("DBPath = %q, want a macro_tracker.db path", cfg.DBPath)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MACRO_TRACKER_HOST", "127.0.0.1")
	t.Setenv("MACRO_TRACKER_PORT", "9000")
	t.Setenv("MACRO_TRACKER_DB", "/tmp/test.db")

	cfg := Default()
	cfg.LoadEnv()

	if cfg.Host != "127.0.0.1" {
		t.Errorf("Host = %q, want 127.0.0.1", cfg.Host)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("DBPath = %q, want /tmp/test.db", cfg.DBPath)
	}
}

func TestLoadEnvIgnoresBadPort(t *testing.T) {
	t.Setenv("MACRO_TRACKER_PORT", "not-a-port")

	cfg := Default()
	cfg.LoadEnv()

	if cfg.Port != DefaultPort {
		t.Errorf("Port = %d, want default %d when the env value is malformed", cfg.Port, DefaultPort)
	}
}
