package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DefaultHost = "0.0.0.0"
	DefaultPort = 8011
)

type Config struct {
	Host   string
	Port   int
	DBPath string
}

func Default() *Config {
	return &Config{
		Host:   DefaultHost,
		Port:   DefaultPort,
		DBPath: DefaultDBPath(),
	}
}

// DefaultDBPath is ~/macro_tracker.db, falling back to the working directory
// when the home directory cannot be resolved.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "macro_tracker.db"
	}
	return filepath.Join(home, "macro_tracker.db")
}

// LoadEnv overlays MACRO_TRACKER_* environment variables, reading a .env file
// first when one is present next to the process.
func (c *Config) LoadEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("MACRO_TRACKER_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("MACRO_TRACKER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := os.Getenv("MACRO_TRACKER_DB"); v != "" {
		c.DBPath = v
	}
}
