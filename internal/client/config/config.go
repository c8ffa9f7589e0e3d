package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Config holds runtime settings for the shlokapath terminal client.
type Config struct {
	ServerURL           string        `env:"SERVER_URL"`
	RequestTimeout      time.Duration `env:"REQUEST_TIMEOUT"`
	RetryAttempts       int           `env:"RETRY_ATTEMPTS"`
	RetryDelay          time.Duration `env:"RETRY_DELAY"`
	RevokeTimeout       time.Duration `env:"REVOKE_TIMEOUT"`
	OnlineCheckInterval time.Duration `env:"ONLINE_CHECK_INTERVAL"`
	DatabasePath        string        `env:"DATABASE_PATH"`

	// SnapshotPassphrase seals the stored session when non-empty.
	SnapshotPassphrase string `env:"SNAPSHOT_PASSPHRASE"`

	LogLevel string `env:"LOG_LEVEL"`
}

func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080/api"
	c.RequestTimeout = 30 * time.Second
	c.RetryAttempts = 3
	c.RetryDelay = time.Second
	c.RevokeTimeout = 5 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.DatabasePath = "shlokapath.db"
	c.SnapshotPassphrase = ""
	c.LogLevel = "info"
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server url %q must be an absolute http(s) url", c.ServerURL)
	}
	switch {
	case c.RequestTimeout <= 0:
		return errors.New("request timeout must be positive")
	case c.RetryAttempts < 1:
		return errors.New("retry attempts must be at least 1")
	case c.RetryDelay < 0:
		return errors.New("retry delay must not be negative")
	case c.RevokeTimeout <= 0:
		return errors.New("revoke timeout must be positive")
	case c.OnlineCheckInterval <= 0:
		return errors.New("online check interval must be positive")
	case c.DatabasePath == "":
		return errors.New("database path must not be empty")
	}
	return nil
}

// LoadConfig builds a Config from defaults, then a .env file in the working
// directory, then the JSON file named by -c/-config, then SHLOKAPATH_*
// environment variables, then flags. Later sources win.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := loadDotEnv(dotEnvFile); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, nil); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
