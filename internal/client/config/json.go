package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/shlokapath/internal/flagx"
	"github.com/dmitrijs2005/shlokapath/internal/timex"
)

// JsonConfig is the on-disk form. Durations go through timex.Duration so
// they can be written as "3s" or as nanoseconds. Absent fields keep the
// value from the previous source.
type JsonConfig struct {
	ServerURL           string          `json:"server_url"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	RetryAttempts       *int            `json:"retry_attempts"`
	RetryDelay          *timex.Duration `json:"retry_delay"`
	RevokeTimeout       *timex.Duration `json:"revoke_timeout"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	DatabasePath        string          `json:"database_path"`
	SnapshotPassphrase  string          `json:"snapshot_passphrase"`
	LogLevel            string          `json:"log_level"`
}

func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RetryAttempts != nil {
		cfg.RetryAttempts = *jc.RetryAttempts
	}
	if jc.RetryDelay != nil {
		cfg.RetryDelay = jc.RetryDelay.Duration
	}
	if jc.RevokeTimeout != nil {
		cfg.RevokeTimeout = jc.RevokeTimeout.Duration
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.SnapshotPassphrase != "" {
		cfg.SnapshotPassphrase = jc.SnapshotPassphrase
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	return nil
}
