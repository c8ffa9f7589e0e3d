package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/shlokapath/internal/flagx"
)

// parseFlags overlays cfg with command-line flags:
//
//	-s string    server base url
//	-t duration  per-attempt request timeout
//	-r int       attempts per request
//	-i int       online check interval, in seconds
//	-d string    path to the local database
//	-l string    log level (debug, info, warn, error)
//
// The passphrase is deliberately not a flag; set it through the
// environment or the JSON file.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-s", "-t", "-r", "-i", "-d", "-l"})

	fs := flag.NewFlagSet("shlokapath", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "server base url")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")
	fs.IntVar(&cfg.RetryAttempts, "r", cfg.RetryAttempts, "attempts per request")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local database")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	return nil
}
