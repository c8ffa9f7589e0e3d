// Package config loads runtime configuration for the shlokapath terminal
// client.
//
// Sources, lowest precedence first:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file in the working directory, if present.
//  3. A JSON file selected with -c or -config.
//  4. SHLOKAPATH_* environment variables.
//  5. Command-line flags.
//
// # JSON schema
//
//	{
//	  "server_url": "https://api.example.org/api",
//	  "request_timeout": "30s",
//	  "retry_attempts": 3,
//	  "retry_delay": "1s",
//	  "revoke_timeout": "5s",
//	  "online_check_interval": "3s",
//	  "database_path": "shlokapath.db",
//	  "snapshot_passphrase": "",
//	  "log_level": "info"
//	}
//
// Durations may also be integer nanoseconds.
//
// # Environment
//
// SHLOKAPATH_SERVER_URL, SHLOKAPATH_REQUEST_TIMEOUT, SHLOKAPATH_RETRY_ATTEMPTS,
// SHLOKAPATH_RETRY_DELAY, SHLOKAPATH_REVOKE_TIMEOUT,
// SHLOKAPATH_ONLINE_CHECK_INTERVAL, SHLOKAPATH_DATABASE_PATH,
// SHLOKAPATH_SNAPSHOT_PASSPHRASE and SHLOKAPATH_LOG_LEVEL. Durations use
// time.ParseDuration syntax.
package config
