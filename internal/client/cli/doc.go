// Package cli is the interactive terminal client for shlokapath.
//
// NewApp wires configuration, the local SQLite store, the HTTP API client
// and the session manager. App.Run restores any stored session, starts a
// background connectivity watcher and serves a REPL until the user exits.
//
// Commands:
//   - register, login, logout
//   - whoami, refresh, profile, password, delete
//   - stats, calendar
//
// Session changes the user did not trigger, such as an expired credential
// detected during a stats fetch, are reported as they happen.
package cli
