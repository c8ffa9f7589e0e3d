// Package api is the client's view of the remote Shlokapath service.
//
// # Overview
//
// Client is the transport-agnostic contract consumed by the session core.
// HTTPClient implements it over JSON/HTTP: every call is bounded by a
// per-attempt timeout, transient failures (network, timeout) are retried
// with a fixed delay, and every failure is returned as a *common.Failure
// whose kind callers match with errors.Is:
//
//	common.ErrValidation, common.ErrNetwork, common.ErrTimeout,
//	common.ErrUnauthorized, common.ErrInvalidCredentials, common.ErrServer
//
// # Credentials
//
// The bearer token obtained by Login/Register is kept by the client and
// attached to every authenticated call. SetToken replaces it (hydration,
// logout). An empty token, or a JWT whose exp has passed, fails locally with
// ErrUnauthorized without touching the network.
//
// HTTPClient is safe for concurrent use.
package api
