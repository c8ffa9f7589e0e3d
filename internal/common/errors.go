// Package common defines the failure taxonomy and small helpers shared by the
// API client, the session core and the terminal client. Callers should use
// errors.Is to match these values.
package common

import (
	"context"
	"errors"
	"fmt"
)

var (
	// Client-side input rejected before any network call.
	ErrValidation = errors.New("validation")

	// Transient transport failures, eligible for retry.
	ErrNetwork = errors.New("network")
	ErrTimeout = errors.New("timeout")

	// Expired or revoked credential. Forces logout.
	ErrUnauthorized = errors.New("unauthorized")

	// Rejected login or registration attempt. Never forces logout.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// Remote failures surfaced verbatim to the caller.
	ErrServer  = errors.New("server")
	ErrUnknown = errors.New("unknown")
)

var kinds = []error{
	ErrValidation,
	ErrInvalidCredentials,
	ErrUnauthorized,
	ErrTimeout,
	ErrNetwork,
	ErrServer,
}

// Failure is a classified error. Kind is one of the sentinels above; Err is
// the underlying cause, if any.
type Failure struct {
	Kind    error
	Op      string
	Status  int
	Message string
	Err     error
}

func (f *Failure) Error() string {
	msg := f.Message
	if msg == "" && f.Err != nil {
		msg = f.Err.Error()
	}
	if f.Op == "" {
		return fmt.Sprintf("%v: %s", f.Kind, msg)
	}
	if msg == "" {
		return fmt.Sprintf("%s: %v", f.Op, f.Kind)
	}
	return fmt.Sprintf("%s: %v: %s", f.Op, f.Kind, msg)
}

func (f *Failure) Unwrap() []error {
	if f.Err == nil {
		return []error{f.Kind}
	}
	return []error{f.Kind, f.Err}
}

// NewValidation builds a validation failure for op with a human-readable message.
func NewValidation(op, msg string) *Failure {
	return &Failure{Kind: ErrValidation, Op: op, Message: msg}
}

// KindOf returns the sentinel kind of err. Context deadlines count as
// timeouts; anything unclassified is ErrUnknown. A nil error has no kind.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return ErrUnknown
}

// Message returns a line suitable for showing to a user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var f *Failure
	if errors.As(err, &f) && f.Message != "" {
		return f.Message
	}
	switch KindOf(err) {
	case ErrNetwork:
		return "The server could not be reached. Check your connection and try again."
	case ErrTimeout:
		return "The server took too long to respond. Please try again."
	case ErrUnauthorized:
		return "Your session has expired. Please log in again."
	case ErrInvalidCredentials:
		return "Incorrect email or password."
	case ErrServer:
		return "The server could not complete the request. Please try again later."
	}
	return err.Error()
}
