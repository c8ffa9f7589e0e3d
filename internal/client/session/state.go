package session

import (
	"errors"

	"github.com/dmitrijs2005/shlokapath/internal/client/models"
)

type Status string

const (
	StatusUnknown         Status = "unknown"
	StatusAuthenticating  Status = "authenticating"
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrClosed           = errors.New("session manager closed")
)

// State is a committed view of the session. User is non-nil exactly when
// Status is StatusAuthenticated. LastError is set when the transition was
// caused by a failure.
type State struct {
	Status    Status
	User      *models.User
	LastError error

	// generation identifies the authenticated session a state belongs to.
	generation uint64
}

func (s State) Authenticated() bool {
	return s.Status == StatusAuthenticated
}

func (s State) clone() State {
	s.User = s.User.Clone()
	return s
}
