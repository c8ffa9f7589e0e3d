package models

// Credentials identify an existing account.
type Credentials struct {
	Email    string `validate:"required,contains=@"`
	Password []byte `validate:"min=1"`
}

// Registration describes a new account.
type Registration struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,contains=@"`
	Password []byte `validate:"min=8"`
}

// PasswordChange carries the current password and the new one typed twice.
// Confirm is compared against New by the session core.
type PasswordChange struct {
	Current []byte `validate:"min=1"`
	New     []byte `validate:"min=8"`
	Confirm []byte
}

// AuthResult is returned by a successful login or registration.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
