// Package models defines the records exchanged between the API client, the
// session core and its consumers.
package models

import "time"

// User is the authenticated identity as reported by the server.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	Profile   Profile   `json:"profile"`
}

// Profile holds the optional, user-editable fields of a User.
type Profile struct {
	Bio       string `json:"bio,omitempty"`
	Location  string `json:"location,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Language  string `json:"language,omitempty"`
}

// Clone returns a copy that shares no memory with u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// ProfileUpdate is the set of fields submitted by a profile edit. The server
// answers with the canonical User.
type ProfileUpdate struct {
	Name    string  `json:"name" validate:"required"`
	Email   string  `json:"email" validate:"required,contains=@"`
	Profile Profile `json:"profile"`
}

// Snapshot is what survives a restart: the last committed User and the
// credential it was obtained with.
type Snapshot struct {
	User    User      `json:"user"`
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}
