package models

import (
	"time"
)

// User represents the public profile (anonymous identity) returned by
// sign-in and sign-up. It is the identity record kept in the session store.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Valid reports whether the record can be used as an identity.
func (u *User) Valid() bool {
	return u != nil && u.ID != ""
}

// DisplayName returns the name shown in the session header.
func (u *User) DisplayName() string {
	if u == nil || u.Username == "" {
		return "User"
	}
	return u.Username
}
