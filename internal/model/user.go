// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Username is the primary key — it is what the session token carries and
// what messages reference. PasswordHash is the bcrypt output; the json:"-"
// tag guarantees it can never leak through an API response even if a
// handler serializes the full struct by mistake.
type User struct {
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Phone        string    `json:"phone" db:"phone"`
	JoinedAt     time.Time `json:"join_at" db:"join_at"`
	LastLoginAt  time.Time `json:"last_login_at" db:"last_login_at"`
}

// UserProfile is the public shape of a user: what other users see in
// listings and embedded in messages. No hash, no timestamps.
type UserProfile struct {
	Username  string `json:"username" db:"username"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
	Phone     string `json:"phone" db:"phone"`
}

// Profile returns the public view of the user.
func (u *User) Profile() UserProfile {
	return UserProfile{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
}
