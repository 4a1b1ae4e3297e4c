// Package models holds the JSON shapes exchanged with the messagely API.
package models

import "time"

type PublicUser struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// FullName is "First Last".
func (u PublicUser) FullName() string {
	return u.FirstName + " " + u.LastName
}

type UserDetail struct {
	PublicUser
	JoinAt      time.Time `json:"join_at"`
	LastLoginAt time.Time `json:"last_login_at"`
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}
