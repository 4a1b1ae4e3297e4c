package models

import "time"

// User is a full users row. Password holds the bcrypt hash and is never
// serialised.
type User struct {
	Username    string    `db:"username" json:"username"`
	Password    string    `db:"password" json:"-"`
	FirstName   string    `db:"first_name" json:"first_name"`
	LastName    string    `db:"last_name" json:"last_name"`
	Phone       string    `db:"phone" json:"phone"`
	JoinAt      time.Time `db:"join_at" json:"join_at"`
	LastLoginAt time.Time `db:"last_login_at" json:"last_login_at"`
}

// PublicUser is the projection shown to other users.
type PublicUser struct {
	Username  string `db:"username" json:"username"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Phone     string `db:"phone" json:"phone"`
}

// UserDetail is what a user sees about themselves.
type UserDetail struct {
	PublicUser
	JoinAt      time.Time `db:"join_at" json:"join_at"`
	LastLoginAt time.Time `db:"last_login_at" json:"last_login_at"`
}

// Public drops the hash and timestamps.
func (u *User) Public() PublicUser {
	return PublicUser{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
}
