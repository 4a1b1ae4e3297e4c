// Package auth implements the credential side of messagely: bcrypt password
// hashing and HS256 bearer tokens bound to a username.
package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is used when no work factor is configured.
const DefaultCost = 12

// HashPassword returns a salted bcrypt hash of plain. cost is the bcrypt
// work factor; zero selects DefaultCost.
func HashPassword(plain string, cost int) (string, error) {
	if cost == 0 {
		cost = DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares plain with a stored bcrypt hash in constant time.
// A mismatch is (false, nil); a malformed hash is reported as an error.
func VerifyPassword(plain, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
