package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Password length bounds; bcrypt ignores input beyond 72 bytes.
const (
	MinPasswordLen = 8
	MaxPasswordLen = 72
)

var ErrPasswordLength = errors.New("password must be between 8 and 72 bytes")

// CheckPassword enforces the password length policy.
func CheckPassword(plain string) error {
	if len(plain) < MinPasswordLen || len(plain) > MaxPasswordLen {
		return ErrPasswordLength
	}
	return nil
}

// HashPassword validates plain and returns its bcrypt hash at cost.
func HashPassword(plain string, cost int) (string, error) {
	if err := CheckPassword(plain); err != nil {
		return "", err
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a bcrypt hash with a plain password in constant
// time.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
