package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidAPIKey is returned when an admin key does not match the configured hash
var ErrInvalidAPIKey = errors.New("invalid api key")

// HashAPIKey hashes an admin key for storage in configuration
func HashAPIKey(key string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyAPIKey checks a presented key against its bcrypt hash
func VerifyAPIKey(hash, key string) error {
	if hash == "" || key == "" {
		return ErrInvalidAPIKey
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
		return ErrInvalidAPIKey
	}
	return nil
}
