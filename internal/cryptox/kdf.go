package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// randRead is replaceable in tests to exercise entropy failures.
var randRead = func(b []byte) (int, error) { return rand.Read(b) }

// GenerateSalt returns a fresh SaltSize-byte vault salt.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := randRead(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey derives the KeySize-byte item key from password and the user's
// vault salt with PBKDF2-HMAC-SHA256. The caller owns the returned slice and
// must wipe it when done.
func DeriveKey(password, salt []byte) ([]byte, error) {
	if len(password) == 0 {
		return nil, ErrEmptyPassword
	}
	if len(salt) == 0 {
		return nil, ErrInvalidSalt
	}
	return pbkdf2.Key(password, salt, PBKDF2Iterations, KeySize, sha256.New), nil
}
