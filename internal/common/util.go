package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/awnumar/memguard"
)

// RandomBytes returns size bytes read from the system CSPRNG.
func RandomBytes(size int) ([]byte, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("read random: %w", err)
	}
	return b, nil
}

// MakeRandHexString returns size random bytes encoded as hex (2*size characters).
func MakeRandHexString(size int) (string, error) {
	b, err := RandomBytes(size)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray overwrites b with zeros. Used for derived keys and password
// copies once an operation is done with them. Nil-safe.
func WipeByteArray(b []byte) {
	if len(b) == 0 {
		return
	}
	memguard.WipeBytes(b)
}
