package cryptox

import "errors"

var (
	// ErrDecryptionFailed is returned when an item does not authenticate under the given key.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrInvalidKeySize is returned when the AES key is not KeySize bytes.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidNonceSize is returned when a stored nonce is not NonceSize bytes.
	ErrInvalidNonceSize = errors.New("invalid nonce size")

	// ErrInvalidTagSize is returned when a stored tag is not TagSize bytes.
	ErrInvalidTagSize = errors.New("invalid tag size")

	// ErrInvalidSalt is returned when key derivation gets an empty salt.
	ErrInvalidSalt = errors.New("invalid salt")

	// ErrEmptyPassword is returned when hashing or derivation gets an empty password.
	ErrEmptyPassword = errors.New("empty password")

	// ErrMalformedHash is returned when a stored password hash cannot be parsed.
	ErrMalformedHash = errors.New("malformed password hash")
)
