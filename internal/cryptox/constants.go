// Package cryptox holds the vault's cryptographic primitives: Argon2id password
// hashing for verification, PBKDF2-SHA256 key derivation and AES-256-GCM item
// encryption. Nothing in this package performs I/O or keeps state between calls.
package cryptox

const (
	// SaltSize is the length of the per-user vault salt used for key derivation.
	SaltSize = 16
	// KeySize is the derived AES-256 key length.
	KeySize = 32
	// NonceSize is the AES-GCM nonce length.
	NonceSize = 12
	// TagSize is the AES-GCM authentication tag length.
	TagSize = 16

	// PBKDF2Iterations is fixed; changing it orphans every stored item.
	PBKDF2Iterations = 100_000
)
