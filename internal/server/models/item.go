package models

import "time"

// VaultItem is one encrypted secret. Ciphertext, Nonce and AuthTag come
// from a single AES-256-GCM encryption and are never reused.
type VaultItem struct {
	ID         string
	UserID     string
	Label      string
	Ciphertext []byte
	Nonce      []byte
	AuthTag    []byte
	CreatedAt  time.Time
}
