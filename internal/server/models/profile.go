// Package models defines the vault records persisted by the repositories.
package models

import "time"

// VaultProfile is the per-user vault configuration. PasswordHash and
// VaultSalt are both set or both empty; once set they never change.
type VaultProfile struct {
	UserID       string
	PasswordHash string
	VaultSalt    []byte
	CreatedAt    time.Time
}

// Configured reports whether the vault has completed setup.
func (p *VaultProfile) Configured() bool {
	return p != nil && p.PasswordHash != "" && len(p.VaultSalt) > 0
}
