// Package profiles persists per-user vault profiles: the password hash and
// key-derivation salt written once at setup.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/gophvault/internal/server/models"
)

type Repository interface {
	// Get returns common.ErrorNotFound when the user has no profile row.
	Get(ctx context.Context, userID string) (*models.VaultProfile, error)
	// CreateIfAbsent writes hash and salt only if the profile is not yet
	// configured. It reports false when another writer got there first;
	// an existing configuration is never overwritten.
	CreateIfAbsent(ctx context.Context, profile *models.VaultProfile) (bool, error)
}
