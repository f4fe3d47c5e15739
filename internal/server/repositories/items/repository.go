// Package items persists encrypted vault items. Every query is scoped by
// owner, so a caller can never read or delete another user's rows.
package items

import (
	"context"

	"github.com/dmitrijs2005/gophvault/internal/server/models"
)

type Repository interface {
	// Create inserts item and fills CreatedAt from the database.
	Create(ctx context.Context, item *models.VaultItem) (*models.VaultItem, error)
	// ListMetadata returns id, label and created_at of userID's items, newest first.
	ListMetadata(ctx context.Context, userID string) ([]*models.VaultItem, error)
	// ListSealed returns userID's items with their encrypted fields, newest first.
	ListSealed(ctx context.Context, userID string) ([]*models.VaultItem, error)
	// Delete removes the item only when userID owns it; otherwise common.ErrorNotFound.
	Delete(ctx context.Context, userID, id string) error
}
