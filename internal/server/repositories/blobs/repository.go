// Package blobs stores the opaque, client-encrypted vault document kept per
// user. Two backends exist: a PostgreSQL table and an S3-compatible bucket.
package blobs

import (
	"context"

	"github.com/dmitrijs2005/gophvault/internal/server/models"
)

type Repository interface {
	// Get returns common.ErrorNotFound when the user has no blob.
	Get(ctx context.Context, userID string) (*models.VaultBlob, error)
	// Put creates or replaces the user's blob.
	Put(ctx context.Context, blob *models.VaultBlob) error
}
