package blobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/dbx"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
)

// PostgresRepository keeps blobs in the vault_blobs table.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.VaultBlob, error) {
	query := `SELECT user_id, encrypted_data, updated_at FROM vault_blobs WHERE user_id = $1`

	b := &models.VaultBlob{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&b.UserID, &b.Data, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return b, nil
}

func (r *PostgresRepository) Put(ctx context.Context, blob *models.VaultBlob) error {
	query := `
		INSERT INTO vault_blobs (user_id, encrypted_data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id)
		DO UPDATE SET
			encrypted_data = EXCLUDED.encrypted_data,
			updated_at = now()
		RETURNING updated_at;
	`
	if err := r.db.QueryRowContext(ctx, query, blob.UserID, blob.Data).Scan(&blob.UpdatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
