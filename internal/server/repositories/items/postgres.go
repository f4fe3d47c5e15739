package items

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/dbx"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, item *models.VaultItem) (*models.VaultItem, error) {
	query := `INSERT INTO vault_items (id, user_id, label, ciphertext, nonce, auth_tag)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		item.ID, item.UserID, item.Label, item.Ciphertext, item.Nonce, item.AuthTag).Scan(&item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

func (r *PostgresRepository) ListMetadata(ctx context.Context, userID string) ([]*models.VaultItem, error) {
	query := `SELECT id, user_id, label, created_at FROM vault_items
		WHERE user_id = $1
		ORDER BY created_at DESC`

	return r.list(ctx, query, userID, func(rows *sql.Rows, it *models.VaultItem) error {
		return rows.Scan(&it.ID, &it.UserID, &it.Label, &it.CreatedAt)
	})
}

func (r *PostgresRepository) ListSealed(ctx context.Context, userID string) ([]*models.VaultItem, error) {
	query := `SELECT id, user_id, label, ciphertext, nonce, auth_tag, created_at FROM vault_items
		WHERE user_id = $1
		ORDER BY created_at DESC`

	return r.list(ctx, query, userID, func(rows *sql.Rows, it *models.VaultItem) error {
		return rows.Scan(&it.ID, &it.UserID, &it.Label, &it.Ciphertext, &it.Nonce, &it.AuthTag, &it.CreatedAt)
	})
}

func (r *PostgresRepository) list(ctx context.Context, query, userID string, scan func(*sql.Rows, *models.VaultItem) error) ([]*models.VaultItem, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.VaultItem, 0)
	for rows.Next() {
		var item models.VaultItem
		if err := scan(rows, &item); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM vault_items WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	ok, err := dbx.Affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrorNotFound
	}
	return nil
}
