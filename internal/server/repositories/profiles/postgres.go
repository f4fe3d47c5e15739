package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/dbx"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.VaultProfile, error) {
	query := `SELECT user_id, password_hash, vault_salt, created_at FROM vault_profiles
		WHERE user_id = $1`

	var (
		p    models.VaultProfile
		hash sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&p.UserID, &hash, &p.VaultSalt, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	p.PasswordHash = hash.String

	return &p, nil
}

func (r *PostgresRepository) CreateIfAbsent(ctx context.Context, profile *models.VaultProfile) (bool, error) {
	query := `
		INSERT INTO vault_profiles (user_id, password_hash, vault_salt)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET
			password_hash = EXCLUDED.password_hash,
			vault_salt = EXCLUDED.vault_salt
			WHERE vault_profiles.password_hash IS NULL;
	`
	res, err := r.db.ExecContext(ctx, query, profile.UserID, profile.PasswordHash, profile.VaultSalt)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return dbx.Affected(res)
}
