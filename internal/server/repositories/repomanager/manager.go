package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophvault/internal/dbx"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/blobs"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/items"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/profiles"
)

// RepositoryManager vends repositories bound to a DB handle or transaction
// and owns the schema lifecycle.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	CheckSchema(ctx context.Context, db *sql.DB) error
	Profiles(db dbx.DBTX) profiles.Repository
	Items(db dbx.DBTX) items.Repository
	Blobs(db dbx.DBTX) blobs.Repository
}
