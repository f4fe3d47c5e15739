// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/dbx"
	"github.com/dmitrijs2005/gophvault/internal/server/migrations"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/blobs"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/items"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/profiles"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories. Blobs go to
// an S3 bucket instead when one is configured with WithS3Blobs.
type PostgresRepositoryManager struct {
	s3Blobs *blobs.S3Repository
}

type Option func(*PostgresRepositoryManager)

// WithS3Blobs routes Blobs() to the given S3 repository.
func WithS3Blobs(r *blobs.S3Repository) Option {
	return func(m *PostgresRepositoryManager) { m.s3Blobs = r }
}

func (m *PostgresRepositoryManager) Profiles(db dbx.DBTX) profiles.Repository {
	return profiles.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Items(db dbx.DBTX) items.Repository {
	return items.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Blobs(db dbx.DBTX) blobs.Repository {
	if m.s3Blobs != nil {
		return m.s3Blobs
	}
	return blobs.NewPostgresRepository(db)
}

// Seams for tests.
var (
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return goose.UpContext(ctx, db, dir, opts...)
	}
	gooseDBVersion = goose.GetDBVersionContext
)

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// CheckSchema compares the database schema version with the newest embedded
// migration and returns common.ErrSchemaMismatch when they differ.
func (m *PostgresRepositoryManager) CheckSchema(ctx context.Context, db *sql.DB) error {
	want, err := LatestVersion(migrations.Migrations)
	if err != nil {
		return err
	}
	got, err := gooseDBVersion(ctx, db)
	if err != nil {
		return fmt.Errorf("db version: %w", err)
	}
	if got != want {
		return fmt.Errorf("%w: database at %d, expected %d", common.ErrSchemaMismatch, got, want)
	}
	return nil
}

// LatestVersion returns the highest migration version found in fsys.
func LatestVersion(fsys fs.FS) (int64, error) {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return 0, err
	}
	var latest int64
	for _, n := range names {
		v, err := goose.NumericComponent(n)
		if err != nil {
			return 0, fmt.Errorf("migration %s: %w", n, err)
		}
		if v > latest {
			latest = v
		}
	}
	if latest == 0 {
		return 0, fmt.Errorf("no migrations embedded")
	}
	return latest, nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager(opts ...Option) RepositoryManager {
	m := &PostgresRepositoryManager{}
	for _, o := range opts {
		o(m)
	}
	return m
}
