package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/blobs"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/items"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/profiles"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db := newDB(t)
	m := NewPostgresRepositoryManager()

	assert.IsType(t, &profiles.PostgresRepository{}, m.Profiles(db))
	assert.IsType(t, &items.PostgresRepository{}, m.Items(db))
	assert.IsType(t, &blobs.PostgresRepository{}, m.Blobs(db))
}

func TestWithS3Blobs(t *testing.T) {
	db := newDB(t)
	s3repo := blobs.NewS3Repository(nil, "vault")

	m := NewPostgresRepositoryManager(WithS3Blobs(s3repo))

	assert.Same(t, s3repo, m.Blobs(db))
	assert.IsType(t, &items.PostgresRepository{}, m.Items(db))
}

func TestRunMigrations(t *testing.T) {
	db := newDB(t)
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	t.Run("success", func(t *testing.T) {
		gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
			assert.Equal(t, ".", dir)
			assert.Empty(t, opts)
			return nil
		}
		require.NoError(t, NewPostgresRepositoryManager().RunMigrations(context.Background(), db))
	})

	t.Run("error", func(t *testing.T) {
		gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
			return errors.New("boom")
		}
		err := NewPostgresRepositoryManager().RunMigrations(context.Background(), db)
		require.EqualError(t, err, "boom")
	})
}

func TestCheckSchema(t *testing.T) {
	db := newDB(t)
	orig := gooseDBVersion
	t.Cleanup(func() { gooseDBVersion = orig })

	tests := []struct {
		name    string
		version int64
		err     error
		wantErr error
	}{
		{name: "up to date", version: 3},
		{name: "behind", version: 2, wantErr: common.ErrSchemaMismatch},
		{name: "ahead", version: 4, wantErr: common.ErrSchemaMismatch},
		{name: "version error", err: errors.New("no table")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gooseDBVersion = func(ctx context.Context, db *sql.DB) (int64, error) {
				return tt.version, tt.err
			}

			err := NewPostgresRepositoryManager().CheckSchema(context.Background(), db)
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.err != nil:
				require.Error(t, err)
				assert.NotErrorIs(t, err, common.ErrSchemaMismatch)
			default:
				require.NoError(t, err)
			}
		})
	}
}

func TestLatestVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"00001_a.sql": {Data: []byte("-- +goose Up")},
		"00010_b.sql": {Data: []byte("-- +goose Up")},
		"00002_c.sql": {Data: []byte("-- +goose Up")},
		"README.md":   {Data: []byte("x")},
	}
	v, err := LatestVersion(fsys)
	require.NoError(t, err)
	assert.Equal(t, int64(10), v)

	_, err = LatestVersion(fstest.MapFS{})
	require.Error(t, err)

	_, err = LatestVersion(fstest.MapFS{"abc.sql": {Data: []byte("x")}})
	require.Error(t, err)
}
