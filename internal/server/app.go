// Package server wires the vault server together: database and migrations,
// blob backend, services, and the HTTP API plus gRPC health endpoints.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophvault/internal/logging"
	"github.com/dmitrijs2005/gophvault/internal/server/config"
	gs "github.com/dmitrijs2005/gophvault/internal/server/grpc"
	"github.com/dmitrijs2005/gophvault/internal/server/httpapi"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/blobs"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophvault/internal/server/services"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	vaultService *services.VaultService
	blobService  *services.BlobService
}

// Seams for tests.
var (
	openDB = func(dsn string) (*sql.DB, error) { return sql.Open("pgx", dsn) }
	newS3  = blobs.NewS3Client
)

// NewApp opens the database and builds the services. The schema is not
// touched until Run.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	var opts []repomanager.Option
	if c.BlobBackend == config.BlobBackendS3 {
		client, err := newS3(ctx, c)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		opts = append(opts, repomanager.WithS3Blobs(blobs.NewS3Repository(client, c.S3Bucket)))
	}
	rm := repomanager.NewPostgresRepositoryManager(opts...)

	return &App{
		config:       c,
		logger:       logger,
		db:           db,
		repomanager:  rm,
		vaultService: services.NewVaultService(db, rm, logger),
		blobService:  services.NewBlobService(db, rm, logger),
	}, nil
}

// prepareSchema migrates the database and refuses to continue when the
// resulting version does not match the embedded migrations.
func (app *App) prepareSchema(ctx context.Context) error {
	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	if err := app.repomanager.CheckSchema(ctx, app.db); err != nil {
		return err
	}
	return nil
}

// Run serves until SIGINT/SIGTERM/SIGQUIT or until a server fails.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")

	if err := app.prepareSchema(ctx); err != nil {
		app.logger.Error(ctx, "schema check failed", "error", err)
		return err
	}

	grpcServer := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger)
	httpServer := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger,
		app.vaultService, app.blobService, app.config.SecretKey)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return grpcServer.Run(ctx) })
	g.Go(func() error { return httpServer.Run(ctx) })

	grpcServer.SetServing(true)

	if err := g.Wait(); err != nil {
		app.logger.Error(ctx, "server stopped", "error", err)
		return err
	}
	app.logger.Info(ctx, "App stopped")
	return nil
}
