// Package httpapi exposes the vault operations as a JSON API over HTTP.
// Callers are identified by a bearer access token; the vault password is
// sent in the request body of every operation that needs the key.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/logging"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"github.com/dmitrijs2005/gophvault/internal/server/services"
)

// VaultService is the part of services.VaultService the API needs.
type VaultService interface {
	Unlock(ctx context.Context, in services.UnlockInput) (*services.UnlockResult, error)
	AddItem(ctx context.Context, in services.AddItemInput) (*services.ItemMetadata, error)
	ListItems(ctx context.Context, userID string) ([]services.ItemMetadata, error)
	RevealItems(ctx context.Context, in services.RevealInput) ([]services.RevealedItem, error)
	DeleteItem(ctx context.Context, in services.DeleteItemInput) error
}

// BlobService is the part of services.BlobService the API needs.
type BlobService interface {
	Get(ctx context.Context, userID string) (*models.VaultBlob, error)
	Put(ctx context.Context, userID, data string) error
}

type HTTPServer struct {
	address   string
	logger    logging.Logger
	vault     VaultService
	blobs     BlobService
	jwtSecret []byte
}

func NewHTTPServer(address string, l logging.Logger, vault VaultService, blobs BlobService, secretKey string) *HTTPServer {
	return &HTTPServer{
		address:   address,
		logger:    l.With("module", "http_server"),
		vault:     vault,
		blobs:     blobs,
		jwtSecret: []byte(secretKey),
	}
}

// Handler returns the routed API with logging and authentication applied.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/vault/unlock", s.handleUnlock)
	mux.HandleFunc("POST /api/vault/items", s.handleAddItem)
	mux.HandleFunc("GET /api/vault/items", s.handleListItems)
	mux.HandleFunc("PUT /api/vault/items", s.handleRevealItems)
	mux.HandleFunc("DELETE /api/vault/items/{id}", s.handleDeleteItem)
	mux.HandleFunc("GET /api/vault/blob", s.handleGetBlob)
	mux.HandleFunc("PUT /api/vault/blob", s.handlePutBlob)

	return s.withRequestLog(s.withAuth(mux))
}

// Run serves the API until ctx is done, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *HTTPServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
