package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/logging"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/repomanager"
)

// BlobService stores one opaque, client-encrypted document per user.
type BlobService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewBlobService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *BlobService {
	return &BlobService{db: db, repomanager: m, log: log.With("module", "blob_service")}
}

// Get returns the user's blob, or nil when none was stored.
func (s *BlobService) Get(ctx context.Context, userID string) (*models.VaultBlob, error) {
	if userID == "" {
		return nil, common.ErrInvalidInput
	}

	b, err := s.repomanager.Blobs(s.db).Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		s.log.Error(ctx, "get blob failed", "user_id", userID, "error", err)
		return nil, common.ErrorInternal
	}
	return b, nil
}

func (s *BlobService) Put(ctx context.Context, userID, data string) error {
	if userID == "" {
		return common.ErrInvalidInput
	}
	if data == "" {
		return common.ErrBlobRequired
	}

	if err := s.repomanager.Blobs(s.db).Put(ctx, &models.VaultBlob{UserID: userID, Data: data}); err != nil {
		s.log.Error(ctx, "put blob failed", "user_id", userID, "error", err)
		return common.ErrorInternal
	}

	s.log.Info(ctx, "vault blob stored", "user_id", userID, "size", len(data))
	return nil
}
