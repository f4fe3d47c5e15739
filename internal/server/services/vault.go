package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/cryptox"
	"github.com/dmitrijs2005/gophvault/internal/dbx"
	"github.com/dmitrijs2005/gophvault/internal/logging"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// UnlockResult reports whether this unlock created the vault.
type UnlockResult struct {
	SetupOccurred bool
}

// ItemMetadata is what may be shown without the vault password.
type ItemMetadata struct {
	ID        string
	Label     string
	CreatedAt time.Time
}

// RevealedItem carries either the decrypted Secret or, when the item could
// not be authenticated, a nil Secret and Error set to "decryption failed".
type RevealedItem struct {
	ID        string
	Label     string
	Secret    *string
	Error     string
	CreatedAt time.Time
}

type txRunner func(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error

// VaultService runs the unlock protocol and the item operations. The
// derived key lives only for the duration of one call and is wiped on return.
type VaultService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *cryptox.PasswordHasher
	runTx       txRunner
	log         logging.Logger
}

type VaultOption func(*VaultService)

// WithHasher overrides the Argon2id parameters used for new vaults.
func WithHasher(h *cryptox.PasswordHasher) VaultOption {
	return func(s *VaultService) { s.hasher = h }
}

// WithTxRunner replaces the transaction runner used for writes.
func WithTxRunner(r func(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error) VaultOption {
	return func(s *VaultService) { s.runTx = r }
}

func NewVaultService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger, opts ...VaultOption) *VaultService {
	s := &VaultService{
		db:          db,
		repomanager: m,
		hasher:      cryptox.NewPasswordHasher(cryptox.DefaultHashParams()),
		log:         log.With("module", "vault_service"),
	}
	s.runTx = func(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
		return dbx.WithTx(ctx, s.db, nil, fn)
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Unlock verifies password against the user's vault, or sets the vault up
// when none exists yet.
func (s *VaultService) Unlock(ctx context.Context, in UnlockInput) (*UnlockResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	password := []byte(in.Password)
	defer common.WipeByteArray(password)

	var setup bool
	err := s.runTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		_, setup, err = s.unlock(ctx, tx, in.UserID, password, true)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "vault unlocked", "user_id", in.UserID, "setup", setup)
	return &UnlockResult{SetupOccurred: setup}, nil
}

// unlock returns the configured profile for userID. With allowSetup the
// vault is created when absent; without it an absent vault is reported as
// an incorrect password.
func (s *VaultService) unlock(ctx context.Context, db dbx.DBTX, userID string, password []byte, allowSetup bool) (*models.VaultProfile, bool, error) {
	repo := s.repomanager.Profiles(db)

	profile, err := repo.Get(ctx, userID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, false, s.internal(ctx, "get profile", err, "user_id", userID)
	}

	if profile.Configured() {
		if err := s.verify(ctx, profile, password); err != nil {
			return nil, false, err
		}
		return profile, false, nil
	}

	if !allowSetup {
		return nil, false, common.ErrIncorrectPassword
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, false, s.internal(ctx, "hash password", err, "user_id", userID)
	}
	salt, err := cryptox.GenerateSalt()
	if err != nil {
		return nil, false, s.internal(ctx, "generate salt", err, "user_id", userID)
	}

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	candidate := &models.VaultProfile{UserID: userID, PasswordHash: hash, VaultSalt: salt}
	won, err := repo.CreateIfAbsent(ctx, candidate)
	if err != nil {
		return nil, false, s.internal(ctx, "create profile", err, "user_id", userID)
	}
	if won {
		s.log.Info(ctx, "vault set up", "user_id", userID)
		return candidate, true, nil
	}

	// Another request configured the vault first; its hash is authoritative.
	s.log.Debug(ctx, "vault setup lost race", "user_id", userID)
	profile, err = repo.Get(ctx, userID)
	if err != nil {
		return nil, false, s.internal(ctx, "reread profile", err, "user_id", userID)
	}
	if !profile.Configured() {
		return nil, false, s.internal(ctx, "reread profile", errors.New("profile still unconfigured"), "user_id", userID)
	}
	if err := s.verify(ctx, profile, password); err != nil {
		return nil, false, err
	}
	return profile, false, nil
}

func (s *VaultService) verify(ctx context.Context, profile *models.VaultProfile, password []byte) error {
	ok, err := cryptox.VerifyPassword(profile.PasswordHash, password)
	if err != nil {
		return s.internal(ctx, "verify password", err, "user_id", profile.UserID)
	}
	if !ok {
		s.log.Warn(ctx, "incorrect vault password", "user_id", profile.UserID)
		return common.ErrIncorrectPassword
	}
	return nil
}

// unlockKey runs the unlock protocol and derives the item key. The caller
// must wipe the returned key.
func (s *VaultService) unlockKey(ctx context.Context, db dbx.DBTX, userID string, password []byte, allowSetup bool) ([]byte, error) {
	profile, _, err := s.unlock(ctx, db, userID, password, allowSetup)
	if err != nil {
		return nil, err
	}

	key, err := cryptox.DeriveKey(password, profile.VaultSalt)
	if err != nil {
		return nil, s.internal(ctx, "derive key", err, "user_id", userID)
	}
	if err := ctx.Err(); err != nil {
		common.WipeByteArray(key)
		return nil, err
	}
	return key, nil
}

// AddItem encrypts in.Secret under the vault key and stores it. A user
// without a vault gets one set up with in.Password.
func (s *VaultService) AddItem(ctx context.Context, in AddItemInput) (*ItemMetadata, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	password := []byte(in.Password)
	defer common.WipeByteArray(password)
	secret := []byte(in.Secret)
	defer common.WipeByteArray(secret)

	var created *models.VaultItem
	err := s.runTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		key, err := s.unlockKey(ctx, tx, in.UserID, password, true)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(key)

		sealed, err := cryptox.Encrypt(secret, key)
		if err != nil {
			return s.internal(ctx, "encrypt item", err, "user_id", in.UserID)
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		item := &models.VaultItem{
			ID:         uuid.NewString(),
			UserID:     in.UserID,
			Label:      strings.TrimSpace(in.Label),
			Ciphertext: sealed.Ciphertext,
			Nonce:      sealed.Nonce,
			AuthTag:    sealed.AuthTag,
		}
		created, err = s.repomanager.Items(tx).Create(ctx, item)
		if err != nil {
			return s.internal(ctx, "create item", err, "user_id", in.UserID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "vault item added", "user_id", in.UserID, "item_id", created.ID)
	return &ItemMetadata{ID: created.ID, Label: created.Label, CreatedAt: created.CreatedAt}, nil
}

// ListItems returns item metadata, newest first. No password is needed.
func (s *VaultService) ListItems(ctx context.Context, userID string) ([]ItemMetadata, error) {
	if userID == "" {
		return nil, common.ErrInvalidInput
	}

	items, err := s.repomanager.Items(s.db).ListMetadata(ctx, userID)
	if err != nil {
		return nil, s.internal(ctx, "list items", err, "user_id", userID)
	}

	result := make([]ItemMetadata, 0, len(items))
	for _, it := range items {
		result = append(result, ItemMetadata{ID: it.ID, Label: it.Label, CreatedAt: it.CreatedAt})
	}
	return result, nil
}

// RevealItems verifies the password, derives the key once and decrypts every
// item. An item that fails authentication is reported on its own and does
// not stop the others.
func (s *VaultService) RevealItems(ctx context.Context, in RevealInput) ([]RevealedItem, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	password := []byte(in.Password)
	defer common.WipeByteArray(password)

	key, err := s.unlockKey(ctx, s.db, in.UserID, password, false)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	items, err := s.repomanager.Items(s.db).ListSealed(ctx, in.UserID)
	if err != nil {
		return nil, s.internal(ctx, "list items", err, "user_id", in.UserID)
	}

	result := make([]RevealedItem, 0, len(items))
	for _, it := range items {
		r := RevealedItem{ID: it.ID, Label: it.Label, CreatedAt: it.CreatedAt}

		plaintext, err := cryptox.Decrypt(&cryptox.Sealed{
			Ciphertext: it.Ciphertext,
			Nonce:      it.Nonce,
			AuthTag:    it.AuthTag,
		}, key)
		if err != nil {
			s.log.Warn(ctx, "vault item failed to decrypt", "user_id", in.UserID, "item_id", it.ID)
			r.Error = common.DecryptionFailedMessage
		} else {
			secret := string(plaintext)
			common.WipeByteArray(plaintext)
			r.Secret = &secret
		}
		result = append(result, r)
	}

	return result, nil
}

// DeleteItem removes an item the caller owns. Items that do not exist,
// belong to someone else or have a malformed id are all common.ErrorNotFound.
func (s *VaultService) DeleteItem(ctx context.Context, in DeleteItemInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if _, err := uuid.Parse(in.ItemID); err != nil {
		return common.ErrorNotFound
	}

	err := s.repomanager.Items(s.db).Delete(ctx, in.UserID, in.ItemID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return s.internal(ctx, "delete item", err, "user_id", in.UserID, "item_id", in.ItemID)
	}

	s.log.Info(ctx, "vault item deleted", "user_id", in.UserID, "item_id", in.ItemID)
	return nil
}

// internal logs a storage or crypto failure and hides it behind common.ErrorInternal.
func (s *VaultService) internal(ctx context.Context, op string, err error, args ...any) error {
	s.log.Error(ctx, op+" failed", append(args, "error", err)...)
	return common.ErrorInternal
}
