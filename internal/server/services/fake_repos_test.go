package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/cryptox"
	"github.com/dmitrijs2005/gophvault/internal/dbx"
	"github.com/dmitrijs2005/gophvault/internal/logging"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/blobs"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/items"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/profiles"
)

// fakeStore is an in-memory RepositoryManager shared by all repositories.
type fakeStore struct {
	mu       sync.Mutex
	profiles map[string]*models.VaultProfile
	items    map[string]*models.VaultItem
	blobs    map[string]*models.VaultBlob
	clock    time.Time

	// beforeCreateProfile runs inside CreateIfAbsent before the conditional
	// write, letting a test install a competing profile.
	beforeCreateProfile func()

	profileGetErr    error
	profileCreateErr error
	itemCreateErr    error
	itemListErr      error
	itemDeleteErr    error
	blobErr          error

	createProfileCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles: map[string]*models.VaultProfile{},
		items:    map[string]*models.VaultItem{},
		blobs:    map[string]*models.VaultBlob{},
		clock:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeStore) CheckSchema(context.Context, *sql.DB) error   { return nil }

func (f *fakeStore) Profiles(dbx.DBTX) profiles.Repository { return fakeProfiles{f} }
func (f *fakeStore) Items(dbx.DBTX) items.Repository       { return fakeItems{f} }
func (f *fakeStore) Blobs(dbx.DBTX) blobs.Repository       { return fakeBlobs{f} }

func (f *fakeStore) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

type fakeProfiles struct{ f *fakeStore }

func (r fakeProfiles) Get(_ context.Context, userID string) (*models.VaultProfile, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.profileGetErr != nil {
		return nil, r.f.profileGetErr
	}
	p, ok := r.f.profiles[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	cp.VaultSalt = append([]byte(nil), p.VaultSalt...)
	return &cp, nil
}

func (r fakeProfiles) CreateIfAbsent(_ context.Context, p *models.VaultProfile) (bool, error) {
	if r.f.beforeCreateProfile != nil {
		r.f.beforeCreateProfile()
	}
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.createProfileCalls++
	if r.f.profileCreateErr != nil {
		return false, r.f.profileCreateErr
	}
	if existing, ok := r.f.profiles[p.UserID]; ok && existing.Configured() {
		return false, nil
	}
	cp := *p
	cp.VaultSalt = append([]byte(nil), p.VaultSalt...)
	cp.CreatedAt = r.f.tick()
	r.f.profiles[p.UserID] = &cp
	return true, nil
}

type fakeItems struct{ f *fakeStore }

func (r fakeItems) Create(_ context.Context, it *models.VaultItem) (*models.VaultItem, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.itemCreateErr != nil {
		return nil, r.f.itemCreateErr
	}
	it.CreatedAt = r.f.tick()
	cp := *it
	r.f.items[it.ID] = &cp
	return it, nil
}

func (r fakeItems) list(userID string, withPayload bool) ([]*models.VaultItem, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.itemListErr != nil {
		return nil, r.f.itemListErr
	}
	out := make([]*models.VaultItem, 0)
	for _, it := range r.f.items {
		if it.UserID != userID {
			continue
		}
		cp := *it
		if !withPayload {
			cp.Ciphertext, cp.Nonce, cp.AuthTag = nil, nil, nil
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r fakeItems) ListMetadata(_ context.Context, userID string) ([]*models.VaultItem, error) {
	return r.list(userID, false)
}

func (r fakeItems) ListSealed(_ context.Context, userID string) ([]*models.VaultItem, error) {
	return r.list(userID, true)
}

func (r fakeItems) Delete(_ context.Context, userID, id string) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.itemDeleteErr != nil {
		return r.f.itemDeleteErr
	}
	it, ok := r.f.items[id]
	if !ok || it.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.f.items, id)
	return nil
}

type fakeBlobs struct{ f *fakeStore }

func (r fakeBlobs) Get(_ context.Context, userID string) (*models.VaultBlob, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.blobErr != nil {
		return nil, r.f.blobErr
	}
	b, ok := r.f.blobs[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *b
	return &cp, nil
}

func (r fakeBlobs) Put(_ context.Context, b *models.VaultBlob) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.blobErr != nil {
		return r.f.blobErr
	}
	b.UpdatedAt = r.f.tick()
	cp := *b
	r.f.blobs[b.UserID] = &cp
	return nil
}

// passthroughTx runs fn without a database.
func passthroughTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return fn(ctx, nil)
}

func cheapHasher() *cryptox.PasswordHasher {
	return cryptox.NewPasswordHasher(cryptox.HashParams{Memory: 1024, Time: 1, Threads: 1, SaltLen: 16, KeyLen: 32})
}

func newTestVaultService(store *fakeStore) *VaultService {
	return NewVaultService(nil, store, logging.Nop{}, WithHasher(cheapHasher()), WithTxRunner(passthroughTx))
}
