package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/deppfellow/sovyx-backend/internal/model"
)

var ErrCredentialNotFound = errors.New("credential not found")

// CredentialStore holds the current Graph API token of every tenant.
type CredentialStore interface {
	Get(ctx context.Context, tenant string) (model.Credential, error)
	List(ctx context.Context) ([]model.Credential, error)
	// Seed writes a configured credential. Implementations may keep a token
	// that was refreshed since it was last seeded.
	Seed(ctx context.Context, cred model.Credential) error
	// SaveRefreshed stores a token returned by the refresh endpoint.
	SaveRefreshed(ctx context.Context, tenant, accessToken string) error
}

// MemoryCredentialStore keeps credentials for the lifetime of the process.
type MemoryCredentialStore struct {
	mu    sync.RWMutex
	creds map[string]model.Credential
	now   func() time.Time
}

func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{
		creds: make(map[string]model.Credential),
		now:   time.Now,
	}
}

func (s *MemoryCredentialStore) Get(_ context.Context, tenant string) (model.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.creds[tenant]
	if !ok {
		return model.Credential{}, ErrCredentialNotFound
	}
	return cred, nil
}

func (s *MemoryCredentialStore) List(_ context.Context) ([]model.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Credential, 0, len(s.creds))
	for _, cred := range s.creds {
		out = append(out, cred)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tenant < out[j].Tenant })
	return out, nil
}

// Seed always overwrites; nothing refreshed survives a restart anyway.
func (s *MemoryCredentialStore) Seed(_ context.Context, cred model.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred.UpdatedAt = s.now()
	cred.RefreshedAt = nil
	s.creds[cred.Tenant] = cred
	return nil
}

func (s *MemoryCredentialStore) SaveRefreshed(_ context.Context, tenant, accessToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, ok := s.creds[tenant]
	if !ok {
		return ErrCredentialNotFound
	}

	now := s.now()
	cred.AccessToken = accessToken
	cred.RefreshedAt = &now
	cred.UpdatedAt = now
	s.creds[tenant] = cred
	return nil
}
