package memory

import (
	"context"
	"sync"

	"github.com/credtrack/server/internal/credtrack/store"
	"github.com/credtrack/server/internal/credtrack/types"
)

// CredentialStore is an in-memory record source for credentials, used in
// dev and tests. Records are copied on the way in and out so callers can
// never alias the stored snapshot; ReplaceCredential swaps the whole
// record under the write lock, which gives the atomic replace-by-id
// semantics the engine relies on.
type CredentialStore struct {
	mu    sync.RWMutex
	creds map[string]types.Credential
	order []string // insertion order, for deterministic listings
}

func NewCredentialStore(seed []types.Credential) *CredentialStore {
	s := &CredentialStore{
		creds: make(map[string]types.Credential, len(seed)),
	}
	for _, c := range seed {
		if _, ok := s.creds[c.ID]; !ok {
			s.order = append(s.order, c.ID)
		}
		s.creds[c.ID] = cloneCredential(c)
	}
	return s
}

func (s *CredentialStore) ListCredentials(_ context.Context) ([]types.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Credential, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneCredential(s.creds[id]))
	}
	return out, nil
}

func (s *CredentialStore) GetCredential(_ context.Context, id string) (types.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.creds[id]
	if !ok {
		return types.Credential{}, store.ErrNotFound
	}
	return cloneCredential(c), nil
}

func (s *CredentialStore) ReplaceCredential(_ context.Context, cred types.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.creds[cred.ID]; !ok {
		return store.ErrNotFound
	}
	s.creds[cred.ID] = cloneCredential(cred)
	return nil
}

func cloneCredential(c types.Credential) types.Credential {
	if c.ExpirationDate != nil {
		d := *c.ExpirationDate
		c.ExpirationDate = &d
	}
	if c.RequiredBy != nil {
		c.RequiredBy = append([]string(nil), c.RequiredBy...)
	}
	return c
}
