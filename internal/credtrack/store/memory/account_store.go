package memory

import (
	"context"
	"sync"

	"github.com/credtrack/server/internal/credtrack/store"
	"github.com/credtrack/server/internal/credtrack/types"
)

// AccountStore is an in-memory record source for accounts. Accounts are
// read-only through the engine, so there is no replace operation.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]types.Account
	order    []string
}

func NewAccountStore(seed []types.Account) *AccountStore {
	s := &AccountStore{
		accounts: make(map[string]types.Account, len(seed)),
	}
	for _, a := range seed {
		if _, ok := s.accounts[a.ID]; !ok {
			s.order = append(s.order, a.ID)
		}
		s.accounts[a.ID] = a
	}
	return s
}

func (s *AccountStore) ListAccounts(_ context.Context) ([]types.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Account, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.accounts[id])
	}
	return out, nil
}

func (s *AccountStore) GetAccount(_ context.Context, id string) (types.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return types.Account{}, store.ErrNotFound
	}
	return a, nil
}
