package store

import (
	"context"
	"errors"

	"github.com/credtrack/server/internal/credtrack/types"
)

// ErrNotFound signals an unknown credential or account identifier. It is
// an expected outcome, not a failure; callers branch on it with errors.Is.
var ErrNotFound = errors.New("record not found")

// CredentialStore is the credential half of the record source. List order
// must be deterministic (insertion order) so enrichment output is stable
// across calls on an unchanged snapshot.
type CredentialStore interface {
	ListCredentials(ctx context.Context) ([]types.Credential, error)
	GetCredential(ctx context.Context, id string) (types.Credential, error)

	// ReplaceCredential atomically swaps the stored record with the same
	// ID. Readers never observe a partially-written record; concurrent
	// replacements resolve to last-write-wins. Returns ErrNotFound if no
	// record with that ID exists.
	ReplaceCredential(ctx context.Context, cred types.Credential) error
}

// AccountStore is the account half of the record source.
type AccountStore interface {
	ListAccounts(ctx context.Context) ([]types.Account, error)
	GetAccount(ctx context.Context, id string) (types.Account, error)
}
