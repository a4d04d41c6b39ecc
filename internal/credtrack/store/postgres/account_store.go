package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/credtrack/server/internal/credtrack/store"
	"github.com/credtrack/server/internal/credtrack/types"
)

type AccountStore struct {
	db *sql.DB
}

func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) ListAccounts(ctx context.Context) ([]types.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT account_id, name, location_count, access_status, registration_status, city, state
FROM accounts
ORDER BY created_at, account_id`)
	if err != nil {
		return nil, fmt.Errorf("ListAccounts query: %w", err)
	}
	defer rows.Close()

	var accounts []types.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListAccounts rows: %w", err)
	}
	return accounts, nil
}

func (s *AccountStore) GetAccount(ctx context.Context, id string) (types.Account, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT account_id, name, location_count, access_status, registration_status, city, state
FROM accounts
WHERE account_id = $1`, id)

	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return types.Account{}, store.ErrNotFound
	}
	if err != nil {
		return types.Account{}, err
	}
	return a, nil
}

func scanAccount(row rowScanner) (types.Account, error) {
	var a types.Account
	var city, state sql.NullString

	err := row.Scan(&a.ID, &a.Name, &a.LocationCount, &a.AccessStatus, &a.RegistrationStatus, &city, &state)
	if err == sql.ErrNoRows {
		return types.Account{}, err
	}
	if err != nil {
		return types.Account{}, fmt.Errorf("scan account: %w", err)
	}

	a.City = city.String
	a.State = state.String
	return a, nil
}
