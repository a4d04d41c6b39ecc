package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/credtrack/server/internal/credtrack/store"
	"github.com/credtrack/server/internal/credtrack/types"
)

// CredentialStore is the Postgres record source. Unlike the sqlite store
// there is no single-writer worker: a replace runs in its own transaction
// and Postgres row locking provides the atomic replace-by-id semantics.
type CredentialStore struct {
	db *sql.DB
}

func NewCredentialStore(db *sql.DB) *CredentialStore {
	return &CredentialStore{db: db}
}

func (s *CredentialStore) ListCredentials(ctx context.Context) ([]types.Credential, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT credential_id, name, category, status, expiration_date, document_url, description
FROM credentials
ORDER BY created_at, credential_id`)
	if err != nil {
		return nil, fmt.Errorf("ListCredentials query: %w", err)
	}
	defer rows.Close()

	var creds []types.Credential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		creds = append(creds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListCredentials rows: %w", err)
	}

	requiredBy, err := s.loadAllRequirements(ctx)
	if err != nil {
		return nil, err
	}
	for i := range creds {
		creds[i].RequiredBy = requiredBy[creds[i].ID]
	}
	return creds, nil
}

func (s *CredentialStore) GetCredential(ctx context.Context, id string) (types.Credential, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT credential_id, name, category, status, expiration_date, document_url, description
FROM credentials
WHERE credential_id = $1`, id)

	c, err := scanCredential(row)
	if err == sql.ErrNoRows {
		return types.Credential{}, store.ErrNotFound
	}
	if err != nil {
		return types.Credential{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT account_id
FROM credential_requirements
WHERE credential_id = $1
ORDER BY position`, id)
	if err != nil {
		return types.Credential{}, fmt.Errorf("GetCredential requirements: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var accountID string
		if err := rows.Scan(&accountID); err != nil {
			return types.Credential{}, fmt.Errorf("GetCredential scan requirement: %w", err)
		}
		c.RequiredBy = append(c.RequiredBy, accountID)
	}
	if err := rows.Err(); err != nil {
		return types.Credential{}, fmt.Errorf("GetCredential requirement rows: %w", err)
	}
	return c, nil
}

func (s *CredentialStore) ReplaceCredential(ctx context.Context, cred types.Credential) error {
	id := strings.TrimSpace(cred.ID)
	if id == "" {
		return store.ErrNotFound
	}
	if !cred.Status.Valid() {
		return fmt.Errorf("ReplaceCredential %s: invalid status %q", id, cred.Status)
	}

	var expiration sql.NullTime
	if cred.ExpirationDate != nil {
		expiration = sql.NullTime{Time: cred.ExpirationDate.UTC(), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ReplaceCredential begin: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
UPDATE credentials
SET name = $1,
    category = $2,
    status = $3,
    expiration_date = $4,
    document_url = $5,
    description = $6,
    updated_at = now()
WHERE credential_id = $7`,
		cred.Name, cred.Category, cred.Status, expiration,
		nullString(cred.DocumentURL), nullString(cred.Description), id,
	)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("ReplaceCredential update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_ = tx.Rollback()
		return store.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `
DELETE FROM credential_requirements WHERE credential_id = $1`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("ReplaceCredential clear requirements: %w", err)
	}
	for i, accountID := range cred.RequiredBy {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO credential_requirements(credential_id, account_id, position)
VALUES ($1, $2, $3)`, id, accountID, i); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("ReplaceCredential insert requirement: %w", err)
		}
	}

	return tx.Commit()
}

func (s *CredentialStore) loadAllRequirements(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT credential_id, account_id
FROM credential_requirements
ORDER BY credential_id, position`)
	if err != nil {
		return nil, fmt.Errorf("load requirements: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var credentialID, accountID string
		if err := rows.Scan(&credentialID, &accountID); err != nil {
			return nil, fmt.Errorf("scan requirement: %w", err)
		}
		out[credentialID] = append(out[credentialID], accountID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("requirement rows: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCredential(row rowScanner) (types.Credential, error) {
	var c types.Credential
	var expiration sql.NullTime
	var documentURL, description sql.NullString

	err := row.Scan(&c.ID, &c.Name, &c.Category, &c.Status, &expiration, &documentURL, &description)
	if err == sql.ErrNoRows {
		return types.Credential{}, err
	}
	if err != nil {
		return types.Credential{}, fmt.Errorf("scan credential: %w", err)
	}

	if !c.Status.Valid() {
		return types.Credential{}, fmt.Errorf("credential %s: unknown status %q", c.ID, c.Status)
	}
	if !c.Category.Valid() {
		return types.Credential{}, fmt.Errorf("credential %s: unknown category %q", c.ID, c.Category)
	}

	if expiration.Valid {
		t := time.Date(
			expiration.Time.Year(), expiration.Time.Month(), expiration.Time.Day(),
			0, 0, 0, 0, time.UTC,
		)
		c.ExpirationDate = &t
	}
	c.DocumentURL = documentURL.String
	c.Description = description.String
	return c, nil
}

func nullString(v string) sql.NullString {
	if strings.TrimSpace(v) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}
