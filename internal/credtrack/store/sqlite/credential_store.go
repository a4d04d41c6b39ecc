package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/credtrack/server/internal/db"

	"github.com/credtrack/server/internal/credtrack/store"
	"github.com/credtrack/server/internal/credtrack/types"
)

// dateLayout is the storage format for expiration dates: a calendar date
// with no time component.
const dateLayout = "2006-01-02"

// CredentialStore reads off the shared connection and funnels every write
// through the single-writer worker, so a replace is one transaction and
// readers never see a half-written record.
type CredentialStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewCredentialStore(db *sql.DB, writer *dbpkg.Worker) *CredentialStore {
	return &CredentialStore{db: db, writer: writer}
}

func (s *CredentialStore) ListCredentials(ctx context.Context) ([]types.Credential, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT credential_id, name, category, status, expiration_date, document_url, description
FROM credentials
ORDER BY rowid;`)
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
WHERE credential_id = ?;`, id)

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
WHERE credential_id = ?
ORDER BY position;`, id)
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

	var expiration any
	if cred.ExpirationDate != nil {
		expiration = cred.ExpirationDate.UTC().Format(dateLayout)
	}
	var documentURL any
	if cred.DocumentURL != "" {
		documentURL = cred.DocumentURL
	}
	var description any
	if cred.Description != "" {
		description = cred.Description
	}
	nowMs := time.Now().UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE credentials
SET name = ?,
    category = ?,
    status = ?,
    expiration_date = ?,
    document_url = ?,
    description = ?,
    updated_at_ms = ?
WHERE credential_id = ?;`,
			cred.Name, cred.Category, cred.Status, expiration,
			documentURL, description, nowMs, id,
		)
		if err != nil {
			return fmt.Errorf("ReplaceCredential update: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrNotFound
		}

		// Rewrite the requirement relation to match the new record.
		if _, err := tx.ExecContext(ctx, `
DELETE FROM credential_requirements WHERE credential_id = ?;`, id); err != nil {
			return fmt.Errorf("ReplaceCredential clear requirements: %w", err)
		}
		for i, accountID := range cred.RequiredBy {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO credential_requirements(credential_id, account_id, position)
VALUES (?, ?, ?);`, id, accountID, i); err != nil {
				return fmt.Errorf("ReplaceCredential insert requirement: %w", err)
			}
		}
		return nil
	})
}

func (s *CredentialStore) loadAllRequirements(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT credential_id, account_id
FROM credential_requirements
ORDER BY credential_id, position;`)
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
	var expiration, documentURL, description sql.NullString

	err := row.Scan(&c.ID, &c.Name, &c.Category, &c.Status, &expiration, &documentURL, &description)
	if err == sql.ErrNoRows {
		return types.Credential{}, err
	}
	if err != nil {
		return types.Credential{}, fmt.Errorf("scan credential: %w", err)
	}

	// The status taxonomy is closed; reject rows that drifted outside it
	// rather than letting them fall through the scoring switches.
	if !c.Status.Valid() {
		return types.Credential{}, fmt.Errorf("credential %s: unknown status %q", c.ID, c.Status)
	}
	if !c.Category.Valid() {
		return types.Credential{}, fmt.Errorf("credential %s: unknown category %q", c.ID, c.Category)
	}

	if expiration.Valid {
		t, err := time.ParseInLocation(dateLayout, expiration.String, time.UTC)
		if err != nil {
			return types.Credential{}, fmt.Errorf("credential %s: bad expiration_date %q: %w", c.ID, expiration.String, err)
		}
		c.ExpirationDate = &t
	}
	c.DocumentURL = documentURL.String
	c.Description = description.String
	return c, nil
}
