package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// OpenPostgres connects via the pgx stdlib driver and ensures the schema
// exists. Used when CREDTRACK_STORE=postgres; sqlite remains the default
// for single-node deployments.
func OpenPostgres(ctx context.Context, url string) (*sql.DB, error) {
	if url == "" {
		return nil, fmt.Errorf("postgres url is required")
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	if err := ensurePostgresSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ensurePostgresSchema mirrors migrations/0001_init.sql in Postgres types.
// Requirement rows carry no foreign key on account_id; dangling references
// are tolerated and filtered at read time.
func ensurePostgresSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			account_id          text PRIMARY KEY,
			name                text NOT NULL,
			location_count      integer NOT NULL DEFAULT 0,
			access_status       text NOT NULL DEFAULT 'fail',
			registration_status text NOT NULL DEFAULT 'pending',
			city                text,
			state               text,
			created_at          timestamptz NOT NULL DEFAULT now(),
			updated_at          timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS credentials (
			credential_id   text PRIMARY KEY,
			name            text NOT NULL,
			category        text NOT NULL,
			status          text NOT NULL,
			expiration_date date,
			document_url    text,
			description     text,
			created_at      timestamptz NOT NULL DEFAULT now(),
			updated_at      timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS credential_requirements (
			credential_id text NOT NULL REFERENCES credentials(credential_id) ON DELETE CASCADE,
			account_id    text NOT NULL,
			position      integer NOT NULL DEFAULT 0,
			PRIMARY KEY (credential_id, account_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_requirements_account ON credential_requirements (account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_credentials_status ON credentials (status)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure postgres schema: %w", err)
		}
	}
	return nil
}
