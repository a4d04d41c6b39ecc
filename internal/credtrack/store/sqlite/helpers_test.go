package sqlite_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/credtrack/server/internal/db"
)

// openTestDB returns an in-memory SQLite connection with the same PRAGMAs
// and schema as production.  The connection is closed automatically when the
// test finishes.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// Each call gets a unique in-memory database.  The shared-cache URI
	// keeps the database alive for the lifetime of the connection pool
	// (important because sql.DB may close/reopen the underlying conn).
	dsn := fmt.Sprintf(
		"file:test_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)",
		t.Name(),
	)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("openTestDB: sql.Open: %v", err)
	}

	// Match production: single connection for SQLite safety.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		conn.Close()
		t.Fatalf("openTestDB: ping: %v", err)
	}

	// Apply the same migrations as production.
	if err := db.Migrate(context.Background(), conn); err != nil {
		conn.Close()
		t.Fatalf("openTestDB: migrate: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// newTestWriter returns a db.Worker backed by conn.  The worker is closed
// automatically when the test finishes.
func newTestWriter(t *testing.T, conn *sql.DB) *db.Worker {
	t.Helper()

	w := db.NewWorker(conn)
	t.Cleanup(func() { w.Close() })
	return w
}

func insertAccount(t *testing.T, conn *sql.DB, id, name string, locations int, access, registration string) {
	t.Helper()

	now := time.Now().UTC().UnixMilli()
	_, err := conn.Exec(
		`INSERT INTO accounts (account_id, name, location_count, access_status, registration_status, created_at_ms, updated_at_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, name, locations, access, registration, now, now,
	)
	if err != nil {
		t.Fatalf("insertAccount(%s): %v", id, err)
	}
}

// insertCredential writes a credential row plus its requirement edges.
// expiration is a YYYY-MM-DD string, or "" for none.
func insertCredential(t *testing.T, conn *sql.DB, id, name, category, status, expiration string, requiredBy ...string) {
	t.Helper()

	var exp any
	if expiration != "" {
		exp = expiration
	}
	now := time.Now().UTC().UnixMilli()
	_, err := conn.Exec(
		`INSERT INTO credentials (credential_id, name, category, status, expiration_date, document_url, description, created_at_ms, updated_at_ms)
		 VALUES (?, ?, ?, ?, ?, NULL, NULL, ?, ?)`,
		id, name, category, status, exp, now, now,
	)
	if err != nil {
		t.Fatalf("insertCredential(%s): %v", id, err)
	}

	for i, acct := range requiredBy {
		_, err := conn.Exec(
			`INSERT INTO credential_requirements (credential_id, account_id, position) VALUES (?, ?, ?)`,
			id, acct, i,
		)
		if err != nil {
			t.Fatalf("insertCredential(%s): requirement %s: %v", id, acct, err)
		}
	}
}
