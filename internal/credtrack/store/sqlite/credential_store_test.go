package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/credtrack/server/internal/credtrack/store"
	sqlitestore "github.com/credtrack/server/internal/credtrack/store/sqlite"
	"github.com/credtrack/server/internal/credtrack/types"
)

// ═══════════════════════════════════════════════════════════════════════════
// ListCredentials
// ═══════════════════════════════════════════════════════════════════════════

func TestCredentialStore_ListCredentials_InsertionOrder(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	cs := sqlitestore.NewCredentialStore(conn, w)

	insertCredential(t, conn, "cred_b", "Workers Comp", "policy", "verified", "2026-07-01", "acct_1")
	insertCredential(t, conn, "cred_a", "Liability", "document", "missing", "", "acct_1", "acct_2")

	creds, err := cs.ListCredentials(context.Background())
	if err != nil {
		t.Fatalf("ListCredentials: %v", err)
	}
	if len(creds) != 2 {
		t.Fatalf("expected 2 credentials, got %d", len(creds))
	}

	// Listing follows insertion order, not ID order.
	if creds[0].ID != "cred_b" || creds[1].ID != "cred_a" {
		t.Errorf("expected [cred_b cred_a], got [%s %s]", creds[0].ID, creds[1].ID)
	}

	if creds[0].ExpirationDate == nil {
		t.Fatal("expected cred_b to have an expiration date")
	}
	want := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	if !creds[0].ExpirationDate.Equal(want) {
		t.Errorf("expected expiration %v, got %v", want, *creds[0].ExpirationDate)
	}
	if creds[1].ExpirationDate != nil {
		t.Errorf("expected cred_a to have no expiration, got %v", *creds[1].ExpirationDate)
	}
	if !reflect.DeepEqual(creds[1].RequiredBy, []string{"acct_1", "acct_2"}) {
		t.Errorf("expected required-by in position order, got %v", creds[1].RequiredBy)
	}
}

func TestCredentialStore_ListCredentials_Empty(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	cs := sqlitestore.NewCredentialStore(conn, w)

	creds, err := cs.ListCredentials(context.Background())
	if err != nil {
		t.Fatalf("ListCredentials: %v", err)
	}
	if len(creds) != 0 {
		t.Errorf("expected empty listing, got %d rows", len(creds))
	}
}

func TestCredentialStore_ListCredentials_UnknownStatusRejected(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	cs := sqlitestore.NewCredentialStore(conn, w)

	insertCredential(t, conn, "cred_bad", "Drifted", "document", "approved", "")

	if _, err := cs.ListCredentials(context.Background()); err == nil {
		t.Fatal("expected an error for a row with status outside the taxonomy")
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// GetCredential
// ═══════════════════════════════════════════════════════════════════════════

func TestCredentialStore_GetCredential_LoadsRequirements(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	cs := sqlitestore.NewCredentialStore(conn, w)

	insertCredential(t, conn, "cred_1", "Safety Policy", "policy", "pending", "2026-12-01", "acct_2", "acct_1")

	c, err := cs.GetCredential(context.Background(), "cred_1")
	if err != nil {
		t.Fatalf("GetCredential: %v", err)
	}

	if c.Name != "Safety Policy" || c.Category != types.CategoryPolicy || c.Status != types.StatusPending {
		t.Errorf("unexpected credential: %+v", c)
	}
	if !reflect.DeepEqual(c.RequiredBy, []string{"acct_2", "acct_1"}) {
		t.Errorf("expected required-by in position order, got %v", c.RequiredBy)
	}
}

func TestCredentialStore_GetCredential_NotFound(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	cs := sqlitestore.NewCredentialStore(conn, w)

	_, err := cs.GetCredential(context.Background(), "cred_ghost")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// ReplaceCredential
// ═══════════════════════════════════════════════════════════════════════════

func TestCredentialStore_ReplaceCredential_UpdatesRecord(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	cs := sqlitestore.NewCredentialStore(conn, w)
	ctx := context.Background()

	insertCredential(t, conn, "cred_1", "Liability", "document", "missing", "", "acct_1")

	cred, err := cs.GetCredential(ctx, "cred_1")
	if err != nil {
		t.Fatalf("GetCredential: %v", err)
	}
	cred.Status = types.StatusPending
	cred.DocumentURL = "/documents/abc.pdf"

	if err := cs.ReplaceCredential(ctx, cred); err != nil {
		t.Fatalf("ReplaceCredential: %v", err)
	}

	got, err := cs.GetCredential(ctx, "cred_1")
	if err != nil {
		t.Fatalf("re-read: %v", err)
	}
	if got.Status != types.StatusPending {
		t.Errorf("expected status=pending, got %s", got.Status)
	}
	if got.DocumentURL != "/documents/abc.pdf" {
		t.Errorf("expected document url persisted, got %q", got.DocumentURL)
	}
	if !reflect.DeepEqual(got.RequiredBy, []string{"acct_1"}) {
		t.Errorf("expected requirements preserved, got %v", got.RequiredBy)
	}
}

func TestCredentialStore_ReplaceCredential_RewritesRequirements(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	cs := sqlitestore.NewCredentialStore(conn, w)
	ctx := context.Background()

	insertCredential(t, conn, "cred_1", "Liability", "document", "missing", "", "acct_1", "acct_2")

	cred, err := cs.GetCredential(ctx, "cred_1")
	if err != nil {
		t.Fatalf("GetCredential: %v", err)
	}
	cred.RequiredBy = []string{"acct_3"}

	if err := cs.ReplaceCredential(ctx, cred); err != nil {
		t.Fatalf("ReplaceCredential: %v", err)
	}

	// The relation is replaced wholesale, not merged.
	var count int
	err = conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM credential_requirements WHERE credential_id = ?`, "cred_1",
	).Scan(&count)
	if err != nil {
		t.Fatalf("count requirements: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 requirement row after replace, got %d", count)
	}

	got, err := cs.GetCredential(ctx, "cred_1")
	if err != nil {
		t.Fatalf("re-read: %v", err)
	}
	if !reflect.DeepEqual(got.RequiredBy, []string{"acct_3"}) {
		t.Errorf("expected required-by=[acct_3], got %v", got.RequiredBy)
	}
}

func TestCredentialStore_ReplaceCredential_ClearsExpiration(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	cs := sqlitestore.NewCredentialStore(conn, w)
	ctx := context.Background()

	insertCredential(t, conn, "cred_1", "Liability", "document", "verified", "2026-07-01")

	cred, err := cs.GetCredential(ctx, "cred_1")
	if err != nil {
		t.Fatalf("GetCredential: %v", err)
	}
	cred.ExpirationDate = nil

	if err := cs.ReplaceCredential(ctx, cred); err != nil {
		t.Fatalf("ReplaceCredential: %v", err)
	}

	var exp sql.NullString
	err = conn.QueryRowContext(ctx,
		`SELECT expiration_date FROM credentials WHERE credential_id = ?`, "cred_1",
	).Scan(&exp)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if exp.Valid {
		t.Errorf("expected NULL expiration, got %q", exp.String)
	}
}

func TestCredentialStore_ReplaceCredential_MissingID(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	cs := sqlitestore.NewCredentialStore(conn, w)

	err := cs.ReplaceCredential(context.Background(), types.Credential{
		ID:       "cred_ghost",
		Name:     "Ghost",
		Category: types.CategoryDocument,
		Status:   types.StatusPending,
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCredentialStore_ReplaceCredential_InvalidStatus(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	cs := sqlitestore.NewCredentialStore(conn, w)

	insertCredential(t, conn, "cred_1", "Liability", "document", "missing", "")

	err := cs.ReplaceCredential(context.Background(), types.Credential{
		ID:       "cred_1",
		Name:     "Liability",
		Category: types.CategoryDocument,
		Status:   "approved",
	})
	if err == nil {
		t.Fatal("expected an error for a status outside the taxonomy")
	}
	if errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected a validation error, got ErrNotFound")
	}
}
