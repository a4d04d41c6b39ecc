package tests

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/credtrack/server/internal/credtrack/service"
	sqlitestore "github.com/credtrack/server/internal/credtrack/store/sqlite"
	"github.com/credtrack/server/internal/credtrack/types"
	"github.com/credtrack/server/internal/db"
	"github.com/credtrack/server/internal/httpapi"
)

// newSeededServer brings up the whole stack against an in-memory SQLite
// database loaded with the dev seed data: migrations, single-writer
// worker, services, and the HTTP server.
func newSeededServer(t *testing.T) *httptest.Server {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:e2e_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)",
		t.Name(),
	)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	t.Cleanup(func() { conn.Close() })

	ctx := context.Background()
	if err := db.Migrate(ctx, conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.SeedDev(ctx, conn); err != nil {
		t.Fatalf("seed: %v", err)
	}

	writer := db.NewWorker(conn)
	t.Cleanup(writer.Close)

	credStore := sqlitestore.NewCredentialStore(conn, writer)
	acctStore := sqlitestore.NewAccountStore(conn)

	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:      log.New(io.Discard, "", 0),
		Addr:        ":0",
		Compliance:  service.NewComplianceService(credStore, acctStore, nil),
		Submissions: service.NewSubmissionService(credStore),
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, ts *httptest.Server, path string, v any) {
	t.Helper()

	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: expected 200, got %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("GET %s: decode: %v", path, err)
	}
}

// The seed data has two blocking credentials: an expired auto policy
// (blocks the harbor account) and a missing W-9 (blocks summit and
// lakeview). Walking the dashboard, submitting the W-9 document, and
// re-reading must show the affected accounts flip to passing.
func TestDashboardFlow_SubmissionUnblocksAccounts(t *testing.T) {
	ts := newSeededServer(t)

	var dash types.Dashboard
	getJSON(t, ts, "/v1/dashboard", &dash)

	wantStats := types.CredentialStats{Total: 6, Compliant: 3, NonCompliant: 3, ExpiringSoon: 2}
	if dash.Stats != wantStats {
		t.Fatalf("expected stats %+v, got %+v", wantStats, dash.Stats)
	}

	// The expired policy outranks everything else in the queue.
	if len(dash.ActionQueue) == 0 {
		t.Fatal("expected a non-empty action queue")
	}
	if dash.ActionQueue[0].Credential.ID != "cred_auto_policy" {
		t.Errorf("expected cred_auto_policy first, got %s", dash.ActionQueue[0].Credential.ID)
	}

	// riverside is the only registered account with no blocking credential.
	wantHealth := types.AccountHealth{Pass: 1, Fail: 3, Total: 4}
	if dash.Health != wantHealth {
		t.Fatalf("expected health %+v, got %+v", wantHealth, dash.Health)
	}

	// Submit the missing W-9.
	body := []byte(`{"file_name":"w9-signed.pdf"}`)
	resp, err := http.Post(ts.URL+"/v1/credentials/cred_w9/document", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d", resp.StatusCode)
	}

	// Pending counts as compliant for access, so summit and lakeview
	// should now pass; only harbor stays blocked.
	getJSON(t, ts, "/v1/dashboard", &dash)
	wantHealth = types.AccountHealth{Pass: 3, Fail: 1, Total: 4}
	if dash.Health != wantHealth {
		t.Fatalf("after submission: expected health %+v, got %+v", wantHealth, dash.Health)
	}

	var detail types.AccountDetail
	getJSON(t, ts, "/v1/accounts/acct_summit", &detail)
	if detail.AccessStatus != types.AccessPass {
		t.Errorf("expected acct_summit to pass after submission, got %s", detail.AccessStatus)
	}
	if len(detail.BlockingCredentials) != 0 {
		t.Errorf("expected no blocking credentials, got %v", detail.BlockingCredentials)
	}

	var cred types.CredentialDetail
	getJSON(t, ts, "/v1/credentials/cred_w9", &cred)
	if cred.Credential.Status != types.StatusPending {
		t.Errorf("expected cred_w9 pending, got %s", cred.Credential.Status)
	}
	if cred.Credential.DocumentURL == "" {
		t.Error("expected a document url on the submitted credential")
	}
}

func TestInvitationsFlow(t *testing.T) {
	ts := newSeededServer(t)

	var invitations []types.Account
	getJSON(t, ts, "/v1/invitations", &invitations)

	if len(invitations) != 1 || invitations[0].ID != "acct_northgate" {
		t.Fatalf("expected [acct_northgate], got %+v", invitations)
	}

	// Invitations never show up in the registered-accounts listing.
	var accounts []types.Account
	getJSON(t, ts, "/v1/accounts", &accounts)
	for _, a := range accounts {
		if a.ID == "acct_northgate" {
			t.Error("pending-registration account leaked into /v1/accounts")
		}
	}
}
