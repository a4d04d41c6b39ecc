package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SeedDev loads a starter dataset for local development: a handful of
// facilities and the credentials they require, with expiration dates
// placed relative to today so the dashboard has something in every
// urgency tier. Inserts are OR IGNORE, so reseeding an existing database
// is a no-op.
func SeedDev(ctx context.Context, db *sql.DB) error {
	now := time.Now().UTC()
	nowMs := now.UnixMilli()

	type account struct {
		id, name, registration, city, state string
		locations                           int
	}
	accounts := []account{
		{"acct_riverside", "Riverside Logistics Hub", "complete", "Columbus", "OH", 3},
		{"acct_lakeview", "Lakeview Distribution", "complete", "Cleveland", "OH", 1},
		{"acct_summit", "Summit Manufacturing", "complete", "Dayton", "OH", 2},
		{"acct_harbor", "Harbor Foods Group", "complete", "Cincinnati", "OH", 5},
		{"acct_northgate", "Northgate Retail Partners", "pending", "Toledo", "OH", 2},
	}

	for _, a := range accounts {
		if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO accounts(
  account_id, name, location_count, access_status, registration_status,
  city, state, created_at_ms, updated_at_ms
) VALUES (?, ?, ?, 'fail', ?, ?, ?, ?, ?);`,
			a.id, a.name, a.locations, a.registration, a.city, a.state, nowMs, nowMs,
		); err != nil {
			return fmt.Errorf("seed account %s: %w", a.id, err)
		}
	}

	type credential struct {
		id, name, category, status, description string
		expiresInDays                           *int
		requiredBy                              []string
	}
	days := func(n int) *int { return &n }
	credentials := []credential{
		{
			id: "cred_gl_insurance", name: "General Liability Insurance",
			category: "document", status: "verified",
			description:   "Certificate of insurance, $2M aggregate",
			expiresInDays: days(120),
			requiredBy:    []string{"acct_riverside", "acct_lakeview", "acct_summit"},
		},
		{
			id: "cred_workers_comp", name: "Workers Comp Certificate",
			category: "document", status: "verified",
			expiresInDays: days(25),
			requiredBy:    []string{"acct_riverside", "acct_harbor"},
		},
		{
			id: "cred_auto_policy", name: "Commercial Auto Policy",
			category: "policy", status: "expired",
			expiresInDays: days(-12),
			requiredBy:    []string{"acct_harbor"},
		},
		{
			id: "cred_w9", name: "W-9 Form",
			category: "document", status: "missing",
			requiredBy: []string{"acct_summit", "acct_lakeview"},
		},
		{
			id: "cred_safety_policy", name: "Site Safety Policy",
			category: "policy", status: "pending",
			description:   "Signed acknowledgment of site safety requirements",
			expiresInDays: days(200),
			requiredBy:    []string{"acct_riverside"},
		},
		{
			id: "cred_food_handler", name: "Food Handler Certification",
			category: "document", status: "verified",
			expiresInDays: days(5),
			requiredBy:    []string{"acct_harbor"},
		},
	}

	for _, c := range credentials {
		var expiration any
		if c.expiresInDays != nil {
			expiration = now.AddDate(0, 0, *c.expiresInDays).Format("2006-01-02")
		}
		var description any
		if c.description != "" {
			description = c.description
		}

		if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO credentials(
  credential_id, name, category, status, expiration_date,
  description, created_at_ms, updated_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?);`,
			c.id, c.name, c.category, c.status, expiration, description, nowMs, nowMs,
		); err != nil {
			return fmt.Errorf("seed credential %s: %w", c.id, err)
		}

		for i, accountID := range c.requiredBy {
			if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO credential_requirements(credential_id, account_id, position)
VALUES (?, ?, ?);`,
				c.id, accountID, i,
			); err != nil {
				return fmt.Errorf("seed requirement %s -> %s: %w", c.id, accountID, err)
			}
		}
	}

	return nil
}
