package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/credtrack/server/internal/credtrack/engine"
	"github.com/credtrack/server/internal/credtrack/store"
	"github.com/credtrack/server/internal/credtrack/types"
)

var (
	ErrInvalidCredentialID = errors.New("credential id is required")
	ErrInvalidAccountID    = errors.New("account id is required")
	ErrInvalidLimit        = errors.New("limit must be positive")
	ErrInvalidWindow       = errors.New("window days must be positive")
)

// ComplianceService computes every derived view from the current record
// snapshot. It holds no state of its own; each call re-reads the stores
// and recomputes, so results always reflect the latest submission.
type ComplianceService struct {
	credentials store.CredentialStore
	accounts    store.AccountStore
	now         func() time.Time
}

// NewComplianceService wires the service to its record source. A nil now
// defaults to time.Now; tests inject a fixed clock for deterministic
// day math.
func NewComplianceService(cs store.CredentialStore, as store.AccountStore, now func() time.Time) *ComplianceService {
	if now == nil {
		now = time.Now
	}
	return &ComplianceService{credentials: cs, accounts: as, now: now}
}

// EnrichedCredentials returns every credential with its computed impact,
// days remaining, priority score, and resolved affected-account names.
func (s *ComplianceService) EnrichedCredentials(ctx context.Context) ([]types.EnrichedCredential, error) {
	creds, accounts, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return enrichAll(creds, accounts, s.now().UTC()), nil
}

// ActionItems returns the worklist: actionable credentials sorted most
// urgent first, truncated to limit.
func (s *ComplianceService) ActionItems(ctx context.Context, limit int) ([]types.ActionItem, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	enriched, err := s.EnrichedCredentials(ctx)
	if err != nil {
		return nil, err
	}

	actionable := enriched[:0:0]
	for _, c := range enriched {
		if c.Status.Actionable() {
			actionable = append(actionable, c)
		}
	}
	sortByPriority(actionable)

	if len(actionable) > limit {
		actionable = actionable[:limit]
	}

	items := make([]types.ActionItem, 0, len(actionable))
	for _, c := range actionable {
		items = append(items, types.ActionItem{
			Credential:   c,
			UrgencyLabel: engine.FormatDaysRemaining(c.DaysRemaining),
			ImpactLabel:  impactLabel(c.ImpactScore),
		})
	}
	return items, nil
}

// ExpiringCredentials returns verified credentials whose expiration falls
// within windowDays, soonest first. Credentials without an expiration are
// excluded rather than ranked with a sentinel.
func (s *ComplianceService) ExpiringCredentials(ctx context.Context, windowDays int) ([]types.EnrichedCredential, error) {
	if windowDays <= 0 {
		return nil, ErrInvalidWindow
	}

	enriched, err := s.EnrichedCredentials(ctx)
	if err != nil {
		return nil, err
	}

	expiring := enriched[:0:0]
	for _, c := range enriched {
		if c.Status != types.StatusVerified || c.DaysRemaining == nil {
			continue
		}
		if *c.DaysRemaining <= windowDays {
			expiring = append(expiring, c)
		}
	}

	sort.Slice(expiring, func(i, j int) bool {
		if *expiring[i].DaysRemaining != *expiring[j].DaysRemaining {
			return *expiring[i].DaysRemaining < *expiring[j].DaysRemaining
		}
		return expiring[i].ID < expiring[j].ID
	})
	return expiring, nil
}

// Renewals groups the expiring credentials into the week-bucket timeline.
func (s *ComplianceService) Renewals(ctx context.Context, windowDays int) ([]types.RenewalGroup, error) {
	expiring, err := s.ExpiringCredentials(ctx, windowDays)
	if err != nil {
		return nil, err
	}
	return engine.GroupByWeek(expiring), nil
}

// Stats returns the credential summary counts. expiringSoon counts
// verified credentials whose expiration falls within 30 days, inclusive.
func (s *ComplianceService) Stats(ctx context.Context) (types.CredentialStats, error) {
	creds, err := s.credentials.ListCredentials(ctx)
	if err != nil {
		return types.CredentialStats{}, err
	}

	today := s.now().UTC()
	var st types.CredentialStats
	for _, c := range creds {
		st.Total++
		if c.Status != types.StatusVerified {
			continue
		}
		st.Compliant++
		if days := engine.DaysUntil(c.ExpirationDate, today); days != nil && *days <= 30 {
			st.ExpiringSoon++
		}
	}
	st.NonCompliant = st.Total - st.Compliant
	return st, nil
}

// Accounts returns registered accounts with derived access status.
func (s *ComplianceService) Accounts(ctx context.Context) ([]types.Account, error) {
	return s.accountsByRegistration(ctx, types.RegistrationComplete)
}

// Invitations returns accounts whose registration is still pending.
func (s *ComplianceService) Invitations(ctx context.Context) ([]types.Account, error) {
	return s.accountsByRegistration(ctx, types.RegistrationPending)
}

// AccountHealth counts registered accounts by derived access status.
func (s *ComplianceService) AccountHealth(ctx context.Context) (types.AccountHealth, error) {
	accounts, err := s.Accounts(ctx)
	if err != nil {
		return types.AccountHealth{}, err
	}

	var h types.AccountHealth
	for _, a := range accounts {
		h.Total++
		if a.AccessStatus == types.AccessPass {
			h.Pass++
		} else {
			h.Fail++
		}
	}
	return h, nil
}

// AccountDetail returns one account with its required credentials split
// into blocking and compliant sets.
func (s *ComplianceService) AccountDetail(ctx context.Context, accountID string) (types.AccountDetail, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return types.AccountDetail{}, ErrInvalidAccountID
	}

	account, err := s.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return types.AccountDetail{}, err
	}
	creds, err := s.credentials.ListCredentials(ctx)
	if err != nil {
		return types.AccountDetail{}, err
	}

	detail := types.AccountDetail{Account: account}
	for _, c := range creds {
		if !requires(c, accountID) {
			continue
		}
		if c.Status.Blocking() {
			detail.BlockingCredentials = append(detail.BlockingCredentials, c)
		} else {
			detail.CompliantCredentials = append(detail.CompliantCredentials, c)
		}
	}
	detail.TotalRequiredCredentials = len(detail.BlockingCredentials) + len(detail.CompliantCredentials)

	// Access status is derived, never read from storage: blocked iff at
	// least one required credential is missing or expired.
	if len(detail.BlockingCredentials) > 0 {
		detail.AccessStatus = types.AccessFail
	} else {
		detail.AccessStatus = types.AccessPass
	}
	return detail, nil
}

// CredentialWithAccounts returns one credential with the accounts it
// affects. Required-by entries that no longer resolve are dropped.
func (s *ComplianceService) CredentialWithAccounts(ctx context.Context, credentialID string) (types.CredentialDetail, error) {
	credentialID = strings.TrimSpace(credentialID)
	if credentialID == "" {
		return types.CredentialDetail{}, ErrInvalidCredentialID
	}

	cred, err := s.credentials.GetCredential(ctx, credentialID)
	if err != nil {
		return types.CredentialDetail{}, err
	}
	creds, accounts, err := s.snapshot(ctx)
	if err != nil {
		return types.CredentialDetail{}, err
	}

	derived := deriveAccess(accounts, creds)
	byID := make(map[string]types.Account, len(derived))
	for _, a := range derived {
		byID[a.ID] = a
	}

	detail := types.CredentialDetail{Credential: cred}
	for _, id := range cred.RequiredBy {
		if a, ok := byID[id]; ok {
			detail.AffectedAccounts = append(detail.AffectedAccounts, a)
		}
	}
	return detail, nil
}

// Dashboard composes the dashboard page's aggregate from one snapshot.
func (s *ComplianceService) Dashboard(ctx context.Context, actionLimit, renewalWindowDays int) (types.Dashboard, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return types.Dashboard{}, err
	}
	queue, err := s.ActionItems(ctx, actionLimit)
	if err != nil {
		return types.Dashboard{}, err
	}
	renewals, err := s.Renewals(ctx, renewalWindowDays)
	if err != nil {
		return types.Dashboard{}, err
	}
	health, err := s.AccountHealth(ctx)
	if err != nil {
		return types.Dashboard{}, err
	}

	return types.Dashboard{
		Stats:       stats,
		ActionQueue: queue,
		Renewals:    renewals,
		Health:      health,
	}, nil
}

func (s *ComplianceService) snapshot(ctx context.Context) ([]types.Credential, []types.Account, error) {
	creds, err := s.credentials.ListCredentials(ctx)
	if err != nil {
		return nil, nil, err
	}
	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, nil, err
	}
	return creds, accounts, nil
}

func (s *ComplianceService) accountsByRegistration(ctx context.Context, reg types.RegistrationStatus) ([]types.Account, error) {
	creds, accounts, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	derived := deriveAccess(accounts, creds)
	out := derived[:0:0]
	for _, a := range derived {
		if a.RegistrationStatus == reg {
			out = append(out, a)
		}
	}
	return out, nil
}

// deriveAccess recomputes each account's access status from credential
// state: fail iff some required credential is blocking.
func deriveAccess(accounts []types.Account, creds []types.Credential) []types.Account {
	blocked := make(map[string]bool)
	for _, c := range creds {
		if !c.Status.Blocking() {
			continue
		}
		for _, id := range c.RequiredBy {
			blocked[id] = true
		}
	}

	out := make([]types.Account, len(accounts))
	for i, a := range accounts {
		if blocked[a.ID] {
			a.AccessStatus = types.AccessFail
		} else {
			a.AccessStatus = types.AccessPass
		}
		out[i] = a
	}
	return out
}

func enrichAll(creds []types.Credential, accounts []types.Account, today time.Time) []types.EnrichedCredential {
	names := make(map[string]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}

	out := make([]types.EnrichedCredential, 0, len(creds))
	for _, c := range creds {
		out = append(out, enrich(c, names, today))
	}
	return out
}

func enrich(c types.Credential, accountNames map[string]string, today time.Time) types.EnrichedCredential {
	days := engine.DaysUntil(c.ExpirationDate, today)
	impact := len(c.RequiredBy)

	affected := make([]string, 0, len(c.RequiredBy))
	for _, id := range c.RequiredBy {
		// Dangling references are filtered, not surfaced.
		if name, ok := accountNames[id]; ok {
			affected = append(affected, name)
		}
	}

	return types.EnrichedCredential{
		Credential:           c,
		ImpactScore:          impact,
		DaysRemaining:        days,
		PriorityScore:        engine.PriorityScore(days, impact),
		AffectedAccountNames: affected,
	}
}

func sortByPriority(creds []types.EnrichedCredential) {
	sort.Slice(creds, func(i, j int) bool {
		if creds[i].PriorityScore != creds[j].PriorityScore {
			return creds[i].PriorityScore > creds[j].PriorityScore
		}
		return creds[i].ID < creds[j].ID
	})
}

func requires(c types.Credential, accountID string) bool {
	for _, id := range c.RequiredBy {
		if id == accountID {
			return true
		}
	}
	return false
}

func impactLabel(impact int) string {
	if impact == 1 {
		return "Blocks 1 account"
	}
	return fmt.Sprintf("Blocks %d accounts", impact)
}
