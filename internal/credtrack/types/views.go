package types

// Derived views. None of these are persisted; every read recomputes them
// from the current snapshot.

// EnrichedCredential is a Credential plus its computed urgency and impact.
// DaysRemaining is nil when the credential has no expiration date.
type EnrichedCredential struct {
	Credential
	ImpactScore          int      `json:"impact_score"`
	DaysRemaining        *int     `json:"days_remaining"`
	PriorityScore        float64  `json:"priority_score"`
	AffectedAccountNames []string `json:"affected_account_names"`
}

// AccountDetail is an Account plus the blocking/compliant split of the
// credentials that require it.
type AccountDetail struct {
	Account
	BlockingCredentials      []Credential `json:"blocking_credentials"`
	CompliantCredentials     []Credential `json:"compliant_credentials"`
	TotalRequiredCredentials int          `json:"total_required_credentials"`
}

// CredentialDetail pairs a credential with the accounts it affects.
// Dangling required-by references are dropped during resolution.
type CredentialDetail struct {
	Credential       Credential `json:"credential"`
	AffectedAccounts []Account  `json:"affected_accounts"`
}

type CredentialStats struct {
	Total        int `json:"total"`
	Compliant    int `json:"compliant"`
	NonCompliant int `json:"non_compliant"`
	ExpiringSoon int `json:"expiring_soon"`
}

// ActionItem is one entry in the dashboard's action queue.
type ActionItem struct {
	Credential   EnrichedCredential `json:"credential"`
	UrgencyLabel string             `json:"urgency_label"`
	ImpactLabel  string             `json:"impact_label"`
}

// RenewalGroup is one bucket of the upcoming-renewals timeline.
type RenewalGroup struct {
	Label       string               `json:"label"`
	Credentials []EnrichedCredential `json:"credentials"`
}

// AccountHealth backs the dashboard health bar. Counts use derived
// access status.
type AccountHealth struct {
	Pass  int `json:"pass"`
	Fail  int `json:"fail"`
	Total int `json:"total"`
}

// Dashboard is the composed aggregate for the dashboard page: one call,
// one snapshot.
type Dashboard struct {
	Stats       CredentialStats `json:"stats"`
	ActionQueue []ActionItem    `json:"action_queue"`
	Renewals    []RenewalGroup  `json:"renewals"`
	Health      AccountHealth   `json:"health"`
}
