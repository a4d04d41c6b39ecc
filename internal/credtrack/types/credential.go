package types

import "time"

// CredentialStatus is a closed enumeration. Store implementations reject
// anything outside it at scan time so unknown statuses can never flow
// through the scoring paths.
type CredentialStatus string

const (
	StatusVerified CredentialStatus = "verified"
	StatusMissing  CredentialStatus = "missing"
	StatusExpired  CredentialStatus = "expired"
	StatusPending  CredentialStatus = "pending"
)

func (s CredentialStatus) Valid() bool {
	switch s {
	case StatusVerified, StatusMissing, StatusExpired, StatusPending:
		return true
	}
	return false
}

// Blocking reports whether a credential in this status prevents access
// for the accounts that require it.
func (s CredentialStatus) Blocking() bool {
	switch s {
	case StatusMissing, StatusExpired:
		return true
	case StatusVerified, StatusPending:
		return false
	}
	return false
}

// Actionable reports whether the holder still has work to do: the
// credential is absent, lapsed, or awaiting verification.
func (s CredentialStatus) Actionable() bool {
	switch s {
	case StatusMissing, StatusExpired, StatusPending:
		return true
	case StatusVerified:
		return false
	}
	return false
}

type CredentialCategory string

const (
	CategoryDocument CredentialCategory = "document"
	CategoryPolicy   CredentialCategory = "policy"
)

func (c CredentialCategory) Valid() bool {
	switch c {
	case CategoryDocument, CategoryPolicy:
		return true
	}
	return false
}

// Credential is a requirement (document or policy) an account may impose.
// ExpirationDate is a calendar date, stored at midnight UTC; nil means the
// requirement never lapses.
type Credential struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Category       CredentialCategory `json:"category"`
	Status         CredentialStatus   `json:"status"`
	ExpirationDate *time.Time         `json:"expiration_date,omitempty"`
	RequiredBy     []string           `json:"required_by"`
	DocumentURL    string             `json:"document_url,omitempty"`
	Description    string             `json:"description,omitempty"`
}
