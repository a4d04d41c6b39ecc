package types

type AccessStatus string

const (
	AccessPass AccessStatus = "pass"
	AccessFail AccessStatus = "fail"
)

type RegistrationStatus string

const (
	RegistrationComplete RegistrationStatus = "complete"
	RegistrationPending  RegistrationStatus = "pending"
)

// Account is a facility whose access depends on its required credentials.
// AccessStatus is always derived from credential state on the way out of
// the service layer; the stored value is seed input only.
type Account struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	LocationCount      int                `json:"location_count"`
	AccessStatus       AccessStatus       `json:"access_status"`
	RegistrationStatus RegistrationStatus `json:"registration_status"`
	City               string             `json:"city,omitempty"`
	State              string             `json:"state,omitempty"`
}
