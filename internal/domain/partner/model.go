package partner

import (
	"time"

	"github.com/google/uuid"
)

// Partner lifecycle states.
const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// Partner is an external organization that may receive customer data under
// an approved contract. APIKeyHash is the only stored form of the key; the
// raw key is returned once at registration. PublicKeyPEM, when present,
// wraps disclosure payloads for this partner.
type Partner struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	APIKeyHash   string    `db:"api_key_hash" json:"-"`
	CallbackURL  string    `db:"callback_url" json:"callbackUrl,omitempty"`
	PublicKeyPEM string    `db:"public_key_pem" json:"publicKey,omitempty"`
	Status       string    `db:"status" json:"status"`

	// RequestedContract is the partner's pending submission; the approved
	// slot is only ever written by an admin approval and survives
	// rejection of later submissions.
	RequestedContract  *Contract  `db:"requested_contract" json:"requestedContract,omitempty"`
	ApprovedContract   *Contract  `db:"approved_contract" json:"approvedContract,omitempty"`
	ContractApprovedAt *time.Time `db:"contract_approved_at" json:"contractApprovedAt,omitempty"`
	ApprovedBy         string     `db:"approved_by" json:"approvedBy,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Contract is a data-sharing agreement. ContractID and Version are assigned
// at approval; a submission carries only the terms.
type Contract struct {
	ContractID          uuid.UUID `json:"contractId,omitempty"`
	AllowedFields       []string  `json:"allowedFields"`
	Purpose             string    `json:"purpose"`
	RetentionPeriodDays int       `json:"retentionPeriodDays"`
	LegalBasis          string    `json:"legalBasis"`
	ContractText        string    `json:"contractText,omitempty"`
	Version             int       `json:"version,omitempty"`
}

// clone deep-copies a contract so the approved slot never aliases the
// requested one.
func (c *Contract) clone() *Contract {
	if c == nil {
		return nil
	}
	copied := *c
	copied.AllowedFields = append([]string(nil), c.AllowedFields...)
	return &copied
}

// HasApprovedContract reports whether the partner holds a currently
// approved contract.
func (p *Partner) HasApprovedContract() bool {
	return p.ApprovedContract != nil
}
