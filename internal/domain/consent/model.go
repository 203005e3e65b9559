package consent

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Consent lifecycle states. Revoked and expired are terminal.
const (
	StatusPending = "pending"
	StatusActive  = "active"
	StatusRevoked = "revoked"
	StatusExpired = "expired"
)

// Consent is a customer's time-bound authorization for one partner to
// receive specific fields. AllowedFields, Purpose, RetentionPeriodDays, and
// ContractID are snapshotted from the partner's approved contract at
// creation; later contract changes never alter an existing consent.
type Consent struct {
	ID                  uuid.UUID  `db:"id" json:"consentId"`
	CustomerID          uuid.UUID  `db:"customer_id" json:"customerId"`
	PartnerID           uuid.UUID  `db:"partner_id" json:"partnerId"`
	ContractID          uuid.UUID  `db:"contract_id" json:"contractId"`
	AllowedFields       []string   `db:"allowed_fields" json:"allowedFields"`
	Purpose             string     `db:"purpose" json:"purpose"`
	RetentionPeriodDays int        `db:"retention_period_days" json:"retentionPeriodDays"`
	Status              string     `db:"status" json:"status"`
	ConsentDurationMS   int64      `db:"consent_duration_ms" json:"consentDurationMs"`
	DeviceInfo          string     `db:"device_info" json:"deviceInfo,omitempty"`
	RevokedBy           string     `db:"revoked_by" json:"revokedBy,omitempty"`
	RevokedAt           *time.Time `db:"revoked_at" json:"revokedAt,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"createdAt"`
	ExpiresAt           time.Time  `db:"expires_at" json:"expiresAt"`
}

// disallowedFields returns the requested fields this consent does not cover.
func (c *Consent) disallowedFields(requested []string) []string {
	allowed := make(map[string]bool, len(c.AllowedFields))
	for _, f := range c.AllowedFields {
		allowed[f] = true
	}
	var missing []string
	for _, f := range requested {
		if !allowed[f] {
			missing = append(missing, f)
		}
	}
	return missing
}

// PartnerInfo is the snapshot of a partner the consent engine needs:
// identity, standing, and the currently approved contract terms.
type PartnerInfo struct {
	ID                  uuid.UUID
	Name                string
	Status              string
	Active              bool
	HasApprovedContract bool
	ContractID          uuid.UUID
	AllowedFields       []string
	Purpose             string
	RetentionPeriodDays int
	PublicKeyPEM        string
	CallbackURL         string
}

// CustomerDirectory and PartnerDirectory are the narrow lookups the engine
// consumes; adapters over the customer and partner services implement them.
type CustomerDirectory interface {
	CustomerExists(ctx context.Context, id uuid.UUID) error
}

type PartnerDirectory interface {
	PartnerInfo(ctx context.Context, id uuid.UUID) (*PartnerInfo, error)
}
