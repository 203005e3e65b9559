package disclosure

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/domain/consent"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/domain/customer"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/platform/crypto"
)

// DataRequest lifecycle states.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusFulfilled = "fulfilled"
	StatusFailed    = "failed"
)

// DataRequest is the immutable record of one disclosure attempt: what was
// asked, under which consent, and how it ended.
type DataRequest struct {
	ID              uuid.UUID  `db:"id" json:"requestId"`
	ConsentID       uuid.UUID  `db:"consent_id" json:"consentId"`
	PartnerID       uuid.UUID  `db:"partner_id" json:"partnerId"`
	CustomerID      uuid.UUID  `db:"customer_id" json:"customerId"`
	RequestedFields []string   `db:"requested_fields" json:"requestedFields"`
	Status          string     `db:"status" json:"status"`
	FailureReason   string     `db:"failure_reason" json:"failureReason,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	ProcessedAt     *time.Time `db:"processed_at" json:"processedAt,omitempty"`
	ExpiresAt       *time.Time `db:"expires_at" json:"expiresAt,omitempty"`
}

// Result is a fulfilled disclosure. Exactly one of Envelope or Plaintext is
// set: Envelope when the partner registered a public key, Plaintext when it
// did not. The distinction is explicit so callers can never mistake an
// unencrypted payload for an encrypted one.
type Result struct {
	Request   *DataRequest
	Encrypted bool
	Envelope  *crypto.Envelope
	Plaintext map[string]string
}

// Collaborator contracts. The consent, customer, and partner services
// satisfy these; adapters in main keep the packages decoupled.
type ConsentAuthorizer interface {
	AuthorizeDisclosure(ctx context.Context, consentID, partnerID uuid.UUID, requestedFields []string, signedPayload []byte, signature string) (*consent.Consent, error)
}

type CustomerSource interface {
	GetCustomer(ctx context.Context, id uuid.UUID) (*customer.Customer, error)
	DecryptFields(c *customer.Customer, fields []string) (map[string]string, error)
}

type PartnerDirectory interface {
	PartnerInfo(ctx context.Context, id uuid.UUID) (*consent.PartnerInfo, error)
}

// Notifier pushes a fulfilled disclosure to the partner's callback URL.
// Delivery is single-attempt and never blocks the response.
type Notifier interface {
	NotifyDataShared(ctx context.Context, callbackURL string, partnerID uuid.UUID, encrypted bool, envelope *crypto.Envelope, payload map[string]interface{})
}
