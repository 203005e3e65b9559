package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/platform/crypto"
)

// Actor types recorded on audit entries.
const (
	ActorCustomer = "customer"
	ActorPartner  = "partner"
	ActorAdmin    = "admin"
	ActorSystem   = "system"
)

// Event types for the state-changing and disclosure operations the platform
// audits.
const (
	EventCustomerCreated   = "customer_created"
	EventCustomerUpdated   = "customer_updated"
	EventCustomerAccessed  = "customer_accessed"
	EventPartnerRegistered = "partner_registered"
	EventContractSubmitted = "contract_submitted"
	EventContractApproved  = "contract_approved"
	EventContractRejected  = "contract_rejected"
	EventConsentCreated    = "consent_created"
	EventConsentRevoked    = "consent_revoked"
	EventConsentExpired    = "consent_expired"
	EventDataShared        = "customer_data_shared"
	EventDataRequestDenied = "data_request_denied"
	EventDataRequestFailed = "data_request_failed"
)

// Entry is one immutable, hash-linked audit record. PreviousHash of entry n
// equals EventHash of entry n-1 in creation order (one global chain), and
// DigitalSignature verifies against EventHash with the service signing key.
// Persisted entries are never updated or deleted.
type Entry struct {
	LogID            uuid.UUID              `db:"log_id" json:"logId"`
	Seq              int64                  `db:"seq" json:"-"`
	EventType        string                 `db:"event_type" json:"eventType"`
	ActorType        string                 `db:"actor_type" json:"actorType"`
	ActorID          string                 `db:"actor_id" json:"actorId"`
	ConsentID        *uuid.UUID             `db:"consent_id" json:"consentId,omitempty"`
	CustomerID       *uuid.UUID             `db:"customer_id" json:"customerId,omitempty"`
	PartnerID        *uuid.UUID             `db:"partner_id" json:"partnerId,omitempty"`
	ActionDetails    map[string]interface{} `db:"action_details" json:"actionDetails,omitempty"`
	Metadata         map[string]interface{} `db:"metadata" json:"metadata,omitempty"`
	EventHash        string                 `db:"event_hash" json:"eventHash"`
	PreviousHash     string                 `db:"previous_hash" json:"previousHash"`
	DigitalSignature string                 `db:"digital_signature" json:"digitalSignature"`
	CreatedAt        time.Time              `db:"created_at" json:"createdAt"`
}

// EventContext carries the optional entity references attached to an entry.
type EventContext struct {
	ConsentID  *uuid.UUID
	CustomerID *uuid.UUID
	PartnerID  *uuid.UUID
}

// hashTimeLayout fixes the hashed timestamp at microsecond precision. The
// created_at column is a timestamptz, which stores microseconds; hashing
// finer digits would make every entry recompute to a different hash after a
// database round-trip.
const hashTimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// hashEnvelope is the canonical serialization hashed into EventHash. Field
// order is fixed by the struct; map values serialize with sorted keys, so
// the encoding is deterministic. The signature is excluded: it signs the
// hash and cannot be part of it.
type hashEnvelope struct {
	EventType     string                 `json:"eventType"`
	ActorType     string                 `json:"actorType"`
	ActorID       string                 `json:"actorId"`
	ConsentID     *uuid.UUID             `json:"consentId"`
	CustomerID    *uuid.UUID             `json:"customerId"`
	PartnerID     *uuid.UUID             `json:"partnerId"`
	ActionDetails map[string]interface{} `json:"actionDetails"`
	Metadata      map[string]interface{} `json:"metadata"`
	PreviousHash  string                 `json:"previousHash"`
	CreatedAt     string                 `json:"createdAt"`
}

// ComputeHash returns the hex SHA-256 of the entry's canonical serialization.
func (e *Entry) ComputeHash() (string, error) {
	env := hashEnvelope{
		EventType:     e.EventType,
		ActorType:     e.ActorType,
		ActorID:       e.ActorID,
		ConsentID:     e.ConsentID,
		CustomerID:    e.CustomerID,
		PartnerID:     e.PartnerID,
		ActionDetails: e.ActionDetails,
		Metadata:      e.Metadata,
		PreviousHash:  e.PreviousHash,
		CreatedAt:     e.CreatedAt.UTC().Truncate(time.Microsecond).Format(hashTimeLayout),
	}
	data, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("serialize audit entry: %w", err)
	}
	return crypto.Hash(string(data)), nil
}

// Filter narrows audit queries. Zero values mean "no constraint".
type Filter struct {
	EventType string
	ActorType string
	ActorID   string
	From      time.Time
	To        time.Time
}

// IntegrityResult is the outcome of a chain verification over a range.
type IntegrityResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}
