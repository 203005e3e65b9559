package consent

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/apperror"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/domain/audit"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/platform/crypto"
)

// Service is the consent/contract authorization engine. It creates consents
// by snapshotting approved contract terms and gates every disclosure on an
// active, unexpired, field-covering consent.
type Service struct {
	repo        Repository
	customers   CustomerDirectory
	partners    PartnerDirectory
	audit       *audit.Service
	minDuration time.Duration
	now         func() time.Time
}

func NewService(repo Repository, customers CustomerDirectory, partners PartnerDirectory, auditSvc *audit.Service, minDuration time.Duration) *Service {
	return &Service{
		repo:        repo,
		customers:   customers,
		partners:    partners,
		audit:       auditSvc,
		minDuration: minDuration,
		now:         time.Now,
	}
}

func (s *Service) record(ctx context.Context, eventType, actorType, actorID string, c *Consent, details map[string]interface{}) {
	if s.audit == nil {
		return
	}
	consentID, customerID, partnerID := c.ID, c.CustomerID, c.PartnerID
	s.audit.BestEffort(ctx, eventType, actorType, actorID,
		audit.EventContext{ConsentID: &consentID, CustomerID: &customerID, PartnerID: &partnerID},
		details, nil)
}

// CreateConsent grants a partner time-bound access to fields. The allowed
// fields, purpose, retention period, and contract ID are copied from the
// partner's current approved contract and never re-read afterwards.
func (s *Service) CreateConsent(ctx context.Context, customerID, partnerID uuid.UUID, fields []string, durationMS int64, deviceInfo, actorType, actorID string) (*Consent, error) {
	if durationMS < s.minDuration.Milliseconds() {
		return nil, apperror.Validation("consent duration %dms is below the %dms minimum", durationMS, s.minDuration.Milliseconds())
	}
	if err := s.customers.CustomerExists(ctx, customerID); err != nil {
		return nil, err
	}
	info, err := s.partners.PartnerInfo(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if !info.HasApprovedContract {
		return nil, &apperror.ContractNotApprovedError{PartnerID: partnerID.String()}
	}

	allowed := append([]string(nil), info.AllowedFields...)
	if len(fields) > 0 {
		// A consent may narrow the contract scope but never widen it.
		contractFields := make(map[string]bool, len(info.AllowedFields))
		for _, f := range info.AllowedFields {
			contractFields[f] = true
		}
		var outside []string
		for _, f := range fields {
			if !contractFields[f] {
				outside = append(outside, f)
			}
		}
		if len(outside) > 0 {
			sort.Strings(outside)
			return nil, &apperror.FieldsNotAllowedError{Fields: outside}
		}
		allowed = append([]string(nil), fields...)
	}

	now := s.now().UTC()
	c := &Consent{
		ID:                  uuid.New(),
		CustomerID:          customerID,
		PartnerID:           partnerID,
		ContractID:          info.ContractID,
		AllowedFields:       allowed,
		Purpose:             info.Purpose,
		RetentionPeriodDays: info.RetentionPeriodDays,
		Status:              StatusActive,
		ConsentDurationMS:   durationMS,
		DeviceInfo:          deviceInfo,
		CreatedAt:           now,
		ExpiresAt:           now.Add(time.Duration(durationMS) * time.Millisecond),
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.record(ctx, audit.EventConsentCreated, actorType, actorID, c,
		map[string]interface{}{"allowedFields": c.AllowedFields, "durationMs": durationMS})
	return c, nil
}

// Revoke irreversibly withdraws an active consent. Only an admin or the
// owning customer may revoke; revoking a non-active consent is rejected.
func (s *Service) Revoke(ctx context.Context, consentID uuid.UUID, actorType, actorID string) (*Consent, error) {
	c, err := s.repo.GetByID(ctx, consentID)
	if err != nil {
		return nil, err
	}

	if actorType != audit.ActorAdmin && actorID != c.CustomerID.String() {
		return nil, apperror.Authorization("only an admin or the owning customer may revoke this consent")
	}
	if c.Status != StatusActive {
		return nil, apperror.Authorization("consent is %s, not active", c.Status)
	}

	now := s.now().UTC()
	c.Status = StatusRevoked
	c.RevokedBy = actorID
	c.RevokedAt = &now
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.record(ctx, audit.EventConsentRevoked, actorType, actorID, c, nil)
	return c, nil
}

// AuthorizeDisclosure validates that the requesting partner may receive the
// requested fields under this consent. Expiry is detected lazily here: a
// past-due consent is transitioned to expired, persisted, and rejected.
// When both a request signature and a stored partner key are present, the
// signature is verified over the signed payload.
func (s *Service) AuthorizeDisclosure(ctx context.Context, consentID, partnerID uuid.UUID, requestedFields []string, signedPayload []byte, signature string) (*Consent, error) {
	c, err := s.repo.GetByID(ctx, consentID)
	if err != nil {
		return nil, err
	}

	if c.PartnerID != partnerID {
		return nil, apperror.Authorization("consent does not belong to this partner")
	}

	if s.now().After(c.ExpiresAt) {
		if c.Status == StatusActive {
			c.Status = StatusExpired
			if err := s.repo.Update(ctx, c); err != nil {
				return nil, err
			}
			s.record(ctx, audit.EventConsentExpired, audit.ActorSystem, "system", c, nil)
		}
		return nil, &apperror.ConsentExpiredError{ConsentID: c.ID.String()}
	}
	if c.Status != StatusActive {
		return nil, apperror.Authorization("consent is %s, not active", c.Status)
	}

	if missing := c.disallowedFields(requestedFields); len(missing) > 0 {
		sort.Strings(missing)
		return nil, &apperror.FieldsNotAllowedError{Fields: missing}
	}

	if signature != "" {
		info, err := s.partners.PartnerInfo(ctx, partnerID)
		if err != nil {
			return nil, err
		}
		if info.PublicKeyPEM != "" {
			pub, err := crypto.ParsePublicKeyPEM(info.PublicKeyPEM)
			if err != nil {
				return nil, apperror.KeyMaterial("partner public key unreadable: %v", err)
			}
			if err := crypto.VerifyWithKey(pub, signedPayload, signature); err != nil {
				return nil, err
			}
		}
	}

	return c, nil
}

// GetConsent reads a consent, applying lazy expiry so stale active records
// are never served.
func (s *Service) GetConsent(ctx context.Context, id uuid.UUID) (*Consent, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == StatusActive && s.now().After(c.ExpiresAt) {
		c.Status = StatusExpired
		if err := s.repo.Update(ctx, c); err != nil {
			return nil, err
		}
		s.record(ctx, audit.EventConsentExpired, audit.ActorSystem, "system", c, nil)
	}
	return c, nil
}

func (s *Service) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Consent, int, error) {
	return s.repo.ListByCustomer(ctx, customerID, limit, offset)
}

func (s *Service) ListByPartner(ctx context.Context, partnerID uuid.UUID, limit, offset int) ([]*Consent, int, error) {
	return s.repo.ListByPartner(ctx, partnerID, limit, offset)
}
