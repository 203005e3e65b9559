package partner

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/apperror"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/domain/audit"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/domain/customer"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/platform/auth"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/platform/crypto"
)

const apiKeyPrefix = "ssk_"

type Service struct {
	repo  Repository
	audit *audit.Service
}

func NewService(repo Repository, auditSvc *audit.Service) *Service {
	return &Service{repo: repo, audit: auditSvc}
}

func (s *Service) record(ctx context.Context, eventType, actorType, actorID string, partnerID uuid.UUID, details map[string]interface{}) {
	if s.audit == nil {
		return
	}
	id := partnerID
	s.audit.BestEffort(ctx, eventType, actorType, actorID, audit.EventContext{PartnerID: &id}, details, nil)
}

// newAPIKey mints a raw partner key. Only its hash is persisted.
func newAPIKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return apiKeyPrefix + hex.EncodeToString(buf), nil
}

// RegisterPartner creates a pending partner and returns the raw API key.
// The key is not retrievable afterwards.
func (s *Service) RegisterPartner(ctx context.Context, name, callbackURL, publicKeyPEM, actorID string) (*Partner, string, error) {
	if strings.TrimSpace(name) == "" {
		return nil, "", apperror.Validation("partner name is required")
	}
	if publicKeyPEM != "" {
		if _, err := crypto.ParsePublicKeyPEM(publicKeyPEM); err != nil {
			return nil, "", apperror.Validation("public key is not valid PEM")
		}
	}

	rawKey, err := newAPIKey()
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	p := &Partner{
		ID:           uuid.New(),
		Name:         name,
		APIKeyHash:   auth.HashAPIKey(rawKey),
		CallbackURL:  callbackURL,
		PublicKeyPEM: publicKeyPEM,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, "", err
	}

	s.record(ctx, audit.EventPartnerRegistered, audit.ActorAdmin, actorID, p.ID, map[string]interface{}{"name": name})
	return p, rawKey, nil
}

// SubmitContract places a contract draft in the partner's requested slot.
// Resubmission replaces any earlier unapproved draft; an existing approved
// contract is untouched.
func (s *Service) SubmitContract(ctx context.Context, partnerID uuid.UUID, draft *Contract) (*Partner, error) {
	if len(draft.AllowedFields) == 0 {
		return nil, apperror.Validation("contract must name at least one field")
	}
	seen := map[string]bool{}
	for _, f := range draft.AllowedFields {
		if !customer.IsValidField(f) {
			return nil, apperror.Validation("unknown field: " + f)
		}
		if seen[f] {
			return nil, apperror.Validation("duplicate field: " + f)
		}
		seen[f] = true
	}
	if draft.Purpose == "" {
		return nil, apperror.Validation("contract purpose is required")
	}
	if draft.RetentionPeriodDays <= 0 {
		return nil, apperror.Validation("retention period must be positive")
	}

	p, err := s.repo.GetByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if p.Status == StatusSuspended {
		return nil, apperror.Authorization("partner is suspended")
	}

	submitted := draft.clone()
	submitted.ContractID = uuid.Nil
	submitted.Version = 0
	p.RequestedContract = submitted
	p.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.record(ctx, audit.EventContractSubmitted, audit.ActorPartner, partnerID.String(), p.ID,
		map[string]interface{}{"allowedFields": draft.AllowedFields, "purpose": draft.Purpose})
	return p, nil
}

// ApproveContract promotes the requested contract to the approved slot with
// a fresh contract ID and the next version number, and activates a pending
// partner.
func (s *Service) ApproveContract(ctx context.Context, partnerID uuid.UUID, approvedBy string) (*Partner, error) {
	p, err := s.repo.GetByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if p.RequestedContract == nil {
		return nil, apperror.Validation("no contract pending approval")
	}

	approved := p.RequestedContract.clone()
	approved.ContractID = uuid.New()
	approved.Version = 1
	if p.ApprovedContract != nil {
		approved.Version = p.ApprovedContract.Version + 1
	}

	now := time.Now().UTC()
	p.ApprovedContract = approved
	p.RequestedContract = nil
	p.ContractApprovedAt = &now
	p.ApprovedBy = approvedBy
	if p.Status == StatusPending {
		p.Status = StatusActive
	}
	p.UpdatedAt = now

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.record(ctx, audit.EventContractApproved, audit.ActorAdmin, approvedBy, p.ID,
		map[string]interface{}{"contractId": approved.ContractID.String(), "version": approved.Version})
	return p, nil
}

// RejectContract discards the requested contract. A previously approved
// contract stays in force.
func (s *Service) RejectContract(ctx context.Context, partnerID uuid.UUID, rejectedBy, reason string) (*Partner, error) {
	p, err := s.repo.GetByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if p.RequestedContract == nil {
		return nil, apperror.Validation("no contract pending approval")
	}

	p.RequestedContract = nil
	p.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.record(ctx, audit.EventContractRejected, audit.ActorAdmin, rejectedBy, p.ID,
		map[string]interface{}{"reason": reason})
	return p, nil
}

// SuspendPartner blocks all partner authentication and disclosure.
func (s *Service) SuspendPartner(ctx context.Context, partnerID uuid.UUID, actorID string) (*Partner, error) {
	p, err := s.repo.GetByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	p.Status = StatusSuspended
	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetPartner(ctx context.Context, id uuid.UUID) (*Partner, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListPartners(ctx context.Context, limit, offset int) ([]*Partner, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// FindActiveByAPIKeyHash implements the authentication lookup. Only active
// partners resolve.
func (s *Service) FindActiveByAPIKeyHash(ctx context.Context, keyHash string) (uuid.UUID, error) {
	p, err := s.repo.GetByAPIKeyHash(ctx, keyHash)
	if err != nil {
		return uuid.Nil, err
	}
	if p.Status != StatusActive {
		return uuid.Nil, apperror.Authorization("partner is not active")
	}
	return p.ID, nil
}
