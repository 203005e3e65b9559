package disclosure

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/apperror"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/domain/audit"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/domain/consent"
	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/platform/crypto"
)

// Service runs the consent-to-disclosure pipeline: authorize, record the
// request, decrypt the stored fields, re-encrypt for the partner, audit,
// and notify.
type Service struct {
	requests  Repository
	consents  ConsentAuthorizer
	customers CustomerSource
	partners  PartnerDirectory
	hybrid    *crypto.HybridEncryptor
	audit     *audit.Service
	notifier  Notifier
	logger    zerolog.Logger
}

func NewService(requests Repository, consents ConsentAuthorizer, customers CustomerSource,
	partners PartnerDirectory, auditSvc *audit.Service, notifier Notifier, logger zerolog.Logger) *Service {
	return &Service{
		requests:  requests,
		consents:  consents,
		customers: customers,
		partners:  partners,
		hybrid:    crypto.NewHybridEncryptor(),
		audit:     auditSvc,
		notifier:  notifier,
		logger:    logger,
	}
}

func (s *Service) record(ctx context.Context, eventType string, cons *consent.Consent, partnerID uuid.UUID, details map[string]interface{}) {
	if s.audit == nil {
		return
	}
	ec := audit.EventContext{PartnerID: &partnerID}
	if cons != nil {
		consentID, customerID := cons.ID, cons.CustomerID
		ec.ConsentID = &consentID
		ec.CustomerID = &customerID
	}
	s.audit.BestEffort(ctx, eventType, audit.ActorPartner, partnerID.String(), ec, details, nil)
}

// RequestData processes one partner disclosure request end to end. A
// denial before any data is touched leaves a data_request_denied audit
// entry and no DataRequest record; a failure after authorization marks the
// persisted request failed. Plaintext is returned only when the partner
// has no registered public key, and the result says so explicitly.
func (s *Service) RequestData(ctx context.Context, partnerID, consentID uuid.UUID, requestedFields []string, signedPayload []byte, signature string) (*Result, error) {
	cons, err := s.consents.AuthorizeDisclosure(ctx, consentID, partnerID, requestedFields, signedPayload, signature)
	if err != nil {
		s.record(ctx, audit.EventDataRequestDenied, nil, partnerID, map[string]interface{}{
			"consentId":       consentID.String(),
			"requestedFields": requestedFields,
			"reason":          apperror.ClientMessage(err),
		})
		return nil, err
	}

	now := time.Now().UTC()
	req := &DataRequest{
		ID:              uuid.New(),
		ConsentID:       cons.ID,
		PartnerID:       partnerID,
		CustomerID:      cons.CustomerID,
		RequestedFields: append([]string(nil), requestedFields...),
		Status:          StatusPending,
		CreatedAt:       now,
	}
	if cons.RetentionPeriodDays > 0 {
		expires := now.AddDate(0, 0, cons.RetentionPeriodDays)
		req.ExpiresAt = &expires
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	cust, err := s.customers.GetCustomer(ctx, cons.CustomerID)
	if err != nil {
		return nil, s.fail(ctx, req, cons, err)
	}

	plainFields, err := s.customers.DecryptFields(cust, requestedFields)
	if err != nil {
		return nil, s.fail(ctx, req, cons, err)
	}

	info, err := s.partners.PartnerInfo(ctx, partnerID)
	if err != nil {
		return nil, s.fail(ctx, req, cons, err)
	}

	result := &Result{Request: req}
	if info.PublicKeyPEM != "" {
		pub, err := crypto.ParsePublicKeyPEM(info.PublicKeyPEM)
		if err != nil {
			return nil, s.fail(ctx, req, cons, apperror.KeyMaterial("partner public key unreadable: %v", err))
		}
		env, err := s.encryptForPartner(plainFields, pub)
		if err != nil {
			return nil, s.fail(ctx, req, cons, err)
		}
		result.Encrypted = true
		result.Envelope = env
	} else {
		// No partner key registered: the payload goes out in the clear
		// over TLS, and both the log and the response shape say so.
		s.logger.Warn().
			Str("partner_id", partnerID.String()).
			Str("request_id", req.ID.String()).
			Msg("partner has no public key; disclosing plaintext payload")
		result.Plaintext = plainFields
	}

	req.Status = StatusFulfilled
	processed := time.Now().UTC()
	req.ProcessedAt = &processed
	if err := s.requests.Update(ctx, req); err != nil {
		return nil, err
	}

	s.record(ctx, audit.EventDataShared, cons, partnerID, map[string]interface{}{
		"requestId":       req.ID.String(),
		"requestedFields": requestedFields,
		"encrypted":       result.Encrypted,
	})

	if s.notifier != nil && info.CallbackURL != "" {
		go s.notifier.NotifyDataShared(context.WithoutCancel(ctx), info.CallbackURL, partnerID, result.Encrypted, result.Envelope, map[string]interface{}{
			"requestId": req.ID.String(),
			"consentId": cons.ID.String(),
		})
	}

	return result, nil
}

// encryptForPartner prefers the shared-ephemeral-key envelope and falls
// back to a plain hybrid wrap of the serialized field map if that fails.
// Failure of both is a hard error; plaintext never substitutes silently.
func (s *Service) encryptForPartner(fields map[string]string, pub *rsa.PublicKey) (*crypto.Envelope, error) {
	env, err := s.hybrid.EncryptFieldsSecure(fields, pub)
	if err == nil {
		return env, nil
	}
	s.logger.Error().Err(err).Msg("secure envelope encryption failed; falling back to standard hybrid")

	blob, merr := json.Marshal(fields)
	if merr != nil {
		return nil, apperror.Decryption("serialize fields", merr)
	}
	env, ferr := s.hybrid.EncryptWithPublicKey(blob, pub)
	if ferr != nil {
		return nil, ferr
	}
	return env, nil
}

// fail marks the request failed, audits it, and passes the cause through.
func (s *Service) fail(ctx context.Context, req *DataRequest, cons *consent.Consent, cause error) error {
	req.Status = StatusFailed
	req.FailureReason = apperror.ClientMessage(cause)
	processed := time.Now().UTC()
	req.ProcessedAt = &processed
	if uerr := s.requests.Update(ctx, req); uerr != nil {
		s.logger.Error().Err(uerr).Str("request_id", req.ID.String()).Msg("could not mark data request failed")
	}

	s.logger.Error().Err(cause).
		Str("request_id", req.ID.String()).
		Str("partner_id", req.PartnerID.String()).
		Msg("disclosure pipeline failed")

	s.record(ctx, audit.EventDataRequestFailed, cons, req.PartnerID, map[string]interface{}{
		"requestId": req.ID.String(),
		"reason":    apperror.ClientMessage(cause),
	})
	return cause
}

// GetRequest returns one data request, restricted to its owning partner
// unless admin is true.
func (s *Service) GetRequest(ctx context.Context, id, partnerID uuid.UUID, admin bool) (*DataRequest, error) {
	r, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !admin && r.PartnerID != partnerID {
		return nil, apperror.Authorization("data request belongs to another partner")
	}
	return r, nil
}

func (s *Service) ListByPartner(ctx context.Context, partnerID uuid.UUID, limit, offset int) ([]*DataRequest, int, error) {
	return s.requests.ListByPartner(ctx, partnerID, limit, offset)
}
