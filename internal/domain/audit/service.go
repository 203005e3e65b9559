package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/platform/crypto"
)

// appendRetries bounds tail-conflict retries when another process appends
// between the tail read and the insert.
const appendRetries = 3

// Service maintains the single global audit chain: it links each new entry
// to the persisted tail, signs the entry hash, and verifies chain integrity
// over ranges. In-process appends are serialized by the repository's
// append-if-tail-matches insert; cross-process races retry.
type Service struct {
	repo   Repository
	signer *crypto.Signer
	logger zerolog.Logger
}

func NewService(repo Repository, signer *crypto.Signer, logger zerolog.Logger) *Service {
	return &Service{repo: repo, signer: signer, logger: logger}
}

// Append creates, links, signs, and persists one audit entry.
func (s *Service) Append(ctx context.Context, eventType, actorType, actorID string, ec EventContext, actionDetails, metadata map[string]interface{}) (*Entry, error) {
	var lastErr error
	for attempt := 0; attempt < appendRetries; attempt++ {
		tail, err := s.repo.TailHash(ctx)
		if err != nil {
			return nil, err
		}

		e := &Entry{
			LogID:         uuid.New(),
			EventType:     eventType,
			ActorType:     actorType,
			ActorID:       actorID,
			ConsentID:     ec.ConsentID,
			CustomerID:    ec.CustomerID,
			PartnerID:     ec.PartnerID,
			ActionDetails: actionDetails,
			Metadata:      metadata,
			PreviousHash:  tail,
			// Stored at the same microsecond precision the hash covers.
			CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		}

		hash, err := e.ComputeHash()
		if err != nil {
			return nil, err
		}
		e.EventHash = hash

		sig, err := s.signer.Sign([]byte(hash))
		if err != nil {
			return nil, fmt.Errorf("sign audit entry: %w", err)
		}
		e.DigitalSignature = sig

		err = s.repo.Insert(ctx, e, tail)
		if err == nil {
			return e, nil
		}
		if err != ErrTailConflict {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// BestEffort appends an entry and swallows any failure with a warning.
// Audit-log writes never abort the caller's primary operation: this is a
// deliberate availability-over-strict-audit-completeness trade-off, and the
// warning is the required surface for it.
func (s *Service) BestEffort(ctx context.Context, eventType, actorType, actorID string, ec EventContext, actionDetails, metadata map[string]interface{}) {
	if _, err := s.Append(ctx, eventType, actorType, actorID, ec, actionDetails, metadata); err != nil {
		s.logger.Warn().Err(err).
			Str("event_type", eventType).
			Str("actor_type", actorType).
			Str("actor_id", actorID).
			Msg("audit append failed; continuing without aborting the operation")
	}
}

// VerifyChainIntegrity checks hash linkage and signatures for all entries
// between startID and endID inclusive, in creation order. The first broken
// link or bad signature short-circuits with a message naming the entry.
// An empty or single-entry range is trivially valid.
func (s *Service) VerifyChainIntegrity(ctx context.Context, startID, endID uuid.UUID) (*IntegrityResult, error) {
	entries, err := s.repo.Range(ctx, startID, endID)
	if err != nil {
		return nil, err
	}
	return s.verifyEntries(entries), nil
}

func (s *Service) verifyEntries(entries []*Entry) *IntegrityResult {
	if len(entries) == 0 {
		return &IntegrityResult{Valid: true, Message: "empty range"}
	}

	for i, e := range entries {
		recomputed, err := e.ComputeHash()
		if err != nil {
			return &IntegrityResult{Valid: false, Message: fmt.Sprintf("entry %s: cannot recompute hash: %v", e.LogID, err)}
		}
		if recomputed != e.EventHash {
			return &IntegrityResult{Valid: false, Message: fmt.Sprintf("entry %s: stored event hash does not match entry contents", e.LogID)}
		}
		if err := s.signer.Verify([]byte(e.EventHash), e.DigitalSignature); err != nil {
			return &IntegrityResult{Valid: false, Message: fmt.Sprintf("entry %s: signature does not verify", e.LogID)}
		}
		if i > 0 && e.PreviousHash != entries[i-1].EventHash {
			return &IntegrityResult{Valid: false, Message: fmt.Sprintf("chain break between %s and %s", entries[i-1].LogID, e.LogID)}
		}
	}

	return &IntegrityResult{Valid: true, Message: fmt.Sprintf("%d entries verified", len(entries))}
}

// GetEntry returns a single entry by log ID.
func (s *Service) GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return s.repo.GetByID(ctx, id)
}

// Search returns paginated entries matching the filter, together with the
// integrity-check result over the returned page. Bulk reads always carry
// the verification verdict.
func (s *Service) Search(ctx context.Context, f Filter, limit, offset int) ([]*Entry, int, *IntegrityResult, error) {
	entries, total, err := s.repo.Search(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, nil, err
	}

	// A filtered or paginated page is generally not link-contiguous, so
	// only hashes and signatures are checked here; linkage is the range
	// verifier's job.
	result := &IntegrityResult{Valid: true, Message: fmt.Sprintf("%d entries verified", len(entries))}
	for _, e := range entries {
		recomputed, hashErr := e.ComputeHash()
		if hashErr != nil || recomputed != e.EventHash {
			result = &IntegrityResult{Valid: false, Message: fmt.Sprintf("entry %s: stored event hash does not match entry contents", e.LogID)}
			break
		}
		if s.signer.Verify([]byte(e.EventHash), e.DigitalSignature) != nil {
			result = &IntegrityResult{Valid: false, Message: fmt.Sprintf("entry %s: signature does not verify", e.LogID)}
			break
		}
	}

	return entries, total, result, nil
}
