package consent

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/apperror"
)

// MemRepo is a thread-safe in-memory Repository for tests and development.
type MemRepo struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Consent
}

func NewMemRepo() *MemRepo {
	return &MemRepo{items: map[uuid.UUID]*Consent{}}
}

func copyConsent(c *Consent) *Consent {
	copied := *c
	copied.AllowedFields = append([]string(nil), c.AllowedFields...)
	return &copied
}

func (r *MemRepo) Create(_ context.Context, c *Consent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[c.ID] = copyConsent(c)
	return nil
}

func (r *MemRepo) GetByID(_ context.Context, id uuid.UUID) (*Consent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[id]
	if !ok {
		return nil, apperror.NotFound("consent", id.String())
	}
	return copyConsent(c), nil
}

func (r *MemRepo) Update(_ context.Context, c *Consent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[c.ID]; !ok {
		return apperror.NotFound("consent", c.ID.String())
	}
	r.items[c.ID] = copyConsent(c)
	return nil
}

func (r *MemRepo) ListByCustomer(_ context.Context, customerID uuid.UUID, limit, offset int) ([]*Consent, int, error) {
	return r.list(func(c *Consent) bool { return c.CustomerID == customerID }, limit, offset)
}

func (r *MemRepo) ListByPartner(_ context.Context, partnerID uuid.UUID, limit, offset int) ([]*Consent, int, error) {
	return r.list(func(c *Consent) bool { return c.PartnerID == partnerID }, limit, offset)
}

func (r *MemRepo) list(match func(*Consent) bool, limit, offset int) ([]*Consent, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*Consent
	for _, c := range r.items {
		if match(c) {
			all = append(all, copyConsent(c))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	if offset >= total {
		return []*Consent{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}
