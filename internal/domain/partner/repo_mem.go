package partner

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
	items map[uuid.UUID]*Partner
}

func NewMemRepo() *MemRepo {
	return &MemRepo{items: map[uuid.UUID]*Partner{}}
}

func copyPartner(p *Partner) *Partner {
	copied := *p
	copied.RequestedContract = p.RequestedContract.clone()
	copied.ApprovedContract = p.ApprovedContract.clone()
	return &copied
}

func (r *MemRepo) Create(_ context.Context, p *Partner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[p.ID] = copyPartner(p)
	return nil
}

func (r *MemRepo) GetByID(_ context.Context, id uuid.UUID) (*Partner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, apperror.NotFound("partner", id.String())
	}
	return copyPartner(p), nil
}

func (r *MemRepo) GetByAPIKeyHash(_ context.Context, keyHash string) (*Partner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.items {
		if p.APIKeyHash == keyHash {
			return copyPartner(p), nil
		}
	}
	return nil, apperror.NotFound("partner", "api key")
}

func (r *MemRepo) Update(_ context.Context, p *Partner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; !ok {
		return apperror.NotFound("partner", p.ID.String())
	}
	r.items[p.ID] = copyPartner(p)
	return nil
}

func (r *MemRepo) List(_ context.Context, limit, offset int) ([]*Partner, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*Partner, 0, len(r.items))
	for _, p := range r.items {
		all = append(all, copyPartner(p))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })

	total := len(all)
	if offset >= total {
		return []*Partner{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}
