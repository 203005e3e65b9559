package customer

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
	items map[uuid.UUID]*Customer
}

func NewMemRepo() *MemRepo {
	return &MemRepo{items: map[uuid.UUID]*Customer{}}
}

func (r *MemRepo) Create(_ context.Context, c *Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *c
	r.items[c.ID] = &stored
	return nil
}

func (r *MemRepo) GetByID(_ context.Context, id uuid.UUID) (*Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[id]
	if !ok {
		return nil, apperror.NotFound("customer", id.String())
	}
	copied := *c
	return &copied, nil
}

func (r *MemRepo) GetByEmailDigest(_ context.Context, digest string) (*Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.items {
		if c.EmailDigest == digest {
			copied := *c
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("customer", "email")
}

func (r *MemRepo) Update(_ context.Context, c *Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[c.ID]; !ok {
		return apperror.NotFound("customer", c.ID.String())
	}
	stored := *c
	r.items[c.ID] = &stored
	return nil
}

func (r *MemRepo) List(_ context.Context, limit, offset int) ([]*Customer, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*Customer, 0, len(r.items))
	for _, c := range r.items {
		copied := *c
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })

	total := len(all)
	if offset >= total {
		return []*Customer{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}
