package disclosure

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
	items map[uuid.UUID]*DataRequest
}

func NewMemRepo() *MemRepo {
	return &MemRepo{items: map[uuid.UUID]*DataRequest{}}
}

func copyRequest(r *DataRequest) *DataRequest {
	copied := *r
	copied.RequestedFields = append([]string(nil), r.RequestedFields...)
	return &copied
}

func (m *MemRepo) Create(_ context.Context, r *DataRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[r.ID] = copyRequest(r)
	return nil
}

func (m *MemRepo) GetByID(_ context.Context, id uuid.UUID) (*DataRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.items[id]
	if !ok {
		return nil, apperror.NotFound("data request", id.String())
	}
	return copyRequest(r), nil
}

func (m *MemRepo) Update(_ context.Context, r *DataRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[r.ID]; !ok {
		return apperror.NotFound("data request", r.ID.String())
	}
	m.items[r.ID] = copyRequest(r)
	return nil
}

func (m *MemRepo) ListByPartner(_ context.Context, partnerID uuid.UUID, limit, offset int) ([]*DataRequest, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []*DataRequest
	for _, r := range m.items {
		if r.PartnerID == partnerID {
			all = append(all, copyRequest(r))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	if offset >= total {
		return []*DataRequest{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}
