package audit

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/apperror"
)

// MemRepo is a thread-safe in-memory Repository. It backs tests and
// single-process development runs; production uses RepoPG.
type MemRepo struct {
	mu      sync.RWMutex
	entries []*Entry
	tail    string
}

func NewMemRepo() *MemRepo {
	return &MemRepo{}
}

func (r *MemRepo) TailHash(_ context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tail, nil
}

func (r *MemRepo) Insert(_ context.Context, e *Entry, expectedTail string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tail != expectedTail {
		return ErrTailConflict
	}
	stored := *e
	stored.Seq = int64(len(r.entries) + 1)
	r.entries = append(r.entries, &stored)
	r.tail = e.EventHash
	e.Seq = stored.Seq
	return nil
}

func (r *MemRepo) GetByID(_ context.Context, id uuid.UUID) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.LogID == id {
			return e, nil
		}
	}
	return nil, apperror.NotFound("audit entry", id.String())
}

func (r *MemRepo) Range(ctx context.Context, startID, endID uuid.UUID) ([]*Entry, error) {
	start, err := r.GetByID(ctx, startID)
	if err != nil {
		return nil, err
	}
	end, err := r.GetByID(ctx, endID)
	if err != nil {
		return nil, err
	}
	lo, hi := start.Seq, end.Seq
	if lo > hi {
		lo, hi = hi, lo
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	var items []*Entry
	for _, e := range r.entries {
		if e.Seq >= lo && e.Seq <= hi {
			items = append(items, e)
		}
	}
	return items, nil
}

func (r *MemRepo) Search(_ context.Context, f Filter, limit, offset int) ([]*Entry, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var filtered []*Entry
	for _, e := range r.entries {
		if f.EventType != "" && e.EventType != f.EventType {
			continue
		}
		if f.ActorType != "" && e.ActorType != f.ActorType {
			continue
		}
		if f.ActorID != "" && e.ActorID != f.ActorID {
			continue
		}
		if !f.From.IsZero() && e.CreatedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && e.CreatedAt.After(f.To) {
			continue
		}
		filtered = append(filtered, e)
	}

	total := len(filtered)
	if offset >= total {
		return []*Entry{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return filtered[offset:end], total, nil
}

// Corrupt overwrites a stored entry's hashes in place. Test hook for
// integrity verification; never part of the production surface.
func (r *MemRepo) Corrupt(id uuid.UUID, eventHash, previousHash string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.LogID == id {
			if eventHash != "" {
				e.EventHash = eventHash
			}
			if previousHash != "" {
				e.PreviousHash = previousHash
			}
		}
	}
}
