package audit

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrTailConflict reports that a concurrent append changed the chain tail
// between hash computation and insert. The service retries on it.
var ErrTailConflict = errors.New("audit chain tail moved during append")

// Repository is the persistence contract for the audit chain. Insert must be
// an append-if-tail-matches operation: it persists the entry only when the
// stored tail hash still equals expectedTail, so two concurrent appends can
// never both claim the same PreviousHash.
type Repository interface {
	TailHash(ctx context.Context) (string, error)
	Insert(ctx context.Context, e *Entry, expectedTail string) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	// Range returns entries between the creation times of two log IDs,
	// inclusive, in creation order.
	Range(ctx context.Context, startID, endID uuid.UUID) ([]*Entry, error)
	Search(ctx context.Context, f Filter, limit, offset int) ([]*Entry, int, error)
}
