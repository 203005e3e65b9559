package partner

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Partner) error
	GetByID(ctx context.Context, id uuid.UUID) (*Partner, error)
	GetByAPIKeyHash(ctx context.Context, keyHash string) (*Partner, error)
	Update(ctx context.Context, p *Partner) error
	List(ctx context.Context, limit, offset int) ([]*Partner, int, error)
}
