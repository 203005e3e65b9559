package disclosure

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *DataRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*DataRequest, error)
	Update(ctx context.Context, r *DataRequest) error
	ListByPartner(ctx context.Context, partnerID uuid.UUID, limit, offset int) ([]*DataRequest, int, error)
}
