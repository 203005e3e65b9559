package consent

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, c *Consent) error
	GetByID(ctx context.Context, id uuid.UUID) (*Consent, error)
	Update(ctx context.Context, c *Consent) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Consent, int, error)
	ListByPartner(ctx context.Context, partnerID uuid.UUID, limit, offset int) ([]*Consent, int, error)
}
