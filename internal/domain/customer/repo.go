package customer

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	// GetByEmailDigest resolves a customer by the SHA-256 digest of the
	// plaintext email.
	GetByEmailDigest(ctx context.Context, digest string) (*Customer, error)
	Update(ctx context.Context, c *Customer) error
	List(ctx context.Context, limit, offset int) ([]*Customer, int, error)
}
