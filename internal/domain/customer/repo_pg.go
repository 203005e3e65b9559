package customer

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/apperror"
)

// Encrypted fields persist as jsonb columns holding the detached
// ciphertext envelope; email_digest is a plain indexed column for lookup.
type customerRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &customerRepoPG{pool: pool}
}

const customerCols = `id, first_name, last_name, email, phone, ssn, address,
	date_of_birth, email_digest, created_at, updated_at`

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.SSN,
		&c.Address, &c.DateOfBirth, &c.EmailDigest, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *customerRepoPG) Create(ctx context.Context, c *Customer) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO customers (id, first_name, last_name, email, phone, ssn, address,
			date_of_birth, email_digest, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.SSN, c.Address,
		c.DateOfBirth, c.EmailDigest, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *customerRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx,
		`SELECT `+customerCols+` FROM customers WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, apperror.NotFound("customer", id.String())
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *customerRepoPG) GetByEmailDigest(ctx context.Context, digest string) (*Customer, error) {
	c, err := scanCustomer(r.pool.QueryRow(ctx,
		`SELECT `+customerCols+` FROM customers WHERE email_digest = $1`, digest))
	if err == pgx.ErrNoRows {
		return nil, apperror.NotFound("customer", "email")
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *customerRepoPG) Update(ctx context.Context, c *Customer) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE customers SET first_name=$2, last_name=$3, email=$4, phone=$5,
			ssn=$6, address=$7, date_of_birth=$8, email_digest=$9, updated_at=$10
		WHERE id = $1`,
		c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.SSN, c.Address,
		c.DateOfBirth, c.EmailDigest, c.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("customer", c.ID.String())
	}
	return nil
}

func (r *customerRepoPG) List(ctx context.Context, limit, offset int) ([]*Customer, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+customerCols+` FROM customers ORDER BY created_at LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}
