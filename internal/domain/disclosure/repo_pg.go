package disclosure

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/apperror"
)

type requestRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &requestRepoPG{pool: pool}
}

const requestCols = `id, consent_id, partner_id, customer_id, requested_fields,
	status, failure_reason, created_at, processed_at, expires_at`

func scanRequest(row pgx.Row) (*DataRequest, error) {
	var r DataRequest
	err := row.Scan(&r.ID, &r.ConsentID, &r.PartnerID, &r.CustomerID, &r.RequestedFields,
		&r.Status, &r.FailureReason, &r.CreatedAt, &r.ProcessedAt, &r.ExpiresAt)
	return &r, err
}

func (p *requestRepoPG) Create(ctx context.Context, r *DataRequest) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO data_requests (id, consent_id, partner_id, customer_id, requested_fields,
			status, failure_reason, created_at, processed_at, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		r.ID, r.ConsentID, r.PartnerID, r.CustomerID, r.RequestedFields,
		r.Status, r.FailureReason, r.CreatedAt, r.ProcessedAt, r.ExpiresAt)
	return err
}

func (p *requestRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*DataRequest, error) {
	r, err := scanRequest(p.pool.QueryRow(ctx,
		`SELECT `+requestCols+` FROM data_requests WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, apperror.NotFound("data request", id.String())
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (p *requestRepoPG) Update(ctx context.Context, r *DataRequest) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE data_requests SET status=$2, failure_reason=$3, processed_at=$4
		WHERE id = $1`,
		r.ID, r.Status, r.FailureReason, r.ProcessedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("data request", r.ID.String())
	}
	return nil
}

func (p *requestRepoPG) ListByPartner(ctx context.Context, partnerID uuid.UUID, limit, offset int) ([]*DataRequest, int, error) {
	var total int
	if err := p.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM data_requests WHERE partner_id = $1`, partnerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := p.pool.Query(ctx,
		`SELECT `+requestCols+` FROM data_requests WHERE partner_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		partnerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*DataRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, r)
	}
	return items, total, rows.Err()
}
