package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/apperror"
)

// Contract slots persist as jsonb columns.
type partnerRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &partnerRepoPG{pool: pool}
}

const partnerCols = `id, name, api_key_hash, callback_url, public_key_pem, status,
	requested_contract, approved_contract, contract_approved_at, approved_by,
	created_at, updated_at`

func scanPartner(row pgx.Row) (*Partner, error) {
	var p Partner
	err := row.Scan(&p.ID, &p.Name, &p.APIKeyHash, &p.CallbackURL, &p.PublicKeyPEM, &p.Status,
		&p.RequestedContract, &p.ApprovedContract, &p.ContractApprovedAt, &p.ApprovedBy,
		&p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *partnerRepoPG) Create(ctx context.Context, p *Partner) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO partners (id, name, api_key_hash, callback_url, public_key_pem, status,
			requested_contract, approved_contract, contract_approved_at, approved_by,
			created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		p.ID, p.Name, p.APIKeyHash, p.CallbackURL, p.PublicKeyPEM, p.Status,
		p.RequestedContract, p.ApprovedContract, p.ContractApprovedAt, p.ApprovedBy,
		p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *partnerRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Partner, error) {
	p, err := scanPartner(r.pool.QueryRow(ctx,
		`SELECT `+partnerCols+` FROM partners WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, apperror.NotFound("partner", id.String())
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *partnerRepoPG) GetByAPIKeyHash(ctx context.Context, keyHash string) (*Partner, error) {
	p, err := scanPartner(r.pool.QueryRow(ctx,
		`SELECT `+partnerCols+` FROM partners WHERE api_key_hash = $1`, keyHash))
	if err == pgx.ErrNoRows {
		return nil, apperror.NotFound("partner", "api key")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *partnerRepoPG) Update(ctx context.Context, p *Partner) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE partners SET name=$2, api_key_hash=$3, callback_url=$4, public_key_pem=$5,
			status=$6, requested_contract=$7, approved_contract=$8,
			contract_approved_at=$9, approved_by=$10, updated_at=$11
		WHERE id = $1`,
		p.ID, p.Name, p.APIKeyHash, p.CallbackURL, p.PublicKeyPEM,
		p.Status, p.RequestedContract, p.ApprovedContract,
		p.ContractApprovedAt, p.ApprovedBy, p.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("partner", p.ID.String())
	}
	return nil
}

func (r *partnerRepoPG) List(ctx context.Context, limit, offset int) ([]*Partner, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM partners`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+partnerCols+` FROM partners ORDER BY created_at LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
