package consent

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/apperror"
)

type consentRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &consentRepoPG{pool: pool}
}

const consentCols = `id, customer_id, partner_id, contract_id, allowed_fields, purpose,
	retention_period_days, status, consent_duration_ms, device_info,
	revoked_by, revoked_at, created_at, expires_at`

func scanConsent(row pgx.Row) (*Consent, error) {
	var c Consent
	err := row.Scan(&c.ID, &c.CustomerID, &c.PartnerID, &c.ContractID, &c.AllowedFields, &c.Purpose,
		&c.RetentionPeriodDays, &c.Status, &c.ConsentDurationMS, &c.DeviceInfo,
		&c.RevokedBy, &c.RevokedAt, &c.CreatedAt, &c.ExpiresAt)
	return &c, err
}

func (r *consentRepoPG) Create(ctx context.Context, c *Consent) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO consents (id, customer_id, partner_id, contract_id, allowed_fields, purpose,
			retention_period_days, status, consent_duration_ms, device_info,
			revoked_by, revoked_at, created_at, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		c.ID, c.CustomerID, c.PartnerID, c.ContractID, c.AllowedFields, c.Purpose,
		c.RetentionPeriodDays, c.Status, c.ConsentDurationMS, c.DeviceInfo,
		c.RevokedBy, c.RevokedAt, c.CreatedAt, c.ExpiresAt)
	return err
}

func (r *consentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Consent, error) {
	c, err := scanConsent(r.pool.QueryRow(ctx,
		`SELECT `+consentCols+` FROM consents WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, apperror.NotFound("consent", id.String())
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *consentRepoPG) Update(ctx context.Context, c *Consent) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE consents SET status=$2, revoked_by=$3, revoked_at=$4
		WHERE id = $1`,
		c.ID, c.Status, c.RevokedBy, c.RevokedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("consent", c.ID.String())
	}
	return nil
}

func (r *consentRepoPG) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Consent, int, error) {
	return r.list(ctx, `customer_id`, customerID, limit, offset)
}

func (r *consentRepoPG) ListByPartner(ctx context.Context, partnerID uuid.UUID, limit, offset int) ([]*Consent, int, error) {
	return r.list(ctx, `partner_id`, partnerID, limit, offset)
}

func (r *consentRepoPG) list(ctx context.Context, col string, id uuid.UUID, limit, offset int) ([]*Consent, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM consents WHERE `+col+` = $1`, id).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+consentCols+` FROM consents WHERE `+col+` = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Consent
	for rows.Next() {
		c, err := scanConsent(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}
