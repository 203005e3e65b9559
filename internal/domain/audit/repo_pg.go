package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/apperror"
)

type RepoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) *RepoPG {
	return &RepoPG{pool: pool}
}

const entryCols = `log_id, seq, event_type, actor_type, actor_id,
	consent_id, customer_id, partner_id, action_details, metadata,
	event_hash, previous_hash, digital_signature, created_at`

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(
		&e.LogID, &e.Seq, &e.EventType, &e.ActorType, &e.ActorID,
		&e.ConsentID, &e.CustomerID, &e.PartnerID, &e.ActionDetails, &e.Metadata,
		&e.EventHash, &e.PreviousHash, &e.DigitalSignature, &e.CreatedAt,
	)
	return &e, err
}

func (r *RepoPG) TailHash(ctx context.Context) (string, error) {
	var tail string
	err := r.pool.QueryRow(ctx, `SELECT event_hash FROM audit_chain_tail WHERE id = 1`).Scan(&tail)
	if err != nil {
		return "", fmt.Errorf("read audit chain tail: %w", err)
	}
	return tail, nil
}

// Insert appends the entry inside one transaction: the tail row is advanced
// only if it still matches expectedTail, then the entry row is written. A
// moved tail aborts with ErrTailConflict and persists nothing.
func (r *RepoPG) Insert(ctx context.Context, e *Entry, expectedTail string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin audit append: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE audit_chain_tail SET event_hash = $1 WHERE id = 1 AND event_hash = $2`,
		e.EventHash, expectedTail)
	if err != nil {
		return fmt.Errorf("advance audit chain tail: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTailConflict
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO audit_log (
			log_id, event_type, actor_type, actor_id,
			consent_id, customer_id, partner_id, action_details, metadata,
			event_hash, previous_hash, digital_signature, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		e.LogID, e.EventType, e.ActorType, e.ActorID,
		e.ConsentID, e.CustomerID, e.PartnerID, e.ActionDetails, e.Metadata,
		e.EventHash, e.PreviousHash, e.DigitalSignature, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *RepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	q := fmt.Sprintf("SELECT %s FROM audit_log WHERE log_id = $1", entryCols)
	e, err := scanEntry(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, apperror.NotFound("audit entry", id.String())
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *RepoPG) Range(ctx context.Context, startID, endID uuid.UUID) ([]*Entry, error) {
	start, err := r.GetByID(ctx, startID)
	if err != nil {
		return nil, err
	}
	end, err := r.GetByID(ctx, endID)
	if err != nil {
		return nil, err
	}
	if start.Seq > end.Seq {
		start, end = end, start
	}

	q := fmt.Sprintf("SELECT %s FROM audit_log WHERE seq BETWEEN $1 AND $2 ORDER BY seq", entryCols)
	rows, err := r.pool.Query(ctx, q, start.Seq, end.Seq)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (r *RepoPG) Search(ctx context.Context, f Filter, limit, offset int) ([]*Entry, int, error) {
	where := []string{}
	args := []interface{}{}
	idx := 1

	if f.EventType != "" {
		where = append(where, fmt.Sprintf("event_type = $%d", idx))
		args = append(args, f.EventType)
		idx++
	}
	if f.ActorType != "" {
		where = append(where, fmt.Sprintf("actor_type = $%d", idx))
		args = append(args, f.ActorType)
		idx++
	}
	if f.ActorID != "" {
		where = append(where, fmt.Sprintf("actor_id = $%d", idx))
		args = append(args, f.ActorID)
		idx++
	}
	if !f.From.IsZero() {
		where = append(where, fmt.Sprintf("created_at >= $%d", idx))
		args = append(args, f.From)
		idx++
	}
	if !f.To.IsZero() {
		where = append(where, fmt.Sprintf("created_at <= $%d", idx))
		args = append(args, f.To)
		idx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	countQ := fmt.Sprintf("SELECT COUNT(*) FROM audit_log %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM audit_log %s ORDER BY seq LIMIT $%d OFFSET $%d",
		entryCols, whereClause, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}
