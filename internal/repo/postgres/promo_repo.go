package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skypark/bookings/internal/domain"
	"github.com/skypark/bookings/internal/promo"
)

type PromoRepoImpl struct{ pool *pgxpool.Pool }

func NewPromoRepo(pool *pgxpool.Pool) *PromoRepoImpl { return &PromoRepoImpl{pool: pool} }

const promoCols = `id, code, description, discount_type, discount_value,
min_order_amount, max_discount_amount, valid_from, valid_until,
usage_limit, usage_count, active, created_at, updated_at`

func scanPromo(row rowScanner) (*domain.PromoCode, error) {
	var p domain.PromoCode
	err := row.Scan(
		&p.ID, &p.Code, &p.Description, &p.DiscountType, &p.DiscountValue,
		&p.MinOrderAmount, &p.MaxDiscountAmount, &p.ValidFrom, &p.ValidUntil,
		&p.UsageLimit, &p.UsageCount, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PromoRepoImpl) getOne(ctx context.Context, where string, arg any) (*domain.PromoCode, error) {
	q := `SELECT ` + promoCols + ` FROM promo_codes WHERE ` + where
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanPromo(r.pool.QueryRow(ctx, q, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *PromoRepoImpl) GetByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	return r.getOne(ctx, "code=upper($1)", code)
}

func (r *PromoRepoImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.PromoCode, error) {
	return r.getOne(ctx, "id=$1", id)
}

func (r *PromoRepoImpl) List(ctx context.Context, limit, offset int) ([]domain.PromoCode, error) {
	const q = `SELECT ` + promoCols + ` FROM promo_codes ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.PromoCode, 0, limit)
	for rows.Next() {
		p, err := scanPromo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PromoRepoImpl) Create(ctx context.Context, p *domain.PromoCode) (*domain.PromoCode, error) {
	const q = `INSERT INTO promo_codes (
    id, code, description, discount_type, discount_value,
    min_order_amount, max_discount_amount, valid_from, valid_until,
    usage_limit, active
  ) VALUES ($1, upper($2), $3, $4, $5, $6, $7, $8, $9, $10, $11)
  RETURNING ` + promoCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanPromo(r.pool.QueryRow(ctx, q,
		p.ID, p.Code, p.Description, p.DiscountType, p.DiscountValue,
		p.MinOrderAmount, p.MaxDiscountAmount, p.ValidFrom, p.ValidUntil,
		p.UsageLimit, p.Active,
	))
}

// Update applies the non-nil fields of patch. Returns (nil, nil) when the code
// does not exist.
func (r *PromoRepoImpl) Update(ctx context.Context, id uuid.UUID, patch domain.UpdatePromoCodeReq) (*domain.PromoCode, error) {
	const q = `UPDATE promo_codes SET
    description         = COALESCE($2, description),
    active              = COALESCE($3, active),
    min_order_amount    = COALESCE($4, min_order_amount),
    max_discount_amount = COALESCE($5, max_discount_amount),
    valid_from          = COALESCE($6, valid_from),
    valid_until         = COALESCE($7, valid_until),
    usage_limit         = COALESCE($8, usage_limit),
    updated_at          = now()
  WHERE id=$1
  RETURNING ` + promoCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanPromo(r.pool.QueryRow(ctx, q, id,
		patch.Description, patch.Active, patch.MinOrderAmount, patch.MaxDiscountAmount,
		patch.ValidFrom, patch.ValidUntil, patch.UsageLimit,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *PromoRepoImpl) IncrementUsage(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `UPDATE promo_codes
  SET usage_count = usage_count + 1, updated_at = now()
  WHERE id=$1 AND (usage_limit IS NULL OR usage_count < usage_limit)`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ct, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

var _ promo.Repository = (*PromoRepoImpl)(nil)
