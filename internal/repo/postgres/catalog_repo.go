package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skypark/bookings/internal/catalog"
	"github.com/skypark/bookings/internal/domain"
)

type CatalogRepoImpl struct{ pool *pgxpool.Pool }

func NewCatalogRepo(pool *pgxpool.Pool) *CatalogRepoImpl { return &CatalogRepoImpl{pool: pool} }

func (r *CatalogRepoImpl) ListPackages(ctx context.Context) ([]domain.Package, error) {
	const q = `SELECT id, name, price, duration, category, includes_meal, includes_transfer,
  image, stats, features
  FROM packages WHERE active ORDER BY sort_order, id`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Package
	for rows.Next() {
		var p domain.Package
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Price, &p.Duration, &p.Category, &p.IncludesMeal, &p.IncludesTransfer,
			&p.Image, &p.Stats, &p.Features,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *CatalogRepoImpl) ListUpsells(ctx context.Context) ([]domain.Upsell, error) {
	const q = `SELECT id, name, description, price, original_price
  FROM upsells WHERE active ORDER BY sort_order, id`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Upsell
	for rows.Next() {
		var u domain.Upsell
		if err := rows.Scan(&u.ID, &u.Name, &u.Description, &u.Price, &u.OriginalPrice); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

var _ catalog.Repository = (*CatalogRepoImpl)(nil)
