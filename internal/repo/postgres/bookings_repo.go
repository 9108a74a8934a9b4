package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skypark/bookings/internal/domain"
)

type BookingRepo interface {
	// Create inserts the booking and assigns its ref from the generated id in
	// the same transaction.
	Create(ctx context.Context, b *domain.Booking, refFor func(id int64) (string, error)) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByRef(ctx context.Context, ref string) (*domain.Booking, error)
	GetByPaymentIntent(ctx context.Context, intentID string) (*domain.Booking, error)
	List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error)
	SetPaymentIntent(ctx context.Context, id int64, intentID string) error
	// UpdateStatus moves the booking to `to` only when its current status is one
	// of `from`. It reports whether a row changed.
	UpdateStatus(ctx context.Context, id int64, from []domain.BookingStatus, to domain.BookingStatus) (bool, error)
}

type BookingRepoImpl struct{ pool *pgxpool.Pool }

func NewBookingRepo(pool *pgxpool.Pool) *BookingRepoImpl { return &BookingRepoImpl{pool: pool} }

const bookingCols = `id, ref, status,
package_id, package_name, to_char(visit_date, 'YYYY-MM-DD'), visit_time, guests,
pickup, hotel, room, transfer_kind, private_passengers, non_players,
addons, upsells,
customer_name, customer_email, customer_phone, customer_country, customer_notes,
base, addons_total, upsells_total, transfer_total, discount, total,
promo_code_id, payment_intent_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b       domain.Booking
		promoID pgtype.UUID
		intent  pgtype.Text
	)
	err := row.Scan(
		&b.ID, &b.Ref, &b.Status,
		&b.PackageID, &b.PackageName, &b.VisitDate, &b.VisitTime, &b.Guests,
		&b.Pickup, &b.Hotel, &b.Room, &b.TransferKind, &b.PrivatePassengers, &b.NonPlayers,
		&b.Addons, &b.Upsells,
		&b.Customer.Name, &b.Customer.Email, &b.Customer.Phone, &b.Customer.Country, &b.Customer.Notes,
		&b.Base, &b.AddonsTotal, &b.UpsellsTotal, &b.TransferTotal, &b.Discount, &b.Total,
		&promoID, &intent, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if promoID.Valid {
		id := uuid.UUID(promoID.Bytes)
		b.PromoCodeID = &id
	}
	b.PaymentIntentID = intent.String
	if b.Upsells == nil {
		b.Upsells = map[string]int{}
	}
	return &b, nil
}

func (r *BookingRepoImpl) Create(ctx context.Context, in *domain.Booking, refFor func(id int64) (string, error)) (*domain.Booking, error) {
	const insert = `INSERT INTO bookings (
    ref, status, package_id, package_name, visit_date, visit_time, guests,
    pickup, hotel, room, transfer_kind, private_passengers, non_players,
    addons, upsells,
    customer_name, customer_email, customer_phone, customer_country, customer_notes,
    base, addons_total, upsells_total, transfer_total, discount, total, promo_code_id
  ) VALUES (
    NULL, $1, $2, $3, $4::date, $5, $6,
    $7, $8, $9, $10, $11, $12,
    $13, $14,
    $15, $16, $17, $18, $19,
    $20, $21, $22, $23, $24, $25, $26
  ) RETURNING id`
	const setRef = `UPDATE bookings SET ref=$1 WHERE id=$2 RETURNING ` + bookingCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	addons := in.Addons
	if addons == nil {
		addons = []string{}
	}
	upsells := in.Upsells
	if upsells == nil {
		upsells = map[string]int{}
	}

	var id int64
	err = tx.QueryRow(ctx, insert,
		in.Status, in.PackageID, in.PackageName, in.VisitDate, in.VisitTime, in.Guests,
		in.Pickup, in.Hotel, in.Room, in.TransferKind, in.PrivatePassengers, in.NonPlayers,
		addons, upsells,
		in.Customer.Name, in.Customer.Email, in.Customer.Phone, in.Customer.Country, in.Customer.Notes,
		in.Base, in.AddonsTotal, in.UpsellsTotal, in.TransferTotal, in.Discount, in.Total, in.PromoCodeID,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	ref, err := refFor(id)
	if err != nil {
		return nil, fmt.Errorf("booking ref: %w", err)
	}

	b, err := scanBooking(tx.QueryRow(ctx, setRef, ref, id))
	if err != nil {
		return nil, fmt.Errorf("set booking ref: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BookingRepoImpl) getOne(ctx context.Context, where string, arg any) (*domain.Booking, error) {
	q := `SELECT ` + bookingCols + ` FROM bookings WHERE ` + where
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	b, err := scanBooking(r.pool.QueryRow(ctx, q, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

func (r *BookingRepoImpl) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getOne(ctx, "id=$1", id)
}

func (r *BookingRepoImpl) GetByRef(ctx context.Context, ref string) (*domain.Booking, error) {
	return r.getOne(ctx, "ref=$1", ref)
}

func (r *BookingRepoImpl) GetByPaymentIntent(ctx context.Context, intentID string) (*domain.Booking, error) {
	return r.getOne(ctx, "payment_intent_id=$1", intentID)
}

func (r *BookingRepoImpl) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	limit, offset := f.Limit, f.Offset
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := `SELECT ` + bookingCols + ` FROM bookings`
	args := []any{limit, offset}
	if f.Status != nil {
		q += ` WHERE status=$3`
		args = append(args, *f.Status)
	}
	q += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bs := make([]domain.Booking, 0, limit)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bs = append(bs, *b)
	}
	return bs, rows.Err()
}

func (r *BookingRepoImpl) SetPaymentIntent(ctx context.Context, id int64, intentID string) error {
	const q = `UPDATE bookings SET payment_intent_id=$1, updated_at=now() WHERE id=$2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, intentID, id)
	return err
}

func (r *BookingRepoImpl) UpdateStatus(ctx context.Context, id int64, from []domain.BookingStatus, to domain.BookingStatus) (bool, error) {
	const q = `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2 AND status = ANY($3)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	states := make([]string, len(from))
	for i, s := range from {
		states[i] = string(s)
	}
	ct, err := r.pool.Exec(ctx, q, to, id, states)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

var _ BookingRepo = (*BookingRepoImpl)(nil)
