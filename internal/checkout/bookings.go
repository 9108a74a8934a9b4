package checkout

import (
	"context"
	"fmt"

	"github.com/skypark/bookings/internal/domain"
	"github.com/skypark/bookings/internal/utils"
	"github.com/skypark/bookings/internal/voucher"
	"github.com/skypark/bookings/pkg/events"
	"github.com/skypark/bookings/pkg/logger"
)

// byRef resolves a customer supplied reference.
func (s *Service) byRef(ctx context.Context, ref string) (*domain.Booking, error) {
	id, err := s.Refs.Decode(ref)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	b, err := s.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

// Lookup returns the booking when email matches the one used at checkout.
// A wrong email looks exactly like an unknown ref.
func (s *Service) Lookup(ctx context.Context, ref, email string) (*domain.Booking, error) {
	b, err := s.byRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !utils.SameEmail(b.Customer.Email, email) {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

func (s *Service) Voucher(ctx context.Context, ref, email string) ([]byte, *domain.Booking, error) {
	b, err := s.Lookup(ctx, ref, email)
	if err != nil {
		return nil, nil, err
	}
	if b.Status != domain.BookingPaid && b.Status != domain.BookingConfirmed {
		return nil, nil, ErrVoucherUnavailable
	}
	pdf, err := voucher.Render(b)
	if err != nil {
		return nil, nil, err
	}
	return pdf, b, nil
}

func (s *Service) ListBookings(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	return s.Bookings.List(ctx, f)
}

func (s *Service) GetBooking(ctx context.Context, ref string) (*domain.Booking, error) {
	return s.byRef(ctx, ref)
}

// Cancel voids a pending booking or refunds a settled one.
func (s *Service) Cancel(ctx context.Context, ref, reason string) (*domain.Booking, error) {
	b, err := s.byRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithBookingRef(ctx, b.Ref)

	var (
		to       domain.BookingStatus
		from     = []domain.BookingStatus{b.Status}
		refunded bool
	)
	switch b.Status {
	case domain.BookingPending:
		to = domain.BookingCanceled
		if b.PaymentIntentID != "" {
			if err := s.Payments.CancelIntent(ctx, b.PaymentIntentID); err != nil {
				logger.WarnContext(ctx, "failed to cancel payment intent", "intent_id", b.PaymentIntentID, "error", err)
			}
		}
	case domain.BookingPaid, domain.BookingConfirmed:
		to = domain.BookingRefunded
		from = []domain.BookingStatus{domain.BookingPaid, domain.BookingConfirmed}
		if b.PaymentIntentID != "" {
			if err := s.Payments.Refund(ctx, b.PaymentIntentID); err != nil {
				return nil, fmt.Errorf("failed to refund booking: %w", err)
			}
			refunded = true
		} else {
			to = domain.BookingCanceled
		}
	default:
		return nil, ErrNotCancelable
	}

	changed, err := s.Bookings.UpdateStatus(ctx, b.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}
	if !changed {
		if !refunded {
			return nil, ErrNotCancelable
		}
		// The refund has gone out, so report the row as it stands.
		cur, err := s.Bookings.GetByID(ctx, b.ID)
		if err != nil || cur == nil {
			return nil, fmt.Errorf("failed to reload refunded booking: %w", err)
		}
		logger.ErrorContext(ctx, "booking refunded but status changed concurrently",
			"intent_id", b.PaymentIntentID, "status", cur.Status)
		return cur, nil
	}
	b.Status = to
	logger.InfoContext(ctx, "booking canceled", "status", to, "reason", reason)

	s.publish(ctx, events.BookingCanceled, events.BookingCanceledEvent{
		BookingRef: b.Ref,
		Reason:     reason,
		CanceledAt: s.now(),
	})
	return b, nil
}
