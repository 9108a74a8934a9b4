package checkout

import (
	"context"
	"fmt"

	"github.com/skypark/bookings/internal/domain"
	"github.com/skypark/bookings/internal/payments"
	"github.com/skypark/bookings/internal/platform/mailer"
	"github.com/skypark/bookings/internal/voucher"
	"github.com/skypark/bookings/pkg/events"
	"github.com/skypark/bookings/pkg/logger"
)

// HandleWebhook verifies and applies a Stripe event. Events already handled
// are acknowledged without side effects. A returned error makes Stripe retry.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ev, err := s.Payments.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}

	first, err := s.Webhooks.MarkProcessed(ctx, ev.ID)
	if err != nil {
		return fmt.Errorf("failed to record webhook event: %w", err)
	}
	if !first {
		logger.InfoContext(ctx, "duplicate webhook event ignored", "event_id", ev.ID, "type", ev.Type)
		return nil
	}

	switch ev.Type {
	case payments.EventIntentSucceeded:
		err = s.onPaymentSucceeded(ctx, ev)
	case payments.EventIntentFailed:
		err = s.onPaymentFailed(ctx, ev)
	default:
		logger.DebugContext(ctx, "webhook event ignored", "event_id", ev.ID, "type", ev.Type)
	}

	if err != nil {
		if ferr := s.Webhooks.Forget(ctx, ev.ID); ferr != nil {
			logger.ErrorContext(ctx, "failed to release webhook event", "event_id", ev.ID, "error", ferr)
		}
		return err
	}
	return nil
}

func (s *Service) bookingForEvent(ctx context.Context, ev *payments.WebhookEvent) (*domain.Booking, error) {
	b, err := s.Bookings.GetByPaymentIntent(ctx, ev.IntentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	if b != nil || ev.BookingRef == "" {
		return b, nil
	}
	// The intent id is stored right after creation; an early webhook can beat
	// that write, so fall back to the ref in the intent metadata.
	id, err := s.Refs.Decode(ev.BookingRef)
	if err != nil {
		return nil, nil
	}
	return s.Bookings.GetByID(ctx, id)
}

func (s *Service) onPaymentSucceeded(ctx context.Context, ev *payments.WebhookEvent) error {
	b, err := s.bookingForEvent(ctx, ev)
	if err != nil {
		return err
	}
	if b == nil {
		logger.WarnContext(ctx, "payment for unknown booking", "intent_id", ev.IntentID, "booking_ref", ev.BookingRef)
		return nil
	}
	ctx = logger.WithBookingRef(ctx, b.Ref)

	changed, err := s.Bookings.UpdateStatus(ctx, b.ID,
		[]domain.BookingStatus{domain.BookingPending, domain.BookingCanceled}, domain.BookingPaid)
	if err != nil {
		return fmt.Errorf("failed to mark booking paid: %w", err)
	}
	if !changed {
		logger.InfoContext(ctx, "booking already settled", "status", b.Status)
		return nil
	}
	if b.Status == domain.BookingCanceled {
		logger.WarnContext(ctx, "payment captured for a canceled booking, reinstated")
	}
	b.Status = domain.BookingPaid
	logger.InfoContext(ctx, "payment captured", "intent_id", ev.IntentID, "amount", ev.Amount)

	if b.PromoCodeID != nil {
		if err := s.Promos.Redeem(ctx, *b.PromoCodeID); err != nil {
			logger.ErrorContext(ctx, "failed to redeem promo code", "error", err)
		} else {
			s.publish(ctx, events.PromoRedeemed, events.PromoRedeemedEvent{
				PromoCodeID: b.PromoCodeID.String(),
				BookingRef:  b.Ref,
				Discount:    b.Discount,
			})
		}
	}

	s.publish(ctx, events.PaymentCaptured, events.PaymentCapturedEvent{
		BookingRef: b.Ref,
		IntentID:   ev.IntentID,
		Amount:     ev.Amount,
		CapturedAt: s.now(),
	})
	s.publish(ctx, events.BookingConfirmed, events.BookingConfirmedEvent{
		BookingRef:  b.Ref,
		Total:       b.Total,
		ConfirmedAt: s.now(),
	})
	s.sendConfirmation(ctx, b)
	return nil
}

func (s *Service) onPaymentFailed(ctx context.Context, ev *payments.WebhookEvent) error {
	ref := ev.BookingRef
	if b, err := s.bookingForEvent(ctx, ev); err == nil && b != nil {
		ref = b.Ref
	}
	logger.WarnContext(ctx, "payment failed", "intent_id", ev.IntentID, "booking_ref", ref, "reason", ev.FailureMessage)

	s.publish(ctx, events.PaymentFailed, events.PaymentFailedEvent{
		BookingRef: ref,
		IntentID:   ev.IntentID,
		Reason:     ev.FailureMessage,
	})
	return nil
}

// sendConfirmation emails the customer. Failures are logged; the booking is
// already settled at this point.
func (s *Service) sendConfirmation(ctx context.Context, b *domain.Booking) {
	if s.Mailer == nil {
		return
	}
	pdf, err := voucher.Render(b)
	if err != nil {
		logger.ErrorContext(ctx, "failed to render voucher", "error", err)
		pdf = nil
	}
	msg := mailer.BookingConfirmation(b, s.manageURL(b), pdf)
	if _, err := s.Mailer.Send(ctx, msg); err != nil {
		logger.ErrorContext(ctx, "failed to send confirmation email", "error", err)
	}
}

func (s *Service) manageURL(b *domain.Booking) string {
	if s.PublicURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/bookings/%s", s.PublicURL, b.Ref)
}
