package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/skypark/bookings/internal/domain"
	"github.com/skypark/bookings/internal/pricing"
)

var (
	ErrValidationInFlight = errors.New("promo code validation already in progress")
	ErrPromoRejected      = errors.New("promo code rejected")
)

// Session is the client side of a checkout: the draft, its catalog price and
// the discount last granted by the promo oracle. Only one promo validation may
// be in flight; its verdict replaces whatever was applied before.
type Session struct {
	calc   *pricing.Calculator
	oracle PromoOracle

	mu         sync.Mutex
	draft      domain.Draft
	discount   int64
	promo      *domain.PromoCodeSummary
	promoErr   string
	validating bool
}

type SessionState struct {
	Draft      domain.Draft
	Breakdown  domain.PriceBreakdown
	PromoCode  *domain.PromoCodeSummary
	PromoError string
	Validating bool
}

func NewSession(calc *pricing.Calculator, oracle PromoOracle, d domain.Draft) *Session {
	return &Session{calc: calc, oracle: oracle, draft: d.Normalize(calc.OpenTime)}
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionState{
		Draft:      s.draft,
		Breakdown:  s.breakdownLocked(),
		PromoCode:  s.promo,
		PromoError: s.promoErr,
		Validating: s.validating,
	}
}

func (s *Session) Breakdown() domain.PriceBreakdown {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.breakdownLocked()
}

func (s *Session) breakdownLocked() domain.PriceBreakdown {
	return pricing.WithDiscount(s.calc.Breakdown(s.draft), s.discount)
}

// Update applies a draft transition. The applied discount is kept until the
// code is re-validated or removed.
func (s *Session) Update(fn func(domain.Draft) domain.Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = fn(s.draft).Normalize(s.calc.OpenTime)
}

// ApplyPromo asks the oracle about code for the current subtotal.
func (s *Session) ApplyPromo(ctx context.Context, code string) error {
	s.mu.Lock()
	if s.validating {
		s.mu.Unlock()
		return ErrValidationInFlight
	}
	s.validating = true
	subtotal := s.calc.Breakdown(s.draft).Subtotal
	s.mu.Unlock()

	res, err := s.oracle.ValidatePromo(ctx, code, subtotal)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.validating = false

	switch {
	case err != nil:
		s.discount, s.promo = 0, nil
		s.promoErr = "failed to validate promo code"
		return fmt.Errorf("validate promo: %w", err)
	case !res.Valid:
		s.discount, s.promo = 0, nil
		s.promoErr = res.Error
		return fmt.Errorf("%w: %s", ErrPromoRejected, res.Error)
	default:
		s.discount = res.DiscountAmount
		if s.discount < 0 {
			s.discount = 0
		}
		s.promo = res.PromoCode
		s.promoErr = ""
		return nil
	}
}

func (s *Session) RemovePromo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discount, s.promo, s.promoErr = 0, nil, ""
}

// CheckoutRequest builds the create-payment-intent payload for the session.
func (s *Session) CheckoutRequest(c domain.Customer) CreateIntentReq {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.draft
	req := CreateIntentReq{
		PackageID:         d.PackageID,
		Date:              d.DateString(),
		Time:              d.Time,
		Guests:            d.Guests,
		Pickup:            d.Transfer.NeedsPickup(),
		Hotel:             d.Hotel,
		Room:              d.Room,
		PrivateTransfer:   d.Transfer.Kind() == domain.TransferPrivate,
		PrivatePassengers: d.Transfer.Passengers(),
		NonPlayers:        d.Transfer.NonPlayers(),
		PromoAddons:       d.Upsells,
		Addons:            d.AddonIDs,
		Customer:          c,
	}
	if s.promo != nil {
		req.PromoCodeID = s.promo.ID.String()
		req.DiscountAmount = s.discount
	}
	return req
}
