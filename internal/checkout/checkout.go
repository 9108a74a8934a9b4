// Package checkout turns a booking draft into a paid booking: it re-prices the
// draft on the server, persists it, opens a Stripe payment and reacts to the
// payment webhooks.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/skypark/bookings/internal/catalog"
	"github.com/skypark/bookings/internal/domain"
	"github.com/skypark/bookings/internal/payments"
	"github.com/skypark/bookings/internal/platform/mailer"
	"github.com/skypark/bookings/internal/pricing"
	"github.com/skypark/bookings/internal/promo"
	"github.com/skypark/bookings/internal/utils"
	"github.com/skypark/bookings/pkg/events"
	"github.com/skypark/bookings/pkg/logger"
)

var (
	ErrInvalidDraft       = errors.New("booking is incomplete")
	ErrUnknownPackage     = errors.New("unknown package")
	ErrPastDate           = errors.New("visit date is in the past")
	ErrUnknownTimeSlot    = errors.New("unknown time slot")
	ErrGroupTooLarge      = errors.New("group is too large for a private transfer")
	ErrInvalidCustomer    = errors.New("invalid customer details")
	ErrInvalidPromo       = errors.New("promo code rejected")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrNotCancelable      = errors.New("booking cannot be canceled")
	ErrVoucherUnavailable = errors.New("voucher is available once the booking is paid")
)

// BookingStore is the persistence the checkout needs.
type BookingStore interface {
	Create(ctx context.Context, b *domain.Booking, refFor func(id int64) (string, error)) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByPaymentIntent(ctx context.Context, intentID string) (*domain.Booking, error)
	List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error)
	SetPaymentIntent(ctx context.Context, id int64, intentID string) error
	UpdateStatus(ctx context.Context, id int64, from []domain.BookingStatus, to domain.BookingStatus) (bool, error)
}

// PromoValidator is the server side of promo code checks.
type PromoValidator interface {
	Validate(ctx context.Context, code string, orderTotal int64) (*domain.PromoCode, int64, error)
	ValidateByID(ctx context.Context, id uuid.UUID, orderTotal int64) (*domain.PromoCode, int64, error)
	Redeem(ctx context.Context, id uuid.UUID) error
}

type WebhookEvents interface {
	MarkProcessed(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

type RefCodec interface {
	Encode(id int64) (string, error)
	Decode(ref string) (int64, error)
}

type Deps struct {
	Bookings BookingStore
	Catalog  catalog.Source
	Promos   PromoValidator
	Payments payments.Gateway
	Events   events.Publisher
	Webhooks WebhookEvents
	Mailer   mailer.Service
	Refs     RefCodec

	OpenTime  domain.OpenTimeSet
	Rates     pricing.Rates
	Location  *time.Location
	Currency  string
	PublicURL string
}

type Service struct {
	Deps
	validate *validator.Validate
	now      func() time.Time
}

func NewService(d Deps) *Service {
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Events == nil {
		d.Events = events.NopBus{}
	}
	if d.OpenTime == nil {
		d.OpenTime = domain.NewOpenTimeSet()
	}
	if d.Currency == "" {
		d.Currency = "thb"
	}
	return &Service{
		Deps:     d,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
}

// CreateIntentReq is the checkout form as posted by the browser.
type CreateIntentReq struct {
	PackageID         string          `json:"packageId"`
	Date              string          `json:"date"`
	Time              string          `json:"time"`
	Guests            int             `json:"guests"`
	Pickup            bool            `json:"pickup"`
	Hotel             string          `json:"hotel"`
	Room              string          `json:"room"`
	PrivateTransfer   bool            `json:"privateTransfer"`
	PrivatePassengers int             `json:"privatePassengers"`
	NonPlayers        int             `json:"nonPlayers"`
	PromoAddons       map[string]int  `json:"promoAddons"`
	Addons            []string        `json:"addons"`
	PromoCodeID       string          `json:"promoCodeId"`
	DiscountAmount    int64           `json:"discountAmount"`
	Customer          domain.Customer `json:"customer"`
}

type CreateIntentRes struct {
	ClientSecret string                `json:"clientSecret"`
	BookingRef   string                `json:"bookingRef"`
	Status       string                `json:"status"`
	Breakdown    domain.PriceBreakdown `json:"breakdown"`
}

// Draft rebuilds the booking draft carried by the request.
func (r CreateIntentReq) Draft(openTime domain.OpenTimeSet) domain.Draft {
	d := domain.NewDraft(r.PackageID).
		WithTime(r.Time).
		WithGuests(r.Guests).
		WithHotel(r.Hotel, r.Room)
	if date, err := time.Parse(domain.DateLayout, strings.TrimSpace(r.Date)); err == nil {
		d = d.WithDate(date)
	}
	if r.Pickup {
		if r.PrivateTransfer {
			d = d.WithTransfer(domain.PrivateTransfer(r.PrivatePassengers))
		} else {
			d = d.WithTransfer(domain.SharedTransfer(r.NonPlayers))
		}
	}
	for _, id := range r.Addons {
		d = d.WithAddon(id, true)
	}
	for id, qty := range r.PromoAddons {
		d = d.WithUpsellQty(id, qty)
	}
	return d.Normalize(openTime)
}

func (s *Service) calculator(snap *catalog.Snapshot) *pricing.Calculator {
	return pricing.New(snap, s.OpenTime, s.Rates)
}

// checkDraft runs the rules the browser cannot be trusted with.
func (s *Service) checkDraft(calc *pricing.Calculator, d domain.Draft) (*domain.Package, error) {
	if d.PackageID != "" {
		if p := calc.Catalog.Package(d.PackageID); p == nil || p.Category == domain.CategoryAddon {
			return nil, ErrUnknownPackage
		}
	}
	if !calc.IsDraftValid(d) {
		return nil, ErrInvalidDraft
	}
	pkg := calc.Catalog.Package(d.PackageID)
	if d.Transfer.Kind() == domain.TransferPrivate && !d.FitsPrivateTransfer() {
		return nil, ErrGroupTooLarge
	}

	today := s.now().In(s.Location)
	y, m, day := today.Date()
	if d.Date.Before(time.Date(y, m, day, 0, 0, 0, 0, time.UTC)) {
		return nil, ErrPastDate
	}

	if pricing.IsOpenTimePackage(d.PackageID, s.OpenTime) {
		if d.Time != domain.TimeFlexible {
			return nil, ErrUnknownTimeSlot
		}
	} else if !domain.IsKnownTimeSlot(d.Time) {
		return nil, ErrUnknownTimeSlot
	}
	return pkg, nil
}

// knownOnly drops add-on and upsell ids the catalog does not carry so they are
// not persisted.
func knownOnly(snap *catalog.Snapshot, d domain.Draft) domain.Draft {
	for _, id := range d.AddonIDs {
		if p := snap.Package(id); p == nil || p.Category != domain.CategoryAddon {
			d = d.WithAddon(id, false)
		}
	}
	for id := range d.Upsells {
		if snap.Upsell(id) == nil {
			d = d.WithUpsellQty(id, 0)
		}
	}
	return d
}

func (s *Service) CreatePaymentIntent(ctx context.Context, req CreateIntentReq, idempotencyKey string) (*CreateIntentRes, error) {
	snap, err := s.Catalog.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	calc := s.calculator(snap)

	draft := knownOnly(snap, req.Draft(s.OpenTime))
	pkg, err := s.checkDraft(calc, draft)
	if err != nil {
		return nil, err
	}

	cust := req.Customer
	cust.Name = utils.NormalizeString(cust.Name)
	cust.Email = utils.NormalizeEmail(cust.Email)
	cust.Phone = utils.NormalizePhone(cust.Phone)
	cust.Country = strings.TrimSpace(cust.Country)
	cust.Notes = strings.TrimSpace(cust.Notes)
	if err := s.validate.Struct(cust); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCustomer, err)
	}

	breakdown := calc.Breakdown(draft)

	var promoCode *domain.PromoCode
	if strings.TrimSpace(req.PromoCodeID) != "" {
		id, err := uuid.Parse(strings.TrimSpace(req.PromoCodeID))
		if err != nil {
			return nil, fmt.Errorf("%w: malformed promo code id", ErrInvalidPromo)
		}
		p, discount, err := s.Promos.ValidateByID(ctx, id, breakdown.Subtotal)
		if err != nil {
			if promo.IsRejection(err) {
				return nil, fmt.Errorf("%w: %v", ErrInvalidPromo, err)
			}
			return nil, err
		}
		if discount != req.DiscountAmount {
			logger.WarnContext(ctx, "client discount differs from server discount",
				"promo_code_id", id.String(), "client", req.DiscountAmount, "server", discount)
		}
		promoCode = p
		breakdown = breakdown.WithDiscount(discount)
	}

	b := bookingFromDraft(draft, pkg, cust, breakdown)
	if promoCode != nil {
		id := promoCode.ID
		b.PromoCodeID = &id
	}

	created, err := s.Bookings.Create(ctx, b, s.Refs.Encode)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	ctx = logger.WithBookingRef(ctx, created.Ref)
	logger.InfoContext(ctx, "booking created", "package_id", created.PackageID, "total", created.Total)

	s.publish(ctx, events.BookingCreated, events.BookingCreatedEvent{
		BookingRef:    created.Ref,
		PackageID:     created.PackageID,
		CustomerEmail: created.Customer.Email,
		CustomerName:  created.Customer.Name,
		VisitDate:     created.VisitDate,
		VisitTime:     created.VisitTime,
		Guests:        created.Guests,
		Total:         created.Total,
		CreatedAt:     created.CreatedAt,
	})

	if created.Total == 0 {
		if err := s.confirmFree(ctx, created, promoCode); err != nil {
			return nil, err
		}
		return &CreateIntentRes{BookingRef: created.Ref, Status: string(domain.BookingConfirmed), Breakdown: breakdown}, nil
	}

	intent, err := s.Payments.CreateIntent(ctx, payments.IntentRequest{
		Amount:         breakdown.Satang(),
		BookingRef:     created.Ref,
		CustomerEmail:  created.Customer.Email,
		Description:    fmt.Sprintf("%s x%d on %s", created.PackageName, created.Guests, created.VisitDate),
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		if _, uerr := s.Bookings.UpdateStatus(ctx, created.ID, []domain.BookingStatus{domain.BookingPending}, domain.BookingCanceled); uerr != nil {
			logger.ErrorContext(ctx, "failed to cancel booking after payment error", "error", uerr)
		}
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	if err := s.Bookings.SetPaymentIntent(ctx, created.ID, intent.ID); err != nil {
		return nil, fmt.Errorf("failed to store payment intent: %w", err)
	}

	s.publish(ctx, events.PaymentIntentCreated, events.PaymentIntentCreatedEvent{
		BookingRef: created.Ref,
		IntentID:   intent.ID,
		Amount:     breakdown.Satang(),
		Currency:   s.Currency,
	})

	return &CreateIntentRes{
		ClientSecret: intent.ClientSecret,
		BookingRef:   created.Ref,
		Status:       string(domain.BookingPending),
		Breakdown:    breakdown,
	}, nil
}

// confirmFree settles a booking whose discount covers the whole order.
func (s *Service) confirmFree(ctx context.Context, b *domain.Booking, p *domain.PromoCode) error {
	ok, err := s.Bookings.UpdateStatus(ctx, b.ID, []domain.BookingStatus{domain.BookingPending}, domain.BookingConfirmed)
	if err != nil {
		return fmt.Errorf("failed to confirm booking: %w", err)
	}
	if !ok {
		return nil
	}
	b.Status = domain.BookingConfirmed

	if p != nil {
		if err := s.Promos.Redeem(ctx, p.ID); err != nil {
			logger.ErrorContext(ctx, "failed to redeem promo code", "error", err)
		}
		s.publish(ctx, events.PromoRedeemed, events.PromoRedeemedEvent{
			PromoCodeID: p.ID.String(),
			Code:        p.Code,
			BookingRef:  b.Ref,
			Discount:    b.Discount,
		})
	}
	s.publish(ctx, events.BookingConfirmed, events.BookingConfirmedEvent{
		BookingRef:  b.Ref,
		Total:       b.Total,
		ConfirmedAt: s.now(),
	})
	s.sendConfirmation(ctx, b)
	return nil
}

func bookingFromDraft(d domain.Draft, pkg *domain.Package, c domain.Customer, bd domain.PriceBreakdown) *domain.Booking {
	b := &domain.Booking{
		Status:       domain.BookingPending,
		PackageID:    pkg.ID,
		PackageName:  pkg.Name,
		VisitDate:    d.DateString(),
		VisitTime:    d.Time,
		Guests:       d.Guests,
		Pickup:       d.Transfer.NeedsPickup(),
		TransferKind: d.Transfer.Kind(),
		Addons:       d.AddonIDs,
		Upsells:      d.Upsells,
		Customer:     c,

		Base:          bd.Base,
		AddonsTotal:   bd.Addons,
		UpsellsTotal:  bd.Upsells,
		TransferTotal: bd.Transfer,
		Discount:      bd.Discount,
		Total:         bd.Total,
	}
	if b.Pickup {
		b.Hotel = d.Hotel
		b.Room = d.Room
		b.PrivatePassengers = d.Transfer.Passengers()
		b.NonPlayers = d.Transfer.NonPlayers()
	}
	return b
}

func (s *Service) publish(ctx context.Context, subject string, payload any) {
	if err := s.Events.Publish(ctx, subject, payload); err != nil {
		logger.WarnContext(ctx, "failed to publish event", "subject", subject, "error", err)
	}
}
