package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingPaid      BookingStatus = "paid"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCanceled  BookingStatus = "canceled"
	BookingRefunded  BookingStatus = "refunded"
)

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingPending, BookingPaid, BookingConfirmed, BookingCanceled, BookingRefunded:
		return BookingStatus(s), true
	default:
		return "", false
	}
}

// Customer is the contact captured on the checkout form.
type Customer struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,min=6,max=30"`
	Country string `json:"country,omitempty" validate:"omitempty,max=60"`
	Notes   string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type Booking struct {
	ID     int64         `json:"id"`
	Ref    string        `json:"ref"`
	Status BookingStatus `json:"status"`

	PackageID   string `json:"package_id"`
	PackageName string `json:"package_name"`
	VisitDate   string `json:"visit_date"`
	VisitTime   string `json:"visit_time"`
	Guests      int    `json:"guests"`

	Pickup            bool         `json:"pickup"`
	Hotel             string       `json:"hotel,omitempty"`
	Room              string       `json:"room,omitempty"`
	TransferKind      TransferKind `json:"transfer_kind"`
	PrivatePassengers int          `json:"private_passengers,omitempty"`
	NonPlayers        int          `json:"non_players,omitempty"`

	Addons  []string       `json:"addons"`
	Upsells map[string]int `json:"upsells"`

	Customer Customer `json:"customer"`

	Base          int64 `json:"base"`
	AddonsTotal   int64 `json:"addons_total"`
	UpsellsTotal  int64 `json:"upsells_total"`
	TransferTotal int64 `json:"transfer_total"`
	Discount      int64 `json:"discount"`
	Total         int64 `json:"total"`

	PromoCodeID     *uuid.UUID `json:"promo_code_id,omitempty"`
	PaymentIntentID string     `json:"payment_intent_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Breakdown rebuilds the stored price lines.
func (b *Booking) Breakdown() PriceBreakdown {
	return PriceBreakdown{
		Base:     b.Base,
		Addons:   b.AddonsTotal,
		Upsells:  b.UpsellsTotal,
		Transfer: b.TransferTotal,
	}.WithDiscount(b.Discount)
}

// BookingSummary is the customer-facing view returned by the lookup endpoint.
type BookingSummary struct {
	Ref         string         `json:"ref"`
	Status      BookingStatus  `json:"status"`
	PackageName string         `json:"package_name"`
	VisitDate   string         `json:"visit_date"`
	VisitTime   string         `json:"visit_time"`
	Guests      int            `json:"guests"`
	Pickup      bool           `json:"pickup"`
	Hotel       string         `json:"hotel,omitempty"`
	Breakdown   PriceBreakdown `json:"breakdown"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (b *Booking) Summary() BookingSummary {
	return BookingSummary{
		Ref:         b.Ref,
		Status:      b.Status,
		PackageName: b.PackageName,
		VisitDate:   b.VisitDate,
		VisitTime:   b.VisitTime,
		Guests:      b.Guests,
		Pickup:      b.Pickup,
		Hotel:       b.Hotel,
		Breakdown:   b.Breakdown(),
		CreatedAt:   b.CreatedAt,
	}
}

// BookingFilter narrows the admin listing.
type BookingFilter struct {
	Status *BookingStatus
	Limit  int
	Offset int
}
