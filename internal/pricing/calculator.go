// Package pricing computes the price of a booking draft against a catalog.
// Every function here is pure: no I/O, no clock, no errors.
package pricing

import (
	"strings"

	"github.com/skypark/bookings/internal/domain"
)

const (
	DefaultPrivateTransferPrice int64 = 2500
	DefaultNonPlayerPrice       int64 = 300
)

// Catalog is the read-only view of packages and upsells the calculator prices
// against. Lookups return nil for unknown ids.
type Catalog interface {
	Package(id string) *domain.Package
	Upsell(id string) *domain.Upsell
}

type Rates struct {
	PrivateTransfer int64
	NonPlayer       int64
}

func DefaultRates() Rates {
	return Rates{PrivateTransfer: DefaultPrivateTransferPrice, NonPlayer: DefaultNonPlayerPrice}
}

type Calculator struct {
	Catalog  Catalog
	OpenTime domain.OpenTimeSet
	Rates    Rates
}

func New(catalog Catalog, openTime domain.OpenTimeSet, rates Rates) *Calculator {
	if openTime == nil {
		openTime = domain.NewOpenTimeSet()
	}
	return &Calculator{Catalog: catalog, OpenTime: openTime, Rates: rates}
}

// Breakdown prices the draft. Unknown packages yield a zero breakdown and
// unknown add-on or upsell ids contribute nothing.
func (c *Calculator) Breakdown(d domain.Draft) domain.PriceBreakdown {
	if c == nil || c.Catalog == nil || d.PackageID == "" {
		return domain.PriceBreakdown{}
	}
	d = d.Normalize(c.OpenTime)

	pkg := c.Catalog.Package(d.PackageID)
	if pkg == nil {
		return domain.PriceBreakdown{}
	}

	guests := int64(d.Guests)
	var b domain.PriceBreakdown
	b.Base = pkg.Price * guests

	for _, id := range d.AddonIDs {
		if addon := c.Catalog.Package(id); addon != nil {
			b.Addons += addon.Price * guests
		}
	}

	for id, qty := range d.Upsells {
		if u := c.Catalog.Upsell(id); u != nil {
			b.Upsells += u.Price * int64(qty)
		}
	}

	b.Transfer = c.transfer(pkg, d.Transfer)
	return b.WithDiscount(0)
}

func (c *Calculator) transfer(pkg *domain.Package, t domain.TransferMode) int64 {
	if !pkg.IncludesTransfer {
		return 0
	}
	switch t.Kind() {
	case domain.TransferPrivate:
		return c.Rates.PrivateTransfer
	case domain.TransferShared:
		return int64(t.NonPlayers()) * c.Rates.NonPlayer
	default:
		return 0
	}
}

// IsDraftValid reports whether the draft is complete enough to go to checkout.
func (c *Calculator) IsDraftValid(d domain.Draft) bool {
	if d.PackageID == "" || d.Date.IsZero() {
		return false
	}
	if strings.TrimSpace(d.Time) == "" && !IsOpenTimePackage(d.PackageID, c.OpenTime) {
		return false
	}

	var pkg *domain.Package
	if c.Catalog != nil {
		pkg = c.Catalog.Package(d.PackageID)
	}
	if pkg == nil {
		return false
	}
	if !pkg.IncludesTransfer || !d.Transfer.NeedsPickup() {
		return true
	}
	return strings.TrimSpace(d.Hotel) != ""
}

// WithDiscount applies the last discount the promo service granted.
func WithDiscount(b domain.PriceBreakdown, discount int64) domain.PriceBreakdown {
	return b.WithDiscount(discount)
}

func IsOpenTimePackage(id string, set domain.OpenTimeSet) bool {
	return set.Contains(id)
}
