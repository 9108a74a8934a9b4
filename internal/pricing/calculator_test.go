package pricing_test

import (
	"testing"
	"time"

	"github.com/skypark/bookings/internal/domain"
	"github.com/skypark/bookings/internal/pricing"
)

type mapCatalog struct {
	packages map[string]*domain.Package
	upsells  map[string]*domain.Upsell
}

func (m mapCatalog) Package(id string) *domain.Package { return m.packages[id] }
func (m mapCatalog) Upsell(id string) *domain.Upsell   { return m.upsells[id] }

func testCatalog() mapCatalog {
	return mapCatalog{
		packages: map[string]*domain.Package{
			"zipline-32":  {ID: "zipline-32", Price: 3490, IncludesTransfer: true},
			"luge-open":   {ID: "luge-open", Price: 1200},
			"photo":       {ID: "photo", Price: 500, Category: domain.CategoryAddon},
			"meal":        {ID: "meal", Price: 250, Category: domain.CategoryAddon},
			"no-transfer": {ID: "no-transfer", Price: 1000},
		},
		upsells: map[string]*domain.Upsell{
			"extra-luge": {ID: "extra-luge", Price: 150, OriginalPrice: 300},
		},
	}
}

func newCalc() *pricing.Calculator {
	return pricing.New(testCatalog(), domain.NewOpenTimeSet("luge-open"), pricing.DefaultRates())
}

func visitDate() time.Time { return time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC) }

func TestBreakdown_BaseScalesWithGuests(t *testing.T) {
	calc := newCalc()
	for guests := 1; guests <= 40; guests++ {
		b := calc.Breakdown(domain.NewDraft("zipline-32").WithGuests(guests))
		if b.Base != 3490*int64(guests) {
			t.Fatalf("guests=%d: base=%d, want %d", guests, b.Base, 3490*int64(guests))
		}
	}
}

func TestBreakdown_TotalInvariant(t *testing.T) {
	calc := newCalc()
	drafts := []domain.Draft{
		domain.NewDraft(""),
		domain.NewDraft("unknown"),
		domain.NewDraft("zipline-32").WithGuests(3).WithAddon("photo", true).WithUpsellQty("extra-luge", 2),
		domain.NewDraft("zipline-32").WithPickup(true).WithNonPlayers(4),
		domain.NewDraft("zipline-32").WithPickup(true).WithPrivateTransfer(true),
		domain.NewDraft("luge-open").WithAddon("ghost", true).WithUpsellQty("ghost", 3),
	}
	discounts := []int64{0, 100, 500, 100000, -5}

	for _, d := range drafts {
		for _, disc := range discounts {
			b := pricing.WithDiscount(calc.Breakdown(d), disc)
			want := b.Base + b.Addons + b.Upsells + b.Transfer - max(disc, 0)
			if want < 0 {
				want = 0
			}
			if b.Total != want {
				t.Fatalf("draft %+v discount %d: total=%d, want %d", d, disc, b.Total, want)
			}
		}
	}
}

func TestBreakdown_UnknownPackageIsZero(t *testing.T) {
	calc := newCalc()
	for _, id := range []string{"", "nope"} {
		if b := calc.Breakdown(domain.NewDraft(id).WithGuests(4)); b != (domain.PriceBreakdown{}) {
			t.Fatalf("package %q: expected zero breakdown, got %+v", id, b)
		}
	}
	var nilCalc *pricing.Calculator
	if b := nilCalc.Breakdown(domain.NewDraft("zipline-32")); b.Total != 0 {
		t.Fatalf("nil calculator should price to zero, got %+v", b)
	}
}

func TestBreakdown_Transfer(t *testing.T) {
	calc := newCalc()

	tests := []struct {
		name  string
		draft domain.Draft
		want  int64
	}{
		{
			name:  "private ignores prior non-players",
			draft: domain.NewDraft("zipline-32").WithGuests(2).WithPickup(true).WithNonPlayers(7).WithPrivateTransfer(true),
			want:  pricing.DefaultPrivateTransferPrice,
		},
		{
			name:  "disabling private bills non-players",
			draft: domain.NewDraft("zipline-32").WithPickup(true).WithPrivateTransfer(true).WithPrivateTransfer(false).WithNonPlayers(3),
			want:  3 * pricing.DefaultNonPlayerPrice,
		},
		{
			name:  "shared without non-players is free",
			draft: domain.NewDraft("zipline-32").WithPickup(true),
			want:  0,
		},
		{
			name:  "pickup declined",
			draft: domain.NewDraft("zipline-32").WithPickup(true).WithPrivateTransfer(true).WithPickup(false),
			want:  0,
		},
		{
			name:  "package without transfer",
			draft: domain.NewDraft("no-transfer").WithPickup(true).WithPrivateTransfer(true),
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calc.Breakdown(tt.draft).Transfer; got != tt.want {
				t.Fatalf("transfer=%d, want %d", got, tt.want)
			}
		})
	}
}

func TestBreakdown_PrivatePriceForAnyNonPlayerCount(t *testing.T) {
	calc := newCalc()
	for n := 0; n <= domain.MaxNonPlayers; n++ {
		d := domain.NewDraft("zipline-32").WithPickup(true).WithNonPlayers(n).WithPrivateTransfer(true)
		if got := calc.Breakdown(d).Transfer; got != 2500 {
			t.Fatalf("nonPlayers=%d: transfer=%d, want 2500", n, got)
		}
	}
}

func TestBreakdown_Scenarios(t *testing.T) {
	calc := newCalc()

	d := domain.NewDraft("zipline-32").WithGuests(2).WithAddon("photo", true)
	b := calc.Breakdown(d)
	if b.Base != 6980 || b.Addons != 1000 || b.Transfer != 0 || b.Total != 7980 {
		t.Fatalf("unexpected breakdown: %+v", b)
	}

	discounted := pricing.WithDiscount(b, 500)
	if discounted.Total != 7480 || discounted.Discount != 500 {
		t.Fatalf("discounted: %+v", discounted)
	}

	removed := pricing.WithDiscount(discounted, 0)
	if removed.Total != 7980 || removed.Discount != 0 {
		t.Fatalf("after removal: %+v", removed)
	}
}

func TestBreakdown_UpsellsPerUnit(t *testing.T) {
	calc := newCalc()
	b := calc.Breakdown(domain.NewDraft("luge-open").WithGuests(4).WithUpsellQty("extra-luge", 3))
	if b.Upsells != 450 {
		t.Fatalf("upsells=%d, want 450", b.Upsells)
	}
	if b.Base != 4800 {
		t.Fatalf("base=%d, want 4800", b.Base)
	}
}

func TestIsDraftValid(t *testing.T) {
	calc := newCalc()

	base := domain.NewDraft("zipline-32").WithDate(visitDate()).WithTime("09:00")

	tests := []struct {
		name  string
		draft domain.Draft
		want  bool
	}{
		{"complete", base, true},
		{"no package", base.WithPackage(""), false},
		{"no date", base.WithDate(time.Time{}), false},
		{"no time", base.WithTime(""), false},
		{"open time without slot", domain.NewDraft("luge-open").WithDate(visitDate()), true},
		{"pickup without hotel", base.WithPickup(true), false},
		{"pickup with blank hotel", base.WithPickup(true).WithHotel("   ", "12"), false},
		{"pickup with hotel", base.WithPickup(true).WithHotel("Hilton", ""), true},
		{"pickup declined", base.WithPickup(false), true},
		{"unknown package", base.WithPackage("bungee"), false},
		{"no transfer package ignores hotel", domain.NewDraft("no-transfer").WithDate(visitDate()).WithTime("10:00").WithPickup(true), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calc.IsDraftValid(tt.draft); got != tt.want {
				t.Fatalf("IsDraftValid=%v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsOpenTimePackage(t *testing.T) {
	set := domain.NewOpenTimeSet("luge-open", "zipline-open")
	if !pricing.IsOpenTimePackage("luge-open", set) {
		t.Fatal("luge-open should be open time")
	}
	if pricing.IsOpenTimePackage("zipline-32", set) {
		t.Fatal("zipline-32 should not be open time")
	}
	if pricing.IsOpenTimePackage("x", nil) {
		t.Fatal("nil set contains nothing")
	}
}
