package handoff_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/skypark/bookings/internal/domain"
	"github.com/skypark/bookings/internal/handoff"
)

var openTime = domain.NewOpenTimeSet("luge-open")

func TestRoundTrip(t *testing.T) {
	date := time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		draft domain.Draft
	}{
		{
			name:  "timed package no pickup",
			draft: domain.NewDraft("zipline-32").WithDate(date).WithTime("09:00").WithGuests(2),
		},
		{
			name: "shared transfer with non-players",
			draft: domain.NewDraft("zipline-32").WithDate(date).WithTime("13:00").WithGuests(3).
				WithPickup(true).WithHotel("Kata Beach Resort", "204").WithNonPlayers(2),
		},
		{
			name: "private transfer",
			draft: domain.NewDraft("zipline-32").WithDate(date).WithTime("08:00").WithGuests(4).
				WithPickup(true).WithHotel("Hilton", "").WithPrivateTransfer(true).WithPrivatePassengers(7),
		},
		{
			name: "open time with extras",
			draft: domain.NewDraft("luge-open").WithDate(date).WithGuests(5).
				WithAddon("photo", true).WithAddon("meal", true).
				WithUpsellQty("extra-luge", 2).WithUpsellQty("photo-pack", 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := handoff.Encode(tt.draft)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			// Simulate the browser round trip through a query string.
			parsed, err := url.ParseQuery(v.Encode())
			if err != nil {
				t.Fatalf("parse query: %v", err)
			}
			got := handoff.Decode(parsed, openTime)
			want := tt.draft.Normalize(openTime)

			if got.PackageID != want.PackageID {
				t.Fatalf("package %q, want %q", got.PackageID, want.PackageID)
			}
			if got.Guests != want.Guests {
				t.Fatalf("guests %d, want %d", got.Guests, want.Guests)
			}
			if got.DateString() != want.DateString() {
				t.Fatalf("date %s, want %s", got.DateString(), want.DateString())
			}
			if got.Time != want.Time {
				t.Fatalf("time %q, want %q", got.Time, want.Time)
			}
			if got.Transfer != want.Transfer {
				t.Fatalf("transfer %+v, want %+v", got.Transfer, want.Transfer)
			}
			if got.Hotel != want.Hotel || got.Room != want.Room {
				t.Fatalf("hotel %q/%q, want %q/%q", got.Hotel, got.Room, want.Hotel, want.Room)
			}
			if len(got.AddonIDs) != len(want.AddonIDs) {
				t.Fatalf("addons %v, want %v", got.AddonIDs, want.AddonIDs)
			}
			for id, qty := range want.Upsells {
				if got.Upsells[id] != qty {
					t.Fatalf("upsell %s qty %d, want %d", id, got.Upsells[id], qty)
				}
			}
		})
	}
}

func TestEncode_Keys(t *testing.T) {
	d := domain.NewDraft("zipline-32").WithGuests(2).WithPickup(true).WithHotel("Hilton", "1").
		WithAddon("photo", true).WithAddon("meal", true).
		WithUpsellQty("b", 2).WithUpsellQty("a", 1)

	v, err := handoff.Encode(d)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	want := map[string]string{
		"package":         "zipline-32",
		"guests":          "2",
		"pickup":          "true",
		"privateTransfer": "false",
		"hotel":           "Hilton",
		"room":            "1",
		"addons":          "photo,meal",
		"promoAddons":     "a:1,b:2",
	}
	for k, val := range want {
		if got := v.Get(k); got != val {
			t.Fatalf("%s=%q, want %q", k, got, val)
		}
	}
	if v.Has("date") {
		t.Fatal("unset date should be omitted")
	}
	if v.Has("privatePassengers") {
		t.Fatal("privatePassengers should be omitted for shared transfer")
	}
}

func TestDecode_Defaults(t *testing.T) {
	tests := []struct {
		name  string
		query string
		check func(t *testing.T, d domain.Draft)
	}{
		{
			name:  "missing guests",
			query: "package=zipline-32",
			check: func(t *testing.T, d domain.Draft) {
				if d.Guests != 1 {
					t.Fatalf("guests=%d, want 1", d.Guests)
				}
			},
		},
		{
			name:  "unparseable guests",
			query: "package=zipline-32&guests=lots",
			check: func(t *testing.T, d domain.Draft) {
				if d.Guests != 1 {
					t.Fatalf("guests=%d, want 1", d.Guests)
				}
			},
		},
		{
			name:  "guests out of range",
			query: "package=zipline-32&guests=-4",
			check: func(t *testing.T, d domain.Draft) {
				if d.Guests != 1 {
					t.Fatalf("guests=%d, want 1", d.Guests)
				}
			},
		},
		{
			name:  "large group",
			query: "package=zipline-32&guests=15&promoAddons=extra-luge:25",
			check: func(t *testing.T, d domain.Draft) {
				if d.Guests != 15 || d.Upsells["extra-luge"] != 25 {
					t.Fatalf("guests=%d upsells=%v, want 15 and extra-luge:25", d.Guests, d.Upsells)
				}
			},
		},
		{
			name:  "bad date",
			query: "package=zipline-32&date=31-12-2026",
			check: func(t *testing.T, d domain.Draft) {
				if !d.Date.IsZero() {
					t.Fatalf("date should be unset, got %v", d.Date)
				}
			},
		},
		{
			name:  "malformed promo addons",
			query: "package=zipline-32&promoAddons=extra-luge:2,broken,photo:x,neg:-1,:3",
			check: func(t *testing.T, d domain.Draft) {
				if len(d.Upsells) != 1 || d.Upsells["extra-luge"] != 2 {
					t.Fatalf("upsells=%v", d.Upsells)
				}
			},
		},
		{
			name:  "private passengers below guests",
			query: "package=zipline-32&guests=6&pickup=true&privateTransfer=true&privatePassengers=2",
			check: func(t *testing.T, d domain.Draft) {
				if d.Transfer.Kind() != domain.TransferPrivate || d.Transfer.Passengers() != 6 {
					t.Fatalf("transfer=%+v", d.Transfer)
				}
			},
		},
		{
			name:  "private passengers missing",
			query: "package=zipline-32&guests=3&pickup=true&privateTransfer=true",
			check: func(t *testing.T, d domain.Draft) {
				if d.Transfer.Passengers() != 3 {
					t.Fatalf("passengers=%d, want 3", d.Transfer.Passengers())
				}
			},
		},
		{
			name:  "private transfer without pickup",
			query: "package=zipline-32&pickup=false&privateTransfer=true&nonPlayers=4",
			check: func(t *testing.T, d domain.Draft) {
				if d.Transfer.NeedsPickup() {
					t.Fatalf("transfer=%+v, want none", d.Transfer)
				}
			},
		},
		{
			name:  "open time package",
			query: "package=luge-open&time=10:00",
			check: func(t *testing.T, d domain.Draft) {
				if d.Time != domain.TimeFlexible {
					t.Fatalf("time=%q, want flexible", d.Time)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			tt.check(t, handoff.Decode(v, openTime))
		})
	}
}

func TestURL(t *testing.T) {
	got, err := handoff.URL("https://skypark.example/checkout", domain.NewDraft("zipline-32"))
	if err != nil {
		t.Fatalf("url: %v", err)
	}
	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.Path != "/checkout" || u.Query().Get("package") != "zipline-32" {
		t.Fatalf("unexpected url %s", got)
	}
}
