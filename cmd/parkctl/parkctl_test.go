package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/skypark/bookings/internal/catalog"
	"github.com/skypark/bookings/internal/checkout"
	"github.com/skypark/bookings/internal/domain"
	"github.com/skypark/bookings/internal/handoff"
	"github.com/skypark/bookings/internal/pricing"
)

var openTime = domain.NewOpenTimeSet("zipline-open", "luge-open")

func TestDraftFlags(t *testing.T) {
	f := draftFlags{
		pkg:     "zipline-32",
		date:    "2030-01-02",
		time:    "09:00",
		guests:  4,
		hotel:   "Beach Resort",
		private: true,
		addons:  []string{"photo"},
		upsells: []string{"drink-set:2", "extra-luge"},
	}
	d, err := f.draft(openTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Transfer.Kind() != domain.TransferPrivate || d.Transfer.Passengers() != 4 {
		t.Errorf("private transfer should carry at least the guests: %+v", d.Transfer)
	}
	if d.Upsells["drink-set"] != 2 || d.Upsells["extra-luge"] != 1 {
		t.Errorf("unexpected upsells %v", d.Upsells)
	}
	if d.DateString() != "2030-01-02" {
		t.Errorf("unexpected date %q", d.DateString())
	}
}

func TestDraftFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		f    draftFlags
	}{
		{"no package", draftFlags{}},
		{"bad date", draftFlags{pkg: "luge-3", date: "02/01/2030"}},
		{"bad upsell", draftFlags{pkg: "luge-3", upsells: []string{"drink-set:lots"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.f.draft(openTime); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestDraftFlags_FromURL(t *testing.T) {
	want := domain.NewDraft("zipline-18").WithTime("10:00").WithGuests(3).WithAddon("meal", true)
	link, err := handoff.URL("https://skypark.test/checkout", want)
	if err != nil {
		t.Fatalf("url: %v", err)
	}

	f := draftFlags{handoffURL: link, pkg: "ignored"}
	d, err := f.draft(openTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.PackageID != "zipline-18" || d.Guests != 3 || len(d.AddonIDs) != 1 {
		t.Errorf("draft not decoded from url: %+v", d)
	}
}

func TestRenderQuote(t *testing.T) {
	snap := catalog.Static()
	calc := pricing.New(snap, openTime, pricing.DefaultRates())
	d := domain.NewDraft("zipline-32").WithTime("09:00").WithGuests(2).WithAddon("photo", true)
	st := checkout.NewSession(calc, nil, d).State()

	var buf bytes.Buffer
	renderQuote(&buf, snap, st, calc.IsDraftValid(st.Draft))
	out := buf.String()

	for _, s := range []string{"Sky Flyer 32 Platforms", "6980", "1000", "7980", "incomplete"} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}
}
