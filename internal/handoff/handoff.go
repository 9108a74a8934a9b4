// Package handoff carries a booking draft from the booking page to the
// checkout page as URL query parameters.
//
// Keys:
//
//	package            package id
//	date               YYYY-MM-DD
//	time               HH:MM or "flexible"
//	guests             1..10
//	pickup             true|false
//	hotel, room        pickup details
//	privateTransfer    true|false
//	privatePassengers  guests..10, only with privateTransfer
//	nonPlayers         0..10, only without privateTransfer
//	addons             id,id,...
//	promoAddons        id:qty,id:qty,...
//
// Decoding never fails: anything unparseable falls back to its default.
package handoff

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-querystring/query"

	"github.com/skypark/bookings/internal/domain"
)

type params struct {
	Package           string   `url:"package,omitempty"`
	Date              string   `url:"date,omitempty"`
	Time              string   `url:"time,omitempty"`
	Guests            int      `url:"guests"`
	Pickup            bool     `url:"pickup"`
	Hotel             string   `url:"hotel,omitempty"`
	Room              string   `url:"room,omitempty"`
	PrivateTransfer   bool     `url:"privateTransfer"`
	PrivatePassengers int      `url:"privatePassengers,omitempty"`
	NonPlayers        int      `url:"nonPlayers,omitempty"`
	Addons            []string `url:"addons,comma,omitempty"`
	PromoAddons       string   `url:"promoAddons,omitempty"`
}

// Encode turns a draft into checkout query parameters.
func Encode(d domain.Draft) (url.Values, error) {
	p := params{
		Package:           d.PackageID,
		Date:              d.DateString(),
		Time:              d.Time,
		Guests:            d.Guests,
		Pickup:            d.Transfer.NeedsPickup(),
		Hotel:             d.Hotel,
		Room:              d.Room,
		PrivateTransfer:   d.Transfer.Kind() == domain.TransferPrivate,
		PrivatePassengers: d.Transfer.Passengers(),
		NonPlayers:        d.Transfer.NonPlayers(),
		Addons:            d.AddonIDs,
		PromoAddons:       encodeUpsells(d.Upsells),
	}
	v, err := query.Values(p)
	if err != nil {
		return nil, fmt.Errorf("encode handoff: %w", err)
	}
	return v, nil
}

// URL appends the encoded draft to the checkout page address.
func URL(base string, d domain.Draft) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse checkout url: %w", err)
	}
	v, err := Encode(d)
	if err != nil {
		return "", err
	}
	u.RawQuery = v.Encode()
	return u.String(), nil
}

// Decode rebuilds a normalized draft from checkout query parameters.
func Decode(v url.Values, openTime domain.OpenTimeSet) domain.Draft {
	d := domain.NewDraft(strings.TrimSpace(v.Get("package")))

	if date, err := time.Parse(domain.DateLayout, strings.TrimSpace(v.Get("date"))); err == nil {
		d = d.WithDate(date)
	}
	d = d.WithTime(v.Get("time"))
	d = d.WithGuests(intParam(v, "guests", domain.MinGuests))
	d = d.WithHotel(v.Get("hotel"), v.Get("room"))

	if boolParam(v, "pickup") {
		if boolParam(v, "privateTransfer") {
			d = d.WithTransfer(domain.PrivateTransfer(intParam(v, "privatePassengers", d.Guests)))
		} else {
			d = d.WithTransfer(domain.SharedTransfer(intParam(v, "nonPlayers", 0)))
		}
	}

	for _, id := range splitList(v.Get("addons")) {
		d = d.WithAddon(id, true)
	}
	for _, pair := range splitList(v.Get("promoAddons")) {
		id, qty, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil || n <= 0 {
			continue
		}
		d = d.WithUpsellQty(strings.TrimSpace(id), n)
	}

	return d.Normalize(openTime)
}

func encodeUpsells(m map[string]int) string {
	if len(m) == 0 {
		return ""
	}
	ids := make([]string, 0, len(m))
	for id, qty := range m {
		if qty > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id+":"+strconv.Itoa(m[id]))
	}
	return strings.Join(parts, ",")
}

func intParam(v url.Values, key string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v.Get(key)))
	if err != nil {
		return def
	}
	return n
}

func boolParam(v url.Values, key string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v.Get(key)))
	return err == nil && b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
