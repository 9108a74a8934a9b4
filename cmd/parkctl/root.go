package main

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/skypark/bookings/internal/domain"
	"github.com/skypark/bookings/internal/handoff"
	"github.com/skypark/bookings/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:          "parkctl",
	Short:        "SkyPark booking tools",
	Long:         `Price drafts, build checkout links and clean up housekeeping tables from the terminal.`,
	SilenceUsage: true,
}

// draftFlags is the booking draft as typed on the command line.
type draftFlags struct {
	handoffURL string
	pkg        string
	date       string
	time       string
	guests     int
	hotel      string
	room       string
	pickup     bool
	private    bool
	passengers int
	nonPlayers int
	addons     []string
	upsells    []string
}

func (f *draftFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.handoffURL, "url", "", "checkout URL or query string to decode instead of the flags below")
	fl.StringVarP(&f.pkg, "package", "p", "", "package id, e.g. zipline-32")
	fl.StringVarP(&f.date, "date", "d", "", "visit date (YYYY-MM-DD)")
	fl.StringVarP(&f.time, "time", "t", "", "time slot, e.g. 09:00")
	fl.IntVarP(&f.guests, "guests", "g", domain.MinGuests, "number of guests")
	fl.StringVar(&f.hotel, "hotel", "", "pickup hotel")
	fl.StringVar(&f.room, "room", "", "hotel room")
	fl.BoolVar(&f.pickup, "pickup", false, "request hotel pickup")
	fl.BoolVar(&f.private, "private", false, "private transfer (implies --pickup)")
	fl.IntVar(&f.passengers, "passengers", 0, "private transfer passengers")
	fl.IntVar(&f.nonPlayers, "non-players", 0, "non-riding passengers on the shared transfer")
	fl.StringSliceVar(&f.addons, "addon", nil, "add-on id (repeatable)")
	fl.StringSliceVar(&f.upsells, "upsell", nil, "upsell as id:qty (repeatable)")
}

func (f *draftFlags) draft(openTime domain.OpenTimeSet) (domain.Draft, error) {
	if f.handoffURL != "" {
		raw := f.handoffURL
		if i := strings.Index(raw, "?"); i >= 0 {
			raw = raw[i+1:]
		}
		q, err := url.ParseQuery(raw)
		if err != nil {
			return domain.Draft{}, fmt.Errorf("invalid --url: %w", err)
		}
		return handoff.Decode(q, openTime), nil
	}

	if f.pkg == "" {
		return domain.Draft{}, fmt.Errorf("--package or --url is required")
	}
	d := domain.NewDraft(f.pkg).WithTime(f.time).WithGuests(f.guests).WithHotel(f.hotel, f.room)
	if f.date != "" {
		date, err := time.Parse(domain.DateLayout, f.date)
		if err != nil {
			return domain.Draft{}, fmt.Errorf("invalid --date: %w", err)
		}
		d = d.WithDate(date)
	}
	switch {
	case f.private:
		d = d.WithTransfer(domain.PrivateTransfer(f.passengers))
	case f.pickup:
		d = d.WithTransfer(domain.SharedTransfer(f.nonPlayers))
	}
	for _, id := range f.addons {
		d = d.WithAddon(id, true)
	}
	for _, u := range f.upsells {
		id, qty, err := parseUpsell(u)
		if err != nil {
			return domain.Draft{}, err
		}
		d = d.WithUpsellQty(id, qty)
	}
	return d.Normalize(openTime), nil
}

func parseUpsell(s string) (string, int, error) {
	id, qtyStr, ok := strings.Cut(s, ":")
	if !ok {
		return strings.TrimSpace(s), 1, nil
	}
	var qty int
	if _, err := fmt.Sscanf(qtyStr, "%d", &qty); err != nil {
		return "", 0, fmt.Errorf("invalid --upsell %q: want id:qty", s)
	}
	return strings.TrimSpace(id), qty, nil
}

func openTimeSet(cfg *config.Config) domain.OpenTimeSet {
	return domain.NewOpenTimeSet(cfg.Park.OpenTimePackages...)
}
