package catalog

import (
	"context"

	"github.com/skypark/bookings/internal/domain"
)

// StaticSource serves a fixed snapshot. Used when no database catalog is
// configured, and by tests.
type StaticSource struct {
	snap *Snapshot
}

func NewStaticSource(snap *Snapshot) *StaticSource {
	return &StaticSource{snap: snap}
}

func (s *StaticSource) Load(context.Context) (*Snapshot, error) {
	return s.snap, nil
}

// Static is the park's built-in catalog.
func Static() *Snapshot {
	return NewSnapshot(staticPackages, staticUpsells)
}

var staticPackages = []domain.Package{
	{
		ID:               "zipline-32",
		Name:             "Sky Flyer 32 Platforms",
		Price:            3490,
		Duration:         "3 hours",
		Category:         domain.CategoryZipline,
		IncludesMeal:     true,
		IncludesTransfer: true,
		Image:            "/images/packages/zipline-32.jpg",
		Stats: []domain.Stat{
			{Label: "Platforms", Value: "32"},
			{Label: "Longest line", Value: "400 m"},
			{Label: "Min. age", Value: "4"},
		},
		Features: []string{"Full safety briefing", "Thai lunch buffet", "Hotel pickup"},
	},
	{
		ID:               "zipline-18",
		Name:             "Sky Flyer 18 Platforms",
		Price:            2490,
		Duration:         "2 hours",
		Category:         domain.CategoryZipline,
		IncludesTransfer: true,
		Image:            "/images/packages/zipline-18.jpg",
		Stats: []domain.Stat{
			{Label: "Platforms", Value: "18"},
			{Label: "Longest line", Value: "250 m"},
			{Label: "Min. age", Value: "4"},
		},
		Features: []string{"Full safety briefing", "Hotel pickup"},
	},
	{
		ID:       "zipline-open",
		Name:     "Zipline Open Pass",
		Price:    1890,
		Duration: "Any time, same day",
		Category: domain.CategoryZipline,
		Image:    "/images/packages/zipline-open.jpg",
		Stats: []domain.Stat{
			{Label: "Platforms", Value: "10"},
			{Label: "Min. age", Value: "6"},
		},
		Features: []string{"Walk-in any time during opening hours"},
	},
	{
		ID:       "luge-3",
		Name:     "Luge 3 Rides",
		Price:    890,
		Duration: "1 hour",
		Category: domain.CategoryLuge,
		Image:    "/images/packages/luge-3.jpg",
		Stats: []domain.Stat{
			{Label: "Rides", Value: "3"},
			{Label: "Track", Value: "1.2 km"},
		},
		Features: []string{"Chairlift back to the top"},
	},
	{
		ID:       "luge-open",
		Name:     "Luge Open Pass",
		Price:    1200,
		Duration: "Any time, same day",
		Category: domain.CategoryLuge,
		Image:    "/images/packages/luge-open.jpg",
		Stats: []domain.Stat{
			{Label: "Rides", Value: "5"},
			{Label: "Track", Value: "1.2 km"},
		},
		Features: []string{"Walk-in any time during opening hours"},
	},
	{
		ID:               "combo-world",
		Name:             "Zipline + Luge Combo",
		Price:            4290,
		Duration:         "Half day",
		Category:         domain.CategoryCombo,
		IncludesMeal:     true,
		IncludesTransfer: true,
		Image:            "/images/packages/combo-world.jpg",
		Stats: []domain.Stat{
			{Label: "Platforms", Value: "32"},
			{Label: "Luge rides", Value: "3"},
		},
		Features: []string{"Thai lunch buffet", "Hotel pickup", "Priority boarding"},
	},
	{
		ID:       "photo",
		Name:     "Photo & Video Package",
		Price:    500,
		Category: domain.CategoryAddon,
	},
	{
		ID:       "meal",
		Name:     "Lunch Upgrade",
		Price:    250,
		Category: domain.CategoryAddon,
	},
}

var staticUpsells = []domain.Upsell{
	{ID: "extra-luge", Name: "Extra Luge Ride", Description: "One more ride down the track", Price: 150, OriginalPrice: 300},
	{ID: "photo-pack", Name: "Printed Photo Pack", Description: "Five printed photos", Price: 290, OriginalPrice: 450},
	{ID: "drink-set", Name: "Drink Set", Description: "Two soft drinks after the ride", Price: 60, OriginalPrice: 90},
}
