package domain

type PackageCategory string

const (
	CategoryZipline PackageCategory = "zipline"
	CategoryLuge    PackageCategory = "luge"
	CategoryCombo   PackageCategory = "combo"
	CategoryAddon   PackageCategory = "addon"
)

// Stat is one row of the key/value facts shown on a package card. Order matters.
type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Package is a purchasable activity. Prices are whole THB.
type Package struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Price            int64           `json:"price"`
	Duration         string          `json:"duration"`
	Category         PackageCategory `json:"category"`
	IncludesMeal     bool            `json:"includes_meal"`
	IncludesTransfer bool            `json:"includes_transfer"`
	Image            string          `json:"image"`
	Stats            []Stat          `json:"stats,omitempty"`
	Features         []string        `json:"features,omitempty"`
}

// Upsell is a discounted extra sold per unit (extra luge rides, photo packs).
// Not to be confused with PromoCode, which discounts the whole order.
type Upsell struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Price         int64  `json:"price"`
	OriginalPrice int64  `json:"original_price,omitempty"`
}

// OpenTimeSet lists packages that can be used at any time of the day.
type OpenTimeSet map[string]struct{}

func NewOpenTimeSet(ids ...string) OpenTimeSet {
	s := make(OpenTimeSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s OpenTimeSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}
