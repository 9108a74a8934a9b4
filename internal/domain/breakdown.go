package domain

// PriceBreakdown is the itemized price of a draft in whole THB.
type PriceBreakdown struct {
	Base     int64 `json:"base"`
	Addons   int64 `json:"addons"`
	Upsells  int64 `json:"upsells"`
	Transfer int64 `json:"transfer"`
	Subtotal int64 `json:"subtotal"`
	Discount int64 `json:"discount"`
	Total    int64 `json:"total"`
}

// WithDiscount replaces the discount and recomputes the total, never below zero.
func (b PriceBreakdown) WithDiscount(discount int64) PriceBreakdown {
	if discount < 0 {
		discount = 0
	}
	b.Subtotal = b.Base + b.Addons + b.Upsells + b.Transfer
	b.Discount = discount
	b.Total = b.Subtotal - discount
	if b.Total < 0 {
		b.Total = 0
	}
	return b
}

// Satang is the total in the smallest THB unit, as Stripe expects it.
func (b PriceBreakdown) Satang() int64 {
	return b.Total * 100
}
