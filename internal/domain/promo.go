package domain

import (
	"time"

	"github.com/google/uuid"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

func ParseDiscountType(s string) (DiscountType, bool) {
	switch DiscountType(s) {
	case DiscountPercentage, DiscountFixed:
		return DiscountType(s), true
	default:
		return "", false
	}
}

// PromoCode is an order-level discount code. Code is stored upper-case.
type PromoCode struct {
	ID                uuid.UUID    `json:"id"`
	Code              string       `json:"code"`
	Description       string       `json:"description,omitempty"`
	DiscountType      DiscountType `json:"discount_type"`
	DiscountValue     int64        `json:"discount_value"`
	MinOrderAmount    *int64       `json:"min_order_amount,omitempty"`
	MaxDiscountAmount *int64       `json:"max_discount_amount,omitempty"`
	ValidFrom         *time.Time   `json:"valid_from,omitempty"`
	ValidUntil        *time.Time   `json:"valid_until,omitempty"`
	UsageLimit        *int         `json:"usage_limit,omitempty"`
	UsageCount        int          `json:"usage_count"`
	Active            bool         `json:"active"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// PromoCodeSummary is what the public validate endpoint reveals about a code.
type PromoCodeSummary struct {
	ID            uuid.UUID    `json:"id"`
	Code          string       `json:"code"`
	Description   string       `json:"description,omitempty"`
	DiscountType  DiscountType `json:"discount_type"`
	DiscountValue int64        `json:"discount_value"`
}

func (p *PromoCode) Summary() *PromoCodeSummary {
	return &PromoCodeSummary{
		ID:            p.ID,
		Code:          p.Code,
		Description:   p.Description,
		DiscountType:  p.DiscountType,
		DiscountValue: p.DiscountValue,
	}
}

// CreatePromoCodeReq is the admin payload for a new code.
type CreatePromoCodeReq struct {
	Code              string       `json:"code" validate:"required,min=3,max=32,alphanum"`
	Description       string       `json:"description" validate:"max=200"`
	DiscountType      DiscountType `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue     int64        `json:"discount_value" validate:"required,gt=0"`
	MinOrderAmount    *int64       `json:"min_order_amount" validate:"omitempty,gte=0"`
	MaxDiscountAmount *int64       `json:"max_discount_amount" validate:"omitempty,gt=0"`
	ValidFrom         *time.Time   `json:"valid_from"`
	ValidUntil        *time.Time   `json:"valid_until"`
	UsageLimit        *int         `json:"usage_limit" validate:"omitempty,gt=0"`
	Active            *bool        `json:"active"`
}

// UpdatePromoCodeReq carries the fields an admin may change after creation.
// Nil fields are left alone.
type UpdatePromoCodeReq struct {
	Description       *string    `json:"description" validate:"omitempty,max=200"`
	Active            *bool      `json:"active"`
	MinOrderAmount    *int64     `json:"min_order_amount" validate:"omitempty,gte=0"`
	MaxDiscountAmount *int64     `json:"max_discount_amount" validate:"omitempty,gt=0"`
	ValidFrom         *time.Time `json:"valid_from"`
	ValidUntil        *time.Time `json:"valid_until"`
	UsageLimit        *int       `json:"usage_limit" validate:"omitempty,gt=0"`
}
