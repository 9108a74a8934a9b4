package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/skypark/bookings/internal/domain"
	"github.com/skypark/bookings/internal/promo"
)

type Quote struct {
	Draft      domain.Draft             `json:"draft"`
	Date       string                   `json:"date,omitempty"`
	Package    *domain.Package          `json:"package,omitempty"`
	Breakdown  domain.PriceBreakdown    `json:"breakdown"`
	Valid      bool                     `json:"valid"`
	Problem    string                   `json:"problem,omitempty"`
	PromoCode  *domain.PromoCodeSummary `json:"promoCode,omitempty"`
	PromoError string                   `json:"promoError,omitempty"`
}

// Quote prices a draft without persisting anything. A promo code, when given,
// is applied to the subtotal the same way checkout will.
func (s *Service) Quote(ctx context.Context, d domain.Draft, promoCode string) (*Quote, error) {
	snap, err := s.Catalog.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	calc := s.calculator(snap)
	d = d.Normalize(s.OpenTime)

	q := &Quote{
		Draft:     d,
		Date:      d.DateString(),
		Package:   snap.Package(d.PackageID),
		Breakdown: calc.Breakdown(d),
	}
	if _, err := s.checkDraft(calc, d); err != nil {
		q.Problem = err.Error()
	} else {
		q.Valid = true
	}

	if strings.TrimSpace(promoCode) != "" && s.Promos != nil {
		p, discount, err := s.Promos.Validate(ctx, promoCode, q.Breakdown.Subtotal)
		switch {
		case err == nil:
			q.PromoCode = p.Summary()
			q.Breakdown = q.Breakdown.WithDiscount(discount)
		case promo.IsRejection(err):
			q.PromoError = err.Error()
		default:
			return nil, err
		}
	}
	return q, nil
}
