// Package promo validates and manages order-level discount codes.
package promo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/skypark/bookings/internal/domain"
	"github.com/skypark/bookings/pkg/logger"
)

var (
	ErrInvalidCode   = errors.New("invalid promo code")
	ErrExpired       = errors.New("promo code expired")
	ErrNotYetActive  = errors.New("promo code not yet active")
	ErrUsageLimit    = errors.New("usage limit reached")
	ErrNotFound      = errors.New("promo code not found")
	ErrDuplicateCode = errors.New("promo code already exists")
	ErrInvalidInput  = errors.New("invalid promo code input")
)

// MinOrderError is returned when the order is below the code's minimum.
type MinOrderError struct {
	Min int64
}

func (e *MinOrderError) Error() string {
	return fmt.Sprintf("minimum order of %d THB required", e.Min)
}

// IsRejection reports whether err is a customer-facing verdict rather than a
// system failure.
func IsRejection(err error) bool {
	var minErr *MinOrderError
	return errors.Is(err, ErrInvalidCode) || errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrNotYetActive) || errors.Is(err, ErrUsageLimit) ||
		errors.As(err, &minErr)
}

type Repository interface {
	GetByCode(ctx context.Context, code string) (*domain.PromoCode, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PromoCode, error)
	List(ctx context.Context, limit, offset int) ([]domain.PromoCode, error)
	Create(ctx context.Context, p *domain.PromoCode) (*domain.PromoCode, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.UpdatePromoCodeReq) (*domain.PromoCode, error)
	// IncrementUsage bumps usage_count unless the limit is already reached.
	IncrementUsage(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	repo     Repository
	validate *validator.Validate
	now      func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
}

// NormalizeCode trims and upper-cases a customer-entered code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Evaluate checks p against an order total and returns the discount it grants.
func Evaluate(p *domain.PromoCode, orderTotal int64, now time.Time) (int64, error) {
	if p == nil || !p.Active {
		return 0, ErrInvalidCode
	}
	if p.ValidFrom != nil && now.Before(*p.ValidFrom) {
		return 0, ErrNotYetActive
	}
	if p.ValidUntil != nil && now.After(*p.ValidUntil) {
		return 0, ErrExpired
	}
	if p.UsageLimit != nil && p.UsageCount >= *p.UsageLimit {
		return 0, ErrUsageLimit
	}
	if orderTotal < 0 {
		orderTotal = 0
	}
	if p.MinOrderAmount != nil && orderTotal < *p.MinOrderAmount {
		return 0, &MinOrderError{Min: *p.MinOrderAmount}
	}

	var discount int64
	switch p.DiscountType {
	case domain.DiscountPercentage:
		discount = orderTotal * p.DiscountValue / 100
		if p.MaxDiscountAmount != nil && discount > *p.MaxDiscountAmount {
			discount = *p.MaxDiscountAmount
		}
	case domain.DiscountFixed:
		discount = p.DiscountValue
	default:
		return 0, ErrInvalidCode
	}

	if discount < 0 {
		discount = 0
	}
	if discount > orderTotal {
		discount = orderTotal
	}
	return discount, nil
}

// Validate looks up a customer-entered code and prices it against orderTotal.
func (s *Service) Validate(ctx context.Context, code string, orderTotal int64) (*domain.PromoCode, int64, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, 0, ErrInvalidCode
	}
	p, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load promo code: %w", err)
	}
	discount, err := Evaluate(p, orderTotal, s.now())
	if err != nil {
		return nil, 0, err
	}
	return p, discount, nil
}

// ValidateByID re-checks a code the client already applied, by id.
func (s *Service) ValidateByID(ctx context.Context, id uuid.UUID, orderTotal int64) (*domain.PromoCode, int64, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load promo code: %w", err)
	}
	discount, err := Evaluate(p, orderTotal, s.now())
	if err != nil {
		return nil, 0, err
	}
	return p, discount, nil
}

// Redeem counts one use of the code. Called once the payment succeeded, so a
// code that ran out in the meantime is logged and not treated as a failure.
func (s *Service) Redeem(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.IncrementUsage(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to increment promo usage: %w", err)
	}
	if !ok {
		logger.WarnContext(ctx, "promo code redeemed past its usage limit", "promo_code_id", id.String())
	}
	return nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.PromoCode, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Create(ctx context.Context, req domain.CreatePromoCodeReq) (*domain.PromoCode, error) {
	req.Code = NormalizeCode(req.Code)
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if req.DiscountType == domain.DiscountPercentage && req.DiscountValue > 100 {
		return nil, fmt.Errorf("%w: percentage above 100", ErrInvalidInput)
	}
	if req.ValidFrom != nil && req.ValidUntil != nil && req.ValidUntil.Before(*req.ValidFrom) {
		return nil, fmt.Errorf("%w: valid_until before valid_from", ErrInvalidInput)
	}

	existing, err := s.repo.GetByCode(ctx, req.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to check promo code: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateCode
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	p := &domain.PromoCode{
		ID:                uuid.New(),
		Code:              req.Code,
		Description:       strings.TrimSpace(req.Description),
		DiscountType:      req.DiscountType,
		DiscountValue:     req.DiscountValue,
		MinOrderAmount:    req.MinOrderAmount,
		MaxDiscountAmount: req.MaxDiscountAmount,
		ValidFrom:         req.ValidFrom,
		ValidUntil:        req.ValidUntil,
		UsageLimit:        req.UsageLimit,
		Active:            active,
	}
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to create promo code: %w", err)
	}
	logger.InfoContext(ctx, "promo code created", "code", created.Code, "promo_code_id", created.ID.String())
	return created, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req domain.UpdatePromoCodeReq) (*domain.PromoCode, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	p, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update promo code: %w", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}
