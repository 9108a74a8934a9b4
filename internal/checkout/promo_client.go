package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/skypark/bookings/internal/domain"
	"github.com/skypark/bookings/pkg/logger"
)

const validatePromoPath = "/api/checkout/validate-promo"

type ValidatePromoReq struct {
	Code       string `json:"code"`
	OrderTotal int64  `json:"orderTotal"`
}

// ValidatePromoRes is the verdict of the promo oracle. When Valid is false,
// Error says why.
type ValidatePromoRes struct {
	Valid          bool                     `json:"valid"`
	PromoCode      *domain.PromoCodeSummary `json:"promoCode,omitempty"`
	DiscountAmount int64                    `json:"discountAmount,omitempty"`
	Error          string                   `json:"error,omitempty"`
}

// PromoOracle validates a code against an order total.
type PromoOracle interface {
	ValidatePromo(ctx context.Context, code string, orderTotal int64) (*ValidatePromoRes, error)
}

// PromoClient calls the validate-promo endpoint over HTTP.
type PromoClient struct {
	baseURL string
	client  *http.Client
}

func NewPromoClient(baseURL string) *PromoClient {
	return &PromoClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *PromoClient) ValidatePromo(ctx context.Context, code string, orderTotal int64) (*ValidatePromoRes, error) {
	body, err := json.Marshal(ValidatePromoReq{Code: code, OrderTotal: orderTotal})
	if err != nil {
		return nil, err
	}

	url := c.baseURL + validatePromoPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID, ok := ctx.Value(logger.RequestIDKey).(string); ok {
		req.Header.Set("X-Request-ID", requestID)
	}

	logger.DebugContext(ctx, "validating promo code", "url", url)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	// Rejections come back as 200 with valid=false; anything else non-2xx is a
	// transport level failure.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("promo validation failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out ValidatePromoRes
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
