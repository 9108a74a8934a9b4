package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/skypark/bookings/internal/checkout"
	"github.com/skypark/bookings/internal/domain"
	"github.com/skypark/bookings/internal/handoff"
	"github.com/skypark/bookings/internal/http/response"
	"github.com/skypark/bookings/internal/promo"
)

const maxBodyBytes = 64 << 10

type Checkout interface {
	CreatePaymentIntent(ctx context.Context, req checkout.CreateIntentReq, idempotencyKey string) (*checkout.CreateIntentRes, error)
	Quote(ctx context.Context, d domain.Draft, promoCode string) (*checkout.Quote, error)
}

type PromoValidator interface {
	Validate(ctx context.Context, code string, orderTotal int64) (*domain.PromoCode, int64, error)
}

type CheckoutHandler struct {
	Checkout Checkout
	Promos   PromoValidator
	OpenTime domain.OpenTimeSet

	// PromoLimit wraps validate-promo, usually with a rate limiter.
	PromoLimit func(http.Handler) http.Handler
}

func NewCheckoutHandler(c Checkout, promos PromoValidator, openTime domain.OpenTimeSet) *CheckoutHandler {
	return &CheckoutHandler{Checkout: c, Promos: promos, OpenTime: openTime}
}

func (h *CheckoutHandler) Routes() chi.Router {
	r := chi.NewRouter()
	if h.PromoLimit != nil {
		r.With(h.PromoLimit).Post("/validate-promo", h.validatePromo)
	} else {
		r.Post("/validate-promo", h.validatePromo)
	}
	r.Get("/quote", h.quoteFromQuery)
	r.Post("/quote", h.quote)
	r.Post("/create-payment-intent", h.createPaymentIntent)
	return r
}

func (h *CheckoutHandler) validatePromo(w http.ResponseWriter, r *http.Request) {
	var in checkout.ValidatePromoReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	if strings.TrimSpace(in.Code) == "" {
		response.JSON(w, http.StatusOK, checkout.ValidatePromoRes{Valid: false, Error: promo.ErrInvalidCode.Error()})
		return
	}
	if in.OrderTotal < 0 {
		response.BadRequest(w, "orderTotal must not be negative")
		return
	}

	p, discount, err := h.Promos.Validate(r.Context(), in.Code, in.OrderTotal)
	if err != nil {
		if promo.IsRejection(err) {
			response.JSON(w, http.StatusOK, checkout.ValidatePromoRes{Valid: false, Error: err.Error()})
			return
		}
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, checkout.ValidatePromoRes{
		Valid:          true,
		PromoCode:      p.Summary(),
		DiscountAmount: discount,
	})
}

// quoteReq is the create-payment-intent body without the customer, plus an
// optional promo code.
type quoteReq struct {
	checkout.CreateIntentReq
	PromoCode string `json:"promoCode"`
}

func (h *CheckoutHandler) quote(w http.ResponseWriter, r *http.Request) {
	var in quoteReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	h.writeQuote(w, r, in.Draft(h.OpenTime), in.PromoCode)
}

// quoteFromQuery prices a handoff URL query as the checkout page would see it.
func (h *CheckoutHandler) quoteFromQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if strings.TrimSpace(q.Get("package")) == "" {
		response.BadRequest(w, "package is required")
		return
	}
	h.writeQuote(w, r, handoff.Decode(q, h.OpenTime), q.Get("promoCode"))
}

func (h *CheckoutHandler) writeQuote(w http.ResponseWriter, r *http.Request, d domain.Draft, promoCode string) {
	q, err := h.Checkout.Quote(r.Context(), d, promoCode)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, q)
}

func (h *CheckoutHandler) createPaymentIntent(w http.ResponseWriter, r *http.Request) {
	var in checkout.CreateIntentReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}

	res, err := h.Checkout.CreatePaymentIntent(r.Context(), in, r.Header.Get("Idempotency-Key"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, res)
}
