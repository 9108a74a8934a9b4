package checkout_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/skypark/bookings/internal/catalog"
	"github.com/skypark/bookings/internal/checkout"
	"github.com/skypark/bookings/internal/domain"
	"github.com/skypark/bookings/internal/pricing"
)

type oracleFunc func(ctx context.Context, code string, total int64) (*checkout.ValidatePromoRes, error)

func (f oracleFunc) ValidatePromo(ctx context.Context, code string, total int64) (*checkout.ValidatePromoRes, error) {
	return f(ctx, code, total)
}

func newSession(oracle checkout.PromoOracle) *checkout.Session {
	calc := pricing.New(catalog.Static(), domain.NewOpenTimeSet("zipline-open", "luge-open"), pricing.DefaultRates())
	d := domain.NewDraft("zipline-32").
		WithDate(time.Now().AddDate(0, 0, 5)).
		WithTime("09:00").
		WithGuests(2).
		WithAddon("photo", true)
	return checkout.NewSession(calc, oracle, d)
}

func TestSession_ApplyAndRemovePromo(t *testing.T) {
	promoID := uuid.New()
	var gotTotal int64
	s := newSession(oracleFunc(func(_ context.Context, code string, total int64) (*checkout.ValidatePromoRes, error) {
		gotTotal = total
		return &checkout.ValidatePromoRes{
			Valid:          true,
			PromoCode:      &domain.PromoCodeSummary{ID: promoID, Code: code},
			DiscountAmount: 500,
		}, nil
	}))

	if got := s.Breakdown().Total; got != 7980 {
		t.Fatalf("expected 7980 before promo, got %d", got)
	}
	if err := s.ApplyPromo(context.Background(), "SAVE500"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotTotal != 7980 {
		t.Errorf("oracle should see the subtotal, got %d", gotTotal)
	}
	if got := s.Breakdown().Total; got != 7480 {
		t.Fatalf("expected 7480 with promo, got %d", got)
	}

	req := s.CheckoutRequest(domain.Customer{Name: "Jane", Email: "jane@example.com", Phone: "0812345678"})
	if req.PromoCodeID != promoID.String() || req.DiscountAmount != 500 {
		t.Errorf("checkout request missing promo: %+v", req)
	}
	if req.Guests != 2 || len(req.Addons) != 1 {
		t.Errorf("checkout request lost the draft: %+v", req)
	}

	s.RemovePromo()
	if got := s.Breakdown().Total; got != 7980 {
		t.Fatalf("expected 7980 after removing promo, got %d", got)
	}
	if req := s.CheckoutRequest(domain.Customer{}); req.PromoCodeID != "" || req.DiscountAmount != 0 {
		t.Errorf("promo should be gone: %+v", req)
	}
}

func TestSession_OneValidationInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	s := newSession(oracleFunc(func(ctx context.Context, code string, total int64) (*checkout.ValidatePromoRes, error) {
		close(started)
		<-release
		return &checkout.ValidatePromoRes{Valid: true, PromoCode: &domain.PromoCodeSummary{Code: code}, DiscountAmount: 100}, nil
	}))

	done := make(chan error, 1)
	go func() { done <- s.ApplyPromo(context.Background(), "FIRST") }()
	<-started

	if !s.State().Validating {
		t.Errorf("expected validating state")
	}
	if err := s.ApplyPromo(context.Background(), "SECOND"); !errors.Is(err, checkout.ErrValidationInFlight) {
		t.Fatalf("expected in-flight error, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first validation failed: %v", err)
	}
	st := s.State()
	if st.Validating || st.PromoCode == nil || st.PromoCode.Code != "FIRST" {
		t.Errorf("unexpected state after validation: %+v", st)
	}
}

func TestSession_LastVerdictWins(t *testing.T) {
	verdicts := []*checkout.ValidatePromoRes{
		{Valid: true, PromoCode: &domain.PromoCodeSummary{Code: "A"}, DiscountAmount: 500},
		{Valid: false, Error: "promo code expired"},
	}
	i := 0
	s := newSession(oracleFunc(func(context.Context, string, int64) (*checkout.ValidatePromoRes, error) {
		v := verdicts[i]
		i++
		return v, nil
	}))

	if err := s.ApplyPromo(context.Background(), "A"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := s.ApplyPromo(context.Background(), "B")
	if !errors.Is(err, checkout.ErrPromoRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
	st := s.State()
	if st.Breakdown.Discount != 0 || st.PromoCode != nil || st.PromoError != "promo code expired" {
		t.Errorf("rejected verdict should clear the earlier discount: %+v", st)
	}
}

func TestSession_TransportErrorClearsDiscount(t *testing.T) {
	s := newSession(oracleFunc(func(context.Context, string, int64) (*checkout.ValidatePromoRes, error) {
		return nil, errors.New("connection refused")
	}))

	if err := s.ApplyPromo(context.Background(), "SAVE"); err == nil {
		t.Fatal("expected error")
	}
	st := s.State()
	if st.Breakdown.Discount != 0 || st.PromoError != "failed to validate promo code" {
		t.Errorf("unexpected state: %+v", st)
	}
	if st.Validating {
		t.Errorf("validating flag must be cleared")
	}
}

func TestSession_UpdateKeepsDiscount(t *testing.T) {
	s := newSession(oracleFunc(func(context.Context, string, int64) (*checkout.ValidatePromoRes, error) {
		return &checkout.ValidatePromoRes{Valid: true, PromoCode: &domain.PromoCodeSummary{Code: "X"}, DiscountAmount: 500}, nil
	}))
	_ = s.ApplyPromo(context.Background(), "X")

	s.Update(func(d domain.Draft) domain.Draft { return d.WithGuests(3) })
	b := s.Breakdown()
	if b.Subtotal != 3490*3+500*3 || b.Discount != 500 {
		t.Errorf("unexpected breakdown after update: %+v", b)
	}
}

func TestPromoClient(t *testing.T) {
	promoID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/checkout/validate-promo" {
			http.NotFound(w, r)
			return
		}
		var req checkout.ValidatePromoReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch req.Code {
		case "SAVE500":
			_ = json.NewEncoder(w).Encode(checkout.ValidatePromoRes{
				Valid:          true,
				PromoCode:      &domain.PromoCodeSummary{ID: promoID, Code: req.Code},
				DiscountAmount: 500,
			})
		case "BOOM":
			http.Error(w, "internal", http.StatusInternalServerError)
		default:
			_ = json.NewEncoder(w).Encode(checkout.ValidatePromoRes{Valid: false, Error: "invalid promo code"})
		}
	}))
	defer srv.Close()

	c := checkout.NewPromoClient(srv.URL + "/")

	res, err := c.ValidatePromo(context.Background(), "SAVE500", 7980)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Valid || res.DiscountAmount != 500 || res.PromoCode.ID != promoID {
		t.Errorf("unexpected response: %+v", res)
	}

	res, err = c.ValidatePromo(context.Background(), "NOPE", 7980)
	if err != nil {
		t.Fatalf("rejection is not a transport error: %v", err)
	}
	if res.Valid || res.Error == "" {
		t.Errorf("expected rejection, got %+v", res)
	}

	if _, err := c.ValidatePromo(context.Background(), "BOOM", 7980); err == nil {
		t.Errorf("expected error for 500 response")
	}
}
