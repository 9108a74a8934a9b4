package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/skypark/bookings/pkg/auth"
)

type memCounter struct {
	hits map[string]int
	err  error
}

func (m *memCounter) Hit(_ context.Context, key string, _ time.Duration) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.hits[key]++
	return m.hits[key], nil
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimiter(t *testing.T) {
	counter := &memCounter{hits: map[string]int{}}
	rl := NewRateLimiter(counter, RateLimitConfig{Scope: "promo", Requests: 2, Window: time.Minute})
	h := rl.Middleware()(okHandler)

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := do("1.2.3.4"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}
	rec := do("1.2.3.4")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("unexpected Retry-After %q", rec.Header().Get("Retry-After"))
	}
	if rec := do("5.6.7.8"); rec.Code != http.StatusOK {
		t.Errorf("other clients must not be limited, got %d", rec.Code)
	}
	if counter.hits["promo:ip:1.2.3.4"] != 3 {
		t.Errorf("unexpected key layout: %v", counter.hits)
	}
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	rl := NewRateLimiter(&memCounter{err: errors.New("db down")}, RateLimitConfig{Requests: 1, Window: time.Minute})
	h := rl.Middleware()(okHandler)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 when the counter fails, got %d", rec.Code)
		}
	}
}

func TestRequireAdmin(t *testing.T) {
	const secret = "test-secret"
	admin, _ := auth.NewAccessToken("u1", "ops@skypark.test", auth.RoleAdmin, secret, time.Hour)
	staff, _ := auth.NewAccessToken("u2", "desk@skypark.test", auth.RoleStaff, secret, time.Hour)
	forged, _ := auth.NewAccessToken("u3", "x@y.z", auth.RoleAdmin, "other", time.Hour)

	var seen *auth.Claims
	h := RequireAdmin(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = Claims(r)
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"forged", "Bearer " + forged, http.StatusUnauthorized},
		{"staff", "Bearer " + staff, http.StatusForbidden},
		{"admin", "Bearer " + admin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
	if seen == nil || seen.Email != "ops@skypark.test" {
		t.Errorf("claims not propagated: %+v", seen)
	}
}
