package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/skypark/bookings/internal/domain"
	"github.com/skypark/bookings/internal/http/middleware"
	"github.com/skypark/bookings/internal/http/response"
	"github.com/skypark/bookings/pkg/logger"
)

type BookingAdmin interface {
	ListBookings(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error)
	GetBooking(ctx context.Context, ref string) (*domain.Booking, error)
	Cancel(ctx context.Context, ref, reason string) (*domain.Booking, error)
}

type PromoAdmin interface {
	List(ctx context.Context, limit, offset int) ([]domain.PromoCode, error)
	Create(ctx context.Context, req domain.CreatePromoCodeReq) (*domain.PromoCode, error)
	Update(ctx context.Context, id uuid.UUID, req domain.UpdatePromoCodeReq) (*domain.PromoCode, error)
}

// AdminHandler is the back-office API. Routes() expects to be mounted behind
// middleware.RequireAdmin.
type AdminHandler struct {
	Bookings BookingAdmin
	Promos   PromoAdmin
}

func NewAdminHandler(b BookingAdmin, p PromoAdmin) *AdminHandler {
	return &AdminHandler{Bookings: b, Promos: p}
}

func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/bookings", func(r chi.Router) {
		r.Get("/", h.listBookings)
		r.Get("/{ref}", h.getBooking)
		r.Post("/{ref}/cancel", h.cancelBooking)
	})
	r.Route("/promo-codes", func(r chi.Router) {
		r.Get("/", h.listPromos)
		r.Post("/", h.createPromo)
		r.Patch("/{id}", h.updatePromo)
	})
	return r
}

// paging reads limit/offset; limit defaults to 20 and is capped at 100.
func paging(r *http.Request) (limit, offset int, ok bool) {
	limit, offset = 20, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, 0, false
		}
		if n > 100 {
			n = 100
		}
		limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, 0, false
		}
		offset = n
	}
	return limit, offset, true
}

func (h *AdminHandler) listBookings(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := paging(r)
	if !ok {
		response.BadRequest(w, "invalid limit or offset")
		return
	}
	f := domain.BookingFilter{Limit: limit, Offset: offset}
	if v := r.URL.Query().Get("status"); v != "" {
		st, ok := domain.ParseBookingStatus(v)
		if !ok {
			response.BadRequest(w, "invalid status")
			return
		}
		f.Status = &st
	}

	out, err := h.Bookings.ListBookings(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if out == nil {
		out = []domain.Booking{}
	}
	response.JSON(w, http.StatusOK, out)
}

func (h *AdminHandler) getBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.Bookings.GetBooking(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, b)
}

type cancelReq struct {
	Reason string `json:"reason"`
}

func (h *AdminHandler) cancelBooking(w http.ResponseWriter, r *http.Request) {
	var in cancelReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
			response.BadRequest(w, "invalid json")
			return
		}
	}

	b, err := h.Bookings.Cancel(r.Context(), chi.URLParam(r, "ref"), in.Reason)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if c := middleware.Claims(r); c != nil {
		logger.InfoContext(r.Context(), "booking canceled by admin", "booking_ref", b.Ref, "admin", c.Email)
	}
	response.JSON(w, http.StatusOK, b)
}

func (h *AdminHandler) listPromos(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := paging(r)
	if !ok {
		response.BadRequest(w, "invalid limit or offset")
		return
	}
	out, err := h.Promos.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if out == nil {
		out = []domain.PromoCode{}
	}
	response.JSON(w, http.StatusOK, out)
}

func (h *AdminHandler) createPromo(w http.ResponseWriter, r *http.Request) {
	var in domain.CreatePromoCodeReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	p, err := h.Promos.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, p)
}

func (h *AdminHandler) updatePromo(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}
	var in domain.UpdatePromoCodeReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	p, err := h.Promos.Update(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, p)
}
