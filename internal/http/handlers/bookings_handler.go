package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/skypark/bookings/internal/domain"
	"github.com/skypark/bookings/internal/http/response"
	"github.com/skypark/bookings/internal/voucher"
	"github.com/skypark/bookings/pkg/logger"
)

type BookingLookup interface {
	Lookup(ctx context.Context, ref, email string) (*domain.Booking, error)
	Voucher(ctx context.Context, ref, email string) ([]byte, *domain.Booking, error)
}

// BookingsHandler serves the customer's "manage booking" page. The email used
// at checkout acts as the credential.
type BookingsHandler struct {
	Bookings BookingLookup
}

func NewBookingsHandler(b BookingLookup) *BookingsHandler {
	return &BookingsHandler{Bookings: b}
}

func (h *BookingsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{ref}", h.get)
	r.Get("/{ref}/voucher.pdf", h.voucher)
	return r
}

func (h *BookingsHandler) get(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		response.BadRequest(w, "email is required")
		return
	}
	b, err := h.Bookings.Lookup(r.Context(), chi.URLParam(r, "ref"), email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, b.Summary())
}

func (h *BookingsHandler) voucher(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		response.BadRequest(w, "email is required")
		return
	}
	pdf, b, err := h.Bookings.Voucher(r.Context(), chi.URLParam(r, "ref"), email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+voucher.Filename(b.Ref)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		logger.WarnContext(r.Context(), "failed to write voucher", "error", err)
	}
}
