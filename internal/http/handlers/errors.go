package handlers

import (
	"errors"
	"net/http"

	"github.com/skypark/bookings/internal/checkout"
	"github.com/skypark/bookings/internal/http/response"
	"github.com/skypark/bookings/internal/payments"
	"github.com/skypark/bookings/internal/promo"
	"github.com/skypark/bookings/pkg/logger"
)

// writeServiceError maps service errors to JSON responses. Anything unknown is
// logged and reported as a 500 without details.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, checkout.ErrInvalidDraft),
		errors.Is(err, checkout.ErrGroupTooLarge),
		errors.Is(err, checkout.ErrInvalidCustomer),
		errors.Is(err, promo.ErrInvalidInput):
		response.WriteErrorWithDetails(w, http.StatusBadRequest, "invalid input", response.CodeInvalidInput, err.Error())
	case errors.Is(err, checkout.ErrPastDate):
		response.WriteError(w, http.StatusBadRequest, err.Error(), response.CodePastDate)
	case errors.Is(err, checkout.ErrUnknownPackage):
		response.WriteError(w, http.StatusBadRequest, err.Error(), response.CodeUnknownPackage)
	case errors.Is(err, checkout.ErrUnknownTimeSlot):
		response.WriteError(w, http.StatusBadRequest, err.Error(), response.CodeUnknownTimeSlot)
	case errors.Is(err, checkout.ErrInvalidPromo):
		response.WriteErrorWithDetails(w, http.StatusBadRequest, "promo code rejected", response.CodeInvalidPromo, err.Error())
	case errors.Is(err, checkout.ErrBookingNotFound), errors.Is(err, promo.ErrNotFound):
		response.NotFound(w, "not found")
	case errors.Is(err, checkout.ErrNotCancelable):
		response.WriteError(w, http.StatusConflict, err.Error(), response.CodeNotCancelable)
	case errors.Is(err, checkout.ErrVoucherUnavailable):
		response.WriteError(w, http.StatusConflict, err.Error(), response.CodeVoucherPending)
	case errors.Is(err, promo.ErrDuplicateCode):
		response.Conflict(w, err.Error())
	case errors.Is(err, payments.ErrInvalidSignature):
		response.WriteError(w, http.StatusBadRequest, "invalid signature", response.CodeInvalidSignature)
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		response.InternalError(w, "internal error")
	}
}
