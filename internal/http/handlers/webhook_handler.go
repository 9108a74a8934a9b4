package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skypark/bookings/internal/http/response"
)

// Stripe caps webhook payloads well below this.
const maxWebhookBytes = 256 << 10

type WebhookProcessor interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type WebhookHandler struct {
	Processor WebhookProcessor
}

func NewWebhookHandler(p WebhookProcessor) *WebhookHandler {
	return &WebhookHandler{Processor: p}
}

func (h *WebhookHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/stripe", h.stripe)
	return r
}

func (h *WebhookHandler) stripe(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		response.WriteError(w, http.StatusRequestEntityTooLarge, "payload too large", response.CodeInvalidInput)
		return
	}

	if err := h.Processor.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]bool{"received": true})
}
