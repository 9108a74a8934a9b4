// Package payments wraps the Stripe calls the checkout needs.
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/skypark/bookings/pkg/config"
)

const MetadataBookingRef = "booking_ref"

const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

type IntentRequest struct {
	// Amount is in the smallest currency unit (satang for THB).
	Amount         int64
	BookingRef     string
	CustomerEmail  string
	Description    string
	IdempotencyKey string
}

type Intent struct {
	ID           string
	ClientSecret string
	Status       string
}

// WebhookEvent is the subset of a Stripe event the booking flow acts on.
type WebhookEvent struct {
	ID             string
	Type           string
	IntentID       string
	BookingRef     string
	Amount         int64
	FailureMessage string
}

type Gateway interface {
	CreateIntent(ctx context.Context, in IntentRequest) (*Intent, error)
	CancelIntent(ctx context.Context, intentID string) error
	Refund(ctx context.Context, intentID string) error
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

type StripeGateway struct {
	sc            *client.API
	currency      string
	webhookSecret string
}

func NewStripeGateway(cfg config.StripeConfig) *StripeGateway {
	return &StripeGateway{
		sc:            client.New(cfg.SecretKey, nil),
		currency:      strings.ToLower(cfg.Currency),
		webhookSecret: cfg.WebhookSecret,
	}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, in IntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:       stripe.Int64(in.Amount),
		Currency:     stripe.String(g.currency),
		Description:  stripe.String(in.Description),
		ReceiptEmail: stripe.String(in.CustomerEmail),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata(MetadataBookingRef, in.BookingRef)
	if in.IdempotencyKey != "" {
		params.SetIdempotencyKey("pi:" + in.IdempotencyKey)
	}

	pi, err := g.sc.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create payment intent: %w", err)
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}, nil
}

func (g *StripeGateway) CancelIntent(ctx context.Context, intentID string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	if _, err := g.sc.PaymentIntents.Cancel(intentID, params); err != nil {
		return fmt.Errorf("stripe cancel payment intent: %w", err)
	}
	return nil
}

func (g *StripeGateway) Refund(ctx context.Context, intentID string) error {
	params := &stripe.RefundParams{PaymentIntent: stripe.String(intentID)}
	params.Context = ctx
	if _, err := g.sc.Refunds.New(params); err != nil {
		return fmt.Errorf("stripe refund: %w", err)
	}
	return nil
}

func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return decodeEvent(event)
}

func decodeEvent(event stripe.Event) (*WebhookEvent, error) {
	out := &WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if !strings.HasPrefix(out.Type, "payment_intent.") || event.Data == nil {
		return out, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("decode payment intent: %w", err)
	}
	out.IntentID = pi.ID
	out.Amount = pi.Amount
	out.BookingRef = pi.Metadata[MetadataBookingRef]
	if pi.LastPaymentError != nil {
		out.FailureMessage = pi.LastPaymentError.Msg
	}
	return out, nil
}
