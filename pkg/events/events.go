package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/skypark/bookings/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
	ID        string
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url,
		nats.Name("skypark-bookings"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(toMessage(msg))
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(toMessage(msg))
	})
	return err
}

func (n *NATSEventBus) Close() error {
	return n.conn.Drain()
}

func toMessage(msg *nats.Msg) *Message {
	return &Message{
		Subject:   msg.Subject,
		Data:      msg.Data,
		Timestamp: time.Now(),
		ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
	}
}

// NopBus drops every event. Used when NATS is disabled and in tests.
type NopBus struct{}

func (NopBus) Publish(ctx context.Context, subject string, data interface{}) error {
	logger.DebugContext(ctx, "Event bus disabled, dropping event", "subject", subject)
	return nil
}
func (NopBus) Subscribe(string, func(*Message)) error              { return nil }
func (NopBus) QueueSubscribe(string, string, func(*Message)) error { return nil }
func (NopBus) Close() error                                        { return nil }

// Event subjects
const (
	BookingCreated   = "booking.created"
	BookingConfirmed = "booking.confirmed"
	BookingCanceled  = "booking.canceled"

	PaymentIntentCreated = "payment.intent.created"
	PaymentCaptured      = "payment.captured"
	PaymentFailed        = "payment.failed"

	PromoRedeemed = "promo.redeemed"
)

type BookingCreatedEvent struct {
	BookingRef    string    `json:"booking_ref"`
	PackageID     string    `json:"package_id"`
	CustomerEmail string    `json:"customer_email"`
	CustomerName  string    `json:"customer_name"`
	VisitDate     string    `json:"visit_date"`
	VisitTime     string    `json:"visit_time"`
	Guests        int       `json:"guests"`
	Total         int64     `json:"total"`
	CreatedAt     time.Time `json:"created_at"`
}

type BookingConfirmedEvent struct {
	BookingRef  string    `json:"booking_ref"`
	Total       int64     `json:"total"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

type BookingCanceledEvent struct {
	BookingRef string    `json:"booking_ref"`
	Reason     string    `json:"reason"`
	CanceledAt time.Time `json:"canceled_at"`
}

type PaymentIntentCreatedEvent struct {
	BookingRef string `json:"booking_ref"`
	IntentID   string `json:"intent_id"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
}

type PaymentCapturedEvent struct {
	BookingRef string    `json:"booking_ref"`
	IntentID   string    `json:"intent_id"`
	Amount     int64     `json:"amount"`
	CapturedAt time.Time `json:"captured_at"`
}

type PaymentFailedEvent struct {
	BookingRef string `json:"booking_ref"`
	IntentID   string `json:"intent_id"`
	Reason     string `json:"reason"`
}

type PromoRedeemedEvent struct {
	PromoCodeID string `json:"promo_code_id"`
	Code        string `json:"code,omitempty"`
	BookingRef  string `json:"booking_ref"`
	Discount    int64  `json:"discount"`
}
