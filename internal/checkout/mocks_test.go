package checkout_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skypark/bookings/internal/domain"
	"github.com/skypark/bookings/internal/payments"
	"github.com/skypark/bookings/internal/platform/mailer"
	"github.com/skypark/bookings/internal/promo"
)

// ---------- Mocks ----------

type mockBookings struct {
	mu       sync.Mutex
	nextID   int64
	bookings map[int64]*domain.Booking
}

func newMockBookings() *mockBookings {
	return &mockBookings{nextID: 1, bookings: make(map[int64]*domain.Booking)}
}

func (m *mockBookings) Create(_ context.Context, b *domain.Booking, refFor func(int64) (string, error)) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	ref, err := refFor(id)
	if err != nil {
		return nil, err
	}
	cp := *b
	cp.ID = id
	cp.Ref = ref
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.bookings[id] = &cp
	out := cp
	return &out, nil
}

func (m *mockBookings) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, nil
	}
	out := *b
	return &out, nil
}

func (m *mockBookings) GetByPaymentIntent(_ context.Context, intentID string) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.PaymentIntentID == intentID {
			out := *b
			return &out, nil
		}
	}
	return nil, nil
}

func (m *mockBookings) List(_ context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Booking
	for _, b := range m.bookings {
		if f.Status != nil && b.Status != *f.Status {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (m *mockBookings) SetPaymentIntent(_ context.Context, id int64, intentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[id].PaymentIntentID = intentID
	return nil
}

func (m *mockBookings) UpdateStatus(_ context.Context, id int64, from []domain.BookingStatus, to domain.BookingStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return false, nil
	}
	for _, s := range from {
		if b.Status == s {
			b.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (m *mockBookings) status(id int64) domain.BookingStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bookings[id].Status
}

type mockPromos struct {
	codes    map[uuid.UUID]*domain.PromoCode
	redeemed []uuid.UUID
}

func newMockPromos(codes ...*domain.PromoCode) *mockPromos {
	m := &mockPromos{codes: make(map[uuid.UUID]*domain.PromoCode)}
	for _, c := range codes {
		m.codes[c.ID] = c
	}
	return m
}

func (m *mockPromos) Validate(_ context.Context, code string, total int64) (*domain.PromoCode, int64, error) {
	for _, c := range m.codes {
		if c.Code == promo.NormalizeCode(code) {
			d, err := promo.Evaluate(c, total, time.Now())
			return c, d, err
		}
	}
	return nil, 0, promo.ErrInvalidCode
}

func (m *mockPromos) ValidateByID(_ context.Context, id uuid.UUID, total int64) (*domain.PromoCode, int64, error) {
	c := m.codes[id]
	d, err := promo.Evaluate(c, total, time.Now())
	if err != nil {
		return nil, 0, err
	}
	return c, d, nil
}

func (m *mockPromos) Redeem(_ context.Context, id uuid.UUID) error {
	m.redeemed = append(m.redeemed, id)
	return nil
}

type mockGateway struct {
	intents   []payments.IntentRequest
	createErr error
	refunded  []string
	canceled  []string
	events    map[string]*payments.WebhookEvent // signature -> event
	onRefund  func()
}

func (m *mockGateway) CreateIntent(_ context.Context, in payments.IntentRequest) (*payments.Intent, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.intents = append(m.intents, in)
	id := fmt.Sprintf("pi_%d", len(m.intents))
	return &payments.Intent{ID: id, ClientSecret: id + "_secret", Status: "requires_payment_method"}, nil
}

func (m *mockGateway) CancelIntent(_ context.Context, id string) error {
	m.canceled = append(m.canceled, id)
	return nil
}

func (m *mockGateway) Refund(_ context.Context, id string) error {
	m.refunded = append(m.refunded, id)
	if m.onRefund != nil {
		m.onRefund()
	}
	return nil
}

func (m *mockGateway) ParseWebhook(_ []byte, sig string) (*payments.WebhookEvent, error) {
	ev, ok := m.events[sig]
	if !ok {
		return nil, payments.ErrInvalidSignature
	}
	return ev, nil
}

type published struct {
	subject string
	data    any
}

type mockBus struct {
	mu   sync.Mutex
	msgs []published
}

func (m *mockBus) Publish(_ context.Context, subject string, data interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, published{subject, data})
	return nil
}

func (m *mockBus) Close() error { return nil }

func (m *mockBus) subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.msgs))
	for i, p := range m.msgs {
		out[i] = p.subject
	}
	return out
}

type mockWebhooks struct {
	seen      map[string]bool
	forgotten []string
}

func (m *mockWebhooks) MarkProcessed(_ context.Context, id string) (bool, error) {
	if m.seen[id] {
		return false, nil
	}
	m.seen[id] = true
	return true, nil
}

func (m *mockWebhooks) Forget(_ context.Context, id string) error {
	delete(m.seen, id)
	m.forgotten = append(m.forgotten, id)
	return nil
}

type mockMailer struct {
	sent []mailer.Message
}

func (m *mockMailer) Send(_ context.Context, msg mailer.Message) (string, error) {
	m.sent = append(m.sent, msg)
	return "mock-id", nil
}

// plainRefs encodes ids as SP-<id>.
type plainRefs struct{}

func (plainRefs) Encode(id int64) (string, error) { return fmt.Sprintf("SP-%d", id), nil }

func (plainRefs) Decode(ref string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(strings.ToUpper(ref), "SP-%d", &id); err != nil {
		return 0, errors.New("bad ref")
	}
	return id, nil
}
