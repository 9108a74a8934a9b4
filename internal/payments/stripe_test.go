package payments

import (
	"errors"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v76/webhook"
)

const testSecret = "whsec_test_secret"

func signed(t *testing.T, payload string) (body []byte, header string) {
	t.Helper()
	sp := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testSecret,
		Timestamp: time.Now(),
	})
	return sp.Payload, sp.Header
}

func TestParseWebhook_Succeeded(t *testing.T) {
	g := &StripeGateway{webhookSecret: testSecret}
	body, header := signed(t, `{
		"id": "evt_123",
		"object": "event",
		"type": "payment_intent.succeeded",
		"data": {"object": {
			"id": "pi_abc",
			"object": "payment_intent",
			"amount": 798000,
			"metadata": {"booking_ref": "SP-8K2QX7"}
		}}
	}`)

	ev, err := g.ParseWebhook(body, header)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ev.ID != "evt_123" || ev.Type != EventIntentSucceeded {
		t.Fatalf("unexpected event %+v", ev)
	}
	if ev.IntentID != "pi_abc" || ev.BookingRef != "SP-8K2QX7" || ev.Amount != 798000 {
		t.Fatalf("unexpected intent fields %+v", ev)
	}
}

func TestParseWebhook_Failed(t *testing.T) {
	g := &StripeGateway{webhookSecret: testSecret}
	body, header := signed(t, `{
		"id": "evt_456",
		"object": "event",
		"type": "payment_intent.payment_failed",
		"data": {"object": {
			"id": "pi_def",
			"object": "payment_intent",
			"metadata": {"booking_ref": "SP-AAAAAA"},
			"last_payment_error": {"message": "card declined"}
		}}
	}`)

	ev, err := g.ParseWebhook(body, header)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ev.Type != EventIntentFailed || ev.FailureMessage != "card declined" {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestParseWebhook_BadSignature(t *testing.T) {
	g := &StripeGateway{webhookSecret: testSecret}
	body, _ := signed(t, `{"id":"evt_1","object":"event","type":"payment_intent.succeeded"}`)

	_, err := g.ParseWebhook(body, "t=1,v1=deadbeef")
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("err=%v, want ErrInvalidSignature", err)
	}
}

func TestParseWebhook_OtherEventType(t *testing.T) {
	g := &StripeGateway{webhookSecret: testSecret}
	body, header := signed(t, `{"id":"evt_9","object":"event","type":"customer.created","data":{"object":{"id":"cus_1"}}}`)

	ev, err := g.ParseWebhook(body, header)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ev.IntentID != "" {
		t.Fatalf("non payment intent event should not carry an intent id: %+v", ev)
	}
}
