package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"
)

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"foo":"bar"}`)
	secret := "top-secret"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	validSig := hex.EncodeToString(mac.Sum(nil))

	if !VerifyWebhookSignature(payload, validSig, secret) {
		t.Fatalf("expected signature to validate")
	}
	if !VerifyWebhookSignature(payload, "sha256="+validSig, secret) {
		t.Fatalf("expected prefixed signature to validate")
	}
	if !VerifyWebhookSignature(payload, SignWebhookPayload(payload, secret), secret) {
		t.Fatalf("expected SignWebhookPayload output to validate")
	}
	if VerifyWebhookSignature(payload, "deadbeef", secret) {
		t.Fatalf("expected invalid signature to fail")
	}
	if VerifyWebhookSignature(payload, "not-hex", secret) {
		t.Fatalf("expected non-hex signature to fail")
	}
	if VerifyWebhookSignature(payload, validSig, "") {
		t.Fatalf("expected empty secret to fail")
	}
	if VerifyWebhookSignature([]byte(`{"foo":"baz"}`), validSig, secret) {
		t.Fatalf("expected tampered payload to fail")
	}
}

func TestIsSubscriptionEvent(t *testing.T) {
	for _, ev := range []string{"subscription.created", "Subscription.Updated", " subscription.cancelled "} {
		if !IsSubscriptionEvent(ev) {
			t.Fatalf("expected %q to be a subscription event", ev)
		}
	}
	for _, ev := range []string{"", "invoice.paid", "subscription"} {
		if IsSubscriptionEvent(ev) {
			t.Fatalf("expected %q not to be a subscription event", ev)
		}
	}
}

func TestParseSubscriptionWebhook(t *testing.T) {
	raw := []byte(`{
		"event_id": "evt_1",
		"type": "Subscription.Updated",
		"provider": "shopify",
		"data": {
			"account_id": 7,
			"subscription_id": " gid://shopify/AppSubscription/1 ",
			"plan": "Premium Plan",
			"status": "active",
			"trial_ends_on": "2025-03-12T00:00:00Z",
			"plan_expires_on": "not a date"
		}
	}`)

	ev, err := ParseSubscriptionWebhook(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.Type != EventSubscriptionUpdated || ev.EventID != "evt_1" {
		t.Fatalf("unexpected event header: %+v", ev)
	}

	in := ev.Normalize(string(raw))
	if in.AccountID != 7 || in.ProviderSubscriptionID != "gid://shopify/AppSubscription/1" || in.Provider != "shopify" {
		t.Fatalf("unexpected normalized subscription: %+v", in)
	}
	if in.TrialEndsAt == nil || !in.TrialEndsAt.Equal(time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected trial end: %v", in.TrialEndsAt)
	}
	if in.PlanExpiresAt != nil {
		t.Fatalf("expected invalid plan expiry to be dropped, got %v", in.PlanExpiresAt)
	}
	if in.RawPayloadJSON != string(raw) {
		t.Fatalf("expected raw payload to be kept")
	}
}

func TestParseSubscriptionWebhookCancelledDefaultsStatus(t *testing.T) {
	ev, err := ParseSubscriptionWebhook([]byte(`{"type":"subscription.cancelled","data":{"account_id":1,"subscription_id":"s"}}`))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if got := ev.Normalize("").Status; got != "cancelled" {
		t.Fatalf("expected cancelled status, got %q", got)
	}
}

func TestParseSubscriptionWebhookInvalid(t *testing.T) {
	payloads := []string{
		`not json`,
		`{"data":{"account_id":1,"subscription_id":"s"}}`,
		`{"type":"subscription.updated","data":{"subscription_id":"s"}}`,
		`{"type":"subscription.updated","data":{"account_id":1,"subscription_id":"   "}}`,
	}
	for _, p := range payloads {
		_, err := ParseSubscriptionWebhook([]byte(p))
		if !errors.Is(err, ErrInvalidWebhookPayload) {
			t.Fatalf("expected ErrInvalidWebhookPayload for %s, got %v", p, err)
		}
	}
}

func TestParseSubscriptionWebhookKeepsEnvelopeOnValidationError(t *testing.T) {
	ev, err := ParseSubscriptionWebhook([]byte(`{"event_id":"evt_9","type":"invoice.paid","data":{}}`))
	if !errors.Is(err, ErrInvalidWebhookPayload) {
		t.Fatalf("expected ErrInvalidWebhookPayload, got %v", err)
	}
	if ev == nil || ev.EventID != "evt_9" || ev.Type != "invoice.paid" {
		t.Fatalf("expected decoded envelope, got %+v", ev)
	}
}
