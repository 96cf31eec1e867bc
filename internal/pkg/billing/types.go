package billing

import "time"

// NormalizedSubscription is the provider-agnostic shape used by the billing
// service when syncing external subscription state into local tables.
type NormalizedSubscription struct {
	AccountID              uint
	Provider               string
	ProviderSubscriptionID string
	PlanLabel              string
	Status                 string
	TrialEndsAt            *time.Time
	PlanExpiresAt          *time.Time
	RawPayloadJSON         string
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}
