package billing

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ManuelReschke/PlanCard/internal/pkg/entitlements"
)

// Subscription webhook event types.
const (
	EventSubscriptionCreated   = "subscription.created"
	EventSubscriptionUpdated   = "subscription.updated"
	EventSubscriptionCancelled = "subscription.cancelled"
)

var validate = validator.New()

// SubscriptionWebhook is the payload posted by the billing provider bridge.
type SubscriptionWebhook struct {
	EventID  string                  `json:"event_id"`
	Type     string                  `json:"type" validate:"required"`
	Provider string                  `json:"provider"`
	Data     SubscriptionWebhookData `json:"data"`
}

// SubscriptionWebhookData carries the raw subscription fields. Timestamps are
// kept as strings; unparseable ones are dropped during normalization.
type SubscriptionWebhookData struct {
	AccountID      uint   `json:"account_id" validate:"required,gt=0"`
	SubscriptionID string `json:"subscription_id" validate:"required,max=191"`
	Plan           string `json:"plan" validate:"max=100"`
	Status         string `json:"status" validate:"max=32"`
	TrialEndsOn    string `json:"trial_ends_on"`
	PlanExpiresOn  string `json:"plan_expires_on"`
}

// IsSubscriptionEvent reports whether an event type carries subscription state.
func IsSubscriptionEvent(eventType string) bool {
	switch strings.ToLower(strings.TrimSpace(eventType)) {
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionCancelled:
		return true
	default:
		return false
	}
}

// ParseSubscriptionWebhook decodes and validates a webhook payload. When the
// JSON decodes but fails validation the decoded envelope is returned with the error.
func ParseSubscriptionWebhook(payload []byte) (*SubscriptionWebhook, error) {
	var ev SubscriptionWebhook
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWebhookPayload, err)
	}
	ev.Type = strings.ToLower(strings.TrimSpace(ev.Type))
	ev.Data.SubscriptionID = strings.TrimSpace(ev.Data.SubscriptionID)
	if err := validate.Struct(&ev); err != nil {
		return &ev, fmt.Errorf("%w: %v", ErrInvalidWebhookPayload, err)
	}
	return &ev, nil
}

// Normalize converts the webhook into the sync input. A cancellation event
// without an explicit status is recorded as cancelled.
func (ev *SubscriptionWebhook) Normalize(rawPayload string) NormalizedSubscription {
	status := ev.Data.Status
	if strings.TrimSpace(status) == "" && ev.Type == EventSubscriptionCancelled {
		status = "cancelled"
	}
	return NormalizedSubscription{
		AccountID:              ev.Data.AccountID,
		Provider:               ev.Provider,
		ProviderSubscriptionID: ev.Data.SubscriptionID,
		PlanLabel:              ev.Data.Plan,
		Status:                 status,
		TrialEndsAt:            entitlements.ParseTimestamp(ev.Data.TrialEndsOn),
		PlanExpiresAt:          entitlements.ParseTimestamp(ev.Data.PlanExpiresOn),
		RawPayloadJSON:         rawPayload,
	}
}
