package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/ManuelReschke/PlanCard/internal/pkg/billing"
	"github.com/ManuelReschke/PlanCard/internal/pkg/database"
	"github.com/ManuelReschke/PlanCard/internal/pkg/entitlements"
	"github.com/ManuelReschke/PlanCard/internal/pkg/env"
	"github.com/ManuelReschke/PlanCard/internal/pkg/usercontext"
	"github.com/ManuelReschke/PlanCard/internal/pkg/viewmodel"
)

// Swappable in tests.
var (
	NowFunc               = time.Now
	BillingServiceFactory = func() *billing.Service {
		return billing.NewServiceFromDB(database.GetDB())
	}
)

var validate = validator.New()

// ResolveRequest is the body of the stateless resolve endpoint. Timestamps
// that do not parse are treated as absent.
type ResolveRequest struct {
	PlanType       string `json:"plan_type" validate:"required,oneof=free premium"`
	ActivePlan     string `json:"active_plan" validate:"max=200"`
	BillingStatus  string `json:"billing_status" validate:"max=32"`
	SubscriptionID string `json:"subscription_id" validate:"max=191"`
	TrialEndsOn    string `json:"trial_ends_on"`
	PlanExpiresOn  string `json:"plan_expires_on"`
	Now            string `json:"now"`
}

func trialDays() int {
	return env.GetEnvInt("BILLING_TRIAL_DAYS", 7)
}

func newResolver() *entitlements.Resolver {
	if !env.IsDev() {
		return entitlements.NewResolver()
	}
	return entitlements.NewResolver(entitlements.WithObserver(func(s entitlements.Snapshot, d entitlements.Decision) {
		fiberlog.Debugf("[PlanCard] plan=%s active_plan=%q billing_status=%q subscription_id=%q trial_ends_on=%v plan_expires_on=%v -> trial=%t premium=%t state=%s",
			d.Plan, s.ActivePlanLabel, s.BillingStatus, s.SubscriptionID, s.TrialEndsOn, s.PlanExpiresOn,
			d.IsTrialActive, d.HasPremiumAccess, d.UIState)
	}))
}

// HandleGetPlanCards returns both plan cards for the authenticated account.
func HandleGetPlanCards(c *fiber.Ctx) error {
	accountID := usercontext.GetAccountID(c)
	if accountID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing account"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 10*time.Second)
	defer cancel()

	now := NowFunc()
	snap, err := BillingServiceFactory().SnapshotForAccount(ctx, accountID, now)
	if err != nil {
		fiberlog.Errorf("[Billing] loading snapshot for account %d failed: %v", accountID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "snapshot_failed", "message": "Subscription data unavailable"})
	}

	cards := newResolver().ResolveCards(snap)
	return c.JSON(fiber.Map{
		"account_id":   accountID,
		"evaluated_at": now.UTC().Format(time.RFC3339),
		"decisions":    cards,
		"cards":        viewmodel.PlanCards(cards, trialDays()),
	})
}

// HandleResolveEntitlement evaluates a caller-supplied snapshot without touching storage.
func HandleResolveEntitlement(c *fiber.Ctx) error {
	var req ResolveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid JSON body"})
	}
	req.PlanType = strings.ToLower(strings.TrimSpace(req.PlanType))
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	now := NowFunc()
	if strings.TrimSpace(req.Now) != "" {
		parsed := entitlements.ParseTimestamp(req.Now)
		if parsed == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "now is not a valid timestamp"})
		}
		now = *parsed
	}

	d := newResolver().Resolve(entitlements.Snapshot{
		Now:             now,
		ActivePlanLabel: req.ActivePlan,
		BillingStatus:   req.BillingStatus,
		SubscriptionID:  req.SubscriptionID,
		TrialEndsOn:     entitlements.ParseTimestamp(req.TrialEndsOn),
		PlanExpiresOn:   entitlements.ParseTimestamp(req.PlanExpiresOn),
	}, entitlements.ParsePlan(req.PlanType))

	return c.JSON(fiber.Map{
		"decision": d,
		"card":     viewmodel.NewPlanCard(d, trialDays()),
	})
}

// HandleBillingWebhook ingests subscription updates pushed by the billing provider bridge.
func HandleBillingWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.Body()...)
	eventType := strings.TrimSpace(c.Get("X-Billing-Event"))
	eventID := strings.TrimSpace(c.Get("X-Billing-Delivery"))
	provider := strings.TrimSpace(c.Get("X-Billing-Provider"))
	signature := strings.TrimSpace(c.Get("X-Billing-Signature"))
	secret := env.GetEnv("BILLING_WEBHOOK_SECRET", "")

	// Prefer the envelope's own metadata when the payload parses.
	parsed, parseErr := billing.ParseSubscriptionWebhook(rawBody)
	if parsed != nil {
		if parsed.EventID != "" {
			eventID = parsed.EventID
		}
		if parsed.Provider != "" {
			provider = parsed.Provider
		}
		eventType = parsed.Type
	}
	if eventID == "" && len(rawBody) == 0 {
		eventID = "empty:" + uuid.New().String()
	}

	svc := BillingServiceFactory()
	ctx, cancel := context.WithTimeout(c.UserContext(), 15*time.Second)
	defer cancel()

	signatureValid := billing.VerifyWebhookSignature(rawBody, signature, secret)
	created, stored, err := svc.RecordWebhookEvent(ctx, billing.WebhookEventInput{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       eventType,
		PayloadJSON:     string(rawBody),
		SignatureValid:  signatureValid,
	})
	if err != nil {
		fiberlog.Errorf("[Billing] persisting webhook failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}
	if !signatureValid {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, nil, errors.New("invalid webhook signature"))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}
	if parsed == nil || parsed.Type == "" {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, nil, parseErr)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}
	if !billing.IsSubscriptionEvent(parsed.Type) {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, nil, nil)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}
	if parseErr != nil {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, nil, parseErr)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	accountID := parsed.Data.AccountID
	exists, err := svc.AccountExists(ctx, accountID)
	if err != nil {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, nil, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "account_lookup_failed"})
	}
	if !exists {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, nil, errors.New("no local account for webhook"))
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}

	_, syncErr := svc.SyncSubscription(ctx, parsed.Normalize(string(rawBody)))
	_ = svc.MarkWebhookProcessed(ctx, stored.ID, &accountID, syncErr)
	if syncErr != nil {
		fiberlog.Errorf("[Billing] subscription sync for account %d failed: %v", accountID, syncErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "subscription_sync_failed"})
	}

	fiberlog.Infof("[Billing] synced %s for account %d", parsed.Type, accountID)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}
