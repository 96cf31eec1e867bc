package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/PlanCard/app/models"
	"github.com/ManuelReschke/PlanCard/internal/pkg/cache"
	"github.com/ManuelReschke/PlanCard/internal/pkg/entitlements"
	"github.com/ManuelReschke/PlanCard/internal/pkg/env"
)

var (
	ErrAccountRequired       = errors.New("account_id is required")
	ErrInvalidSubscription   = errors.New("invalid subscription")
	ErrInvalidWebhookPayload = errors.New("invalid webhook payload")
)

const (
	defaultSnapshotTTL = time.Minute
	cacheKeyPrefix     = "plancard:billing:"
)

// SubscriptionCache caches the subscription records of an account.
type SubscriptionCache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Service syncs provider subscription state and assembles entitlement snapshots.
type Service struct {
	repo  Repository
	cache SubscriptionCache
	ttl   time.Duration
}

// NewService creates a billing service from an injected repository. A nil
// cache disables snapshot caching.
func NewService(repo Repository, c SubscriptionCache, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	return &Service{repo: repo, cache: c, ttl: ttl}
}

// NewServiceFromDB creates a billing service on a GORM DB handle and the shared cache.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(
		NewRepository(db),
		cache.Default(cacheKeyPrefix),
		env.GetEnvDuration("SNAPSHOT_CACHE_TTL", defaultSnapshotTTL),
	)
}

func subscriptionsKey(accountID uint) string {
	return "subs:" + strconv.FormatUint(uint64(accountID), 10)
}

// SyncSubscription upserts provider subscription data for an account.
func (s *Service) SyncSubscription(ctx context.Context, in NormalizedSubscription) (*models.BillingSubscription, error) {
	if in.AccountID == 0 {
		return nil, ErrAccountRequired
	}
	subID := strings.TrimSpace(in.ProviderSubscriptionID)
	if subID == "" {
		return nil, fmt.Errorf("%w: provider_subscription_id is required", ErrInvalidSubscription)
	}

	sub := &models.BillingSubscription{
		AccountID:              in.AccountID,
		Provider:               normalizeProvider(in.Provider),
		ProviderSubscriptionID: subID,
		PlanLabel:              strings.TrimSpace(in.PlanLabel),
		Status:                 normalizeStatus(in.Status),
		TrialEndsAt:            utcOrNil(in.TrialEndsAt),
		PlanExpiresAt:          utcOrNil(in.PlanExpiresAt),
		RawPayloadJSON:         in.RawPayloadJSON,
	}
	if err := s.repo.UpsertSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("upsert subscription %s/%s: %w", sub.Provider, sub.ProviderSubscriptionID, err)
	}

	s.invalidate(ctx, in.AccountID)
	return sub, nil
}

// SubscriptionsForAccount returns the account's subscription records, from
// cache when possible.
func (s *Service) SubscriptionsForAccount(ctx context.Context, accountID uint) ([]models.BillingSubscription, error) {
	if accountID == 0 {
		return nil, ErrAccountRequired
	}

	key := subscriptionsKey(accountID)
	if s.cache != nil {
		var cached []models.BillingSubscription
		found, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			fiberlog.Warnf("[Billing] snapshot cache read failed for account %d: %v", accountID, err)
		} else if found {
			return cached, nil
		}
	}

	subs, err := s.repo.ListSubscriptionsByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions for account %d: %w", accountID, err)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, subs, s.ttl); err != nil {
			fiberlog.Warnf("[Billing] snapshot cache write failed for account %d: %v", accountID, err)
		}
	}
	return subs, nil
}

// SnapshotForAccount builds the entitlement snapshot of an account at now.
// Accounts without any subscription get an empty snapshot.
func (s *Service) SnapshotForAccount(ctx context.Context, accountID uint, now time.Time) (entitlements.Snapshot, error) {
	subs, err := s.SubscriptionsForAccount(ctx, accountID)
	if err != nil {
		return entitlements.Snapshot{Now: now}, err
	}
	return snapshotFrom(currentSubscription(subs), now), nil
}

// AccountExists reports whether a local account with the given id exists.
func (s *Service) AccountExists(ctx context.Context, accountID uint) (bool, error) {
	if accountID == 0 {
		return false, nil
	}
	return s.repo.AccountExists(ctx, accountID)
}

// RecordWebhookEvent persists webhook payloads idempotently.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.BillingWebhookEvent, error) {
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.BillingWebhookEvent{
		Provider:        normalizeProvider(in.Provider),
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(ctx, event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, accountID *uint, processingErr error) error {
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(ctx, webhookEventID, accountID, errMsg)
}

func (s *Service) invalidate(ctx context.Context, accountID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, subscriptionsKey(accountID)); err != nil {
		fiberlog.Warnf("[Billing] snapshot cache invalidation failed for account %d: %v", accountID, err)
	}
}

func utcOrNil(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
