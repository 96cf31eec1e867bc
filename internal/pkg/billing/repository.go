package billing

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ManuelReschke/PlanCard/app/models"
)

// Repository provides DB operations used by the billing service.
type Repository interface {
	UpsertSubscription(ctx context.Context, sub *models.BillingSubscription) error
	ListSubscriptionsByAccount(ctx context.Context, accountID uint) ([]models.BillingSubscription, error)
	AccountExists(ctx context.Context, accountID uint) (bool, error)
	CreateWebhookEventIfNotExists(ctx context.Context, event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error)
	MarkWebhookProcessed(ctx context.Context, id uint, accountID *uint, processingError string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) UpsertSubscription(ctx context.Context, sub *models.BillingSubscription) error {
	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_subscription_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"account_id",
			"plan_label",
			"status",
			"trial_ends_at",
			"plan_expires_at",
			"raw_payload_json",
			"updated_at",
		}),
	}).Create(sub).Error; err != nil {
		return err
	}

	// Ensure ID and timestamps reflect the stored row after upsert.
	return db.Where("provider = ? AND provider_subscription_id = ?", sub.Provider, sub.ProviderSubscriptionID).
		First(sub).Error
}

func (r *gormRepository) ListSubscriptionsByAccount(ctx context.Context, accountID uint) ([]models.BillingSubscription, error) {
	var subs []models.BillingSubscription
	err := r.db.WithContext(ctx).Where("account_id = ?", accountID).Order("id").Find(&subs).Error
	return subs, err
}

func (r *gormRepository) AccountExists(ctx context.Context, accountID uint) (bool, error) {
	var account models.Account
	err := r.db.WithContext(ctx).Select("id").First(&account, accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *gormRepository) CreateWebhookEventIfNotExists(ctx context.Context, event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	db := r.db.WithContext(ctx)
	tx := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.BillingWebhookEvent
	if err := db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}

	// A signed delivery takes over a row that only holds an unsigned attempt.
	// The signature_valid guard lets exactly one concurrent delivery claim it.
	if !created && event.SignatureValid && !stored.SignatureValid {
		claim := db.Model(&models.BillingWebhookEvent{}).
			Where("id = ? AND signature_valid = ?", stored.ID, false).
			Updates(map[string]any{
				"event_type":       event.EventType,
				"payload_json":     event.PayloadJSON,
				"signature_valid":  true,
				"account_id":       nil,
				"processed_at":     nil,
				"processing_error": "",
			})
		if claim.Error != nil {
			return false, nil, claim.Error
		}
		if claim.RowsAffected > 0 {
			if err := db.First(&stored, stored.ID).Error; err != nil {
				return false, nil, err
			}
			return true, &stored, nil
		}
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(ctx context.Context, id uint, accountID *uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	if accountID != nil {
		updates["account_id"] = *accountID
	}
	return r.db.WithContext(ctx).Model(&models.BillingWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
