package models

import "time"

// Billing provider constants used across billing-related models.
const (
	BillingProviderStripe  = "stripe"
	BillingProviderShopify = "shopify"
	BillingProviderManual  = "manual"
)

const (
	BillingStatusActive    = "active"
	BillingStatusTrialing  = "trialing"
	BillingStatusPastDue   = "past_due"
	BillingStatusCancelled = "cancelled"
	BillingStatusPending   = "pending"
)

// BillingSubscription mirrors the provider-side subscription fields the plan
// cards are resolved from. Timestamps stay nil when the provider sent none or
// sent something unparseable.
type BillingSubscription struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	AccountID              uint       `gorm:"not null;index" json:"account_id"`
	Provider               string     `gorm:"type:varchar(20);not null;index:ux_billing_subscriptions_provider_subid,unique,priority:1" json:"provider"`
	ProviderSubscriptionID string     `gorm:"type:varchar(191);not null;index:ux_billing_subscriptions_provider_subid,unique,priority:2" json:"provider_subscription_id"`
	PlanLabel              string     `gorm:"type:varchar(100);not null;default:''" json:"plan_label"`
	Status                 string     `gorm:"type:varchar(32);not null;default:''" json:"status"`
	TrialEndsAt            *time.Time `gorm:"type:timestamp;default:null" json:"trial_ends_at,omitempty"`
	PlanExpiresAt          *time.Time `gorm:"type:timestamp;default:null" json:"plan_expires_at,omitempty"`
	RawPayloadJSON         string     `gorm:"type:longtext" json:"-"`
	CreatedAt              time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
