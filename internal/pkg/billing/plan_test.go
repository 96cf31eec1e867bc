package billing

import (
	"testing"
	"time"

	"github.com/ManuelReschke/PlanCard/app/models"
)

func TestNormalizeProvider(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Stripe", want: "stripe"},
		{in: " shopify ", want: "shopify"},
		{in: "", want: models.BillingProviderManual},
	}

	for _, tt := range tests {
		if got := normalizeProvider(tt.in); got != tt.want {
			t.Fatalf("normalizeProvider(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "ACTIVE", want: "active"},
		{in: "canceled", want: models.BillingStatusCancelled},
		{in: " cancelled ", want: models.BillingStatusCancelled},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		if got := normalizeStatus(tt.in); got != tt.want {
			t.Fatalf("normalizeStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlanRank(t *testing.T) {
	if planRank("Pending Plan") >= planRank("Scheduled Cancel") {
		t.Fatalf("expected scheduled cancel to outrank pending")
	}
	if planRank("Scheduled Cancel") >= planRank("Premium Plan") {
		t.Fatalf("expected premium to outrank scheduled cancel")
	}
	if planRank("gold") != planRank("") {
		t.Fatalf("expected unrecognized labels to share the lowest rank")
	}
}

func TestCurrentSubscription(t *testing.T) {
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	if currentSubscription(nil) != nil {
		t.Fatalf("expected nil for no subscriptions")
	}

	subs := []models.BillingSubscription{
		{ID: 1, PlanLabel: "Pending", UpdatedAt: newer},
		{ID: 2, PlanLabel: "Premium Plan", UpdatedAt: older},
		{ID: 3, PlanLabel: "Free", UpdatedAt: newer.Add(time.Hour)},
	}
	if got := currentSubscription(subs); got.ID != 2 {
		t.Fatalf("expected premium record to win, got id %d", got.ID)
	}

	subs = []models.BillingSubscription{
		{ID: 4, PlanLabel: "Premium", UpdatedAt: older},
		{ID: 5, PlanLabel: "premium plan", UpdatedAt: newer},
	}
	if got := currentSubscription(subs); got.ID != 5 {
		t.Fatalf("expected most recent premium record, got id %d", got.ID)
	}

	subs = []models.BillingSubscription{
		{ID: 7, PlanLabel: "Premium", UpdatedAt: older},
		{ID: 6, PlanLabel: "Premium", UpdatedAt: older},
	}
	if got := currentSubscription(subs); got.ID != 7 {
		t.Fatalf("expected highest id on full tie, got id %d", got.ID)
	}
}

func TestSnapshotFrom(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	trial := now.Add(48 * time.Hour)

	empty := snapshotFrom(nil, now)
	if !empty.Now.Equal(now) || empty.ActivePlanLabel != "" || empty.HasSubscriptionID() {
		t.Fatalf("unexpected empty snapshot: %+v", empty)
	}

	s := snapshotFrom(&models.BillingSubscription{
		ProviderSubscriptionID: "sub_1",
		PlanLabel:              "Scheduled Cancel",
		Status:                 "active",
		TrialEndsAt:            &trial,
	}, now)
	if s.SubscriptionID != "sub_1" || s.ActivePlanLabel != "Scheduled Cancel" || s.BillingStatus != "active" {
		t.Fatalf("unexpected snapshot fields: %+v", s)
	}
	if s.TrialEndsOn == nil || !s.TrialEndsOn.Equal(trial) || s.PlanExpiresOn != nil {
		t.Fatalf("unexpected snapshot timestamps: %+v", s)
	}
}
