package billing

import (
	"strings"
	"time"

	"github.com/ManuelReschke/PlanCard/app/models"
	"github.com/ManuelReschke/PlanCard/internal/pkg/entitlements"
)

func normalizeProvider(provider string) string {
	p := strings.ToLower(strings.TrimSpace(provider))
	if p == "" {
		return models.BillingProviderManual
	}
	return p
}

func normalizeStatus(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	if s == "canceled" {
		return models.BillingStatusCancelled
	}
	return s
}

func planRank(label string) int {
	return entitlements.TokenFor(entitlements.NormalizePlanLabel(label)).Rank()
}

// currentSubscription picks the record the plan cards are resolved from:
// highest plan rank first, then the most recently updated.
func currentSubscription(subs []models.BillingSubscription) *models.BillingSubscription {
	var best *models.BillingSubscription
	for i := range subs {
		sub := &subs[i]
		if best == nil {
			best = sub
			continue
		}
		rank, bestRank := planRank(sub.PlanLabel), planRank(best.PlanLabel)
		switch {
		case rank > bestRank:
			best = sub
		case rank == bestRank && sub.UpdatedAt.After(best.UpdatedAt):
			best = sub
		case rank == bestRank && sub.UpdatedAt.Equal(best.UpdatedAt) && sub.ID > best.ID:
			best = sub
		}
	}
	return best
}

func snapshotFrom(sub *models.BillingSubscription, now time.Time) entitlements.Snapshot {
	if sub == nil {
		return entitlements.Snapshot{Now: now}
	}
	return entitlements.Snapshot{
		Now:             now,
		ActivePlanLabel: sub.PlanLabel,
		BillingStatus:   sub.Status,
		SubscriptionID:  sub.ProviderSubscriptionID,
		TrialEndsOn:     sub.TrialEndsAt,
		PlanExpiresOn:   sub.PlanExpiresAt,
	}
}
