package entitlements

import (
	"strings"
)

// Plan is the plan card being evaluated.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// ParsePlan maps a requested plan type to a Plan. Anything that is not
// "premium" (case-insensitive) is treated as the free card.
func ParsePlan(planType string) Plan {
	if strings.EqualFold(strings.TrimSpace(planType), string(PlanPremium)) {
		return PlanPremium
	}
	return PlanFree
}

// PlanToken is the closed set of recognized normalized plan labels.
type PlanToken string

const (
	TokenPremium         PlanToken = "premium"
	TokenPending         PlanToken = "pending"
	TokenScheduledCancel PlanToken = "scheduled cancel"
	TokenFree            PlanToken = "free"
	TokenUnrecognized    PlanToken = "unrecognized"
)

const planSuffix = " plan"

// NormalizePlanLabel lower-cases and trims a free-form plan label and strips
// every occurrence of " plan". The result is stable under re-normalization.
func NormalizePlanLabel(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	for strings.Contains(s, planSuffix) {
		s = strings.ReplaceAll(s, planSuffix, "")
	}
	return strings.TrimSpace(s)
}

// TokenFor classifies an already normalized plan label.
func TokenFor(normalized string) PlanToken {
	switch PlanToken(normalized) {
	case TokenPremium, TokenPending, TokenScheduledCancel, TokenFree:
		return PlanToken(normalized)
	default:
		return TokenUnrecognized
	}
}

// IsSubscribedRecord reports whether the token stands for an existing
// subscription record, independent of payment validity.
func (t PlanToken) IsSubscribedRecord() bool {
	switch t {
	case TokenPremium, TokenPending, TokenScheduledCancel:
		return true
	default:
		return false
	}
}

// Rank orders tokens when several subscription records compete for an account.
func (t PlanToken) Rank() int {
	switch t {
	case TokenPremium:
		return 3
	case TokenScheduledCancel:
		return 2
	case TokenPending:
		return 1
	default:
		return 0
	}
}

const statusCancelled = "cancelled"

// isCancelledStatus matches the exact status value only. Spelling variants are
// normalized by the billing sync before they are stored.
func isCancelledStatus(status string) bool {
	return status == statusCancelled
}
