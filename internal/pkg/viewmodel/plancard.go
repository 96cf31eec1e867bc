package viewmodel

import (
	"fmt"
	"time"

	"github.com/ManuelReschke/PlanCard/internal/pkg/entitlements"
)

const (
	ActionNone      = ""
	ActionSubscribe = "subscribe"
	ActionCancel    = "cancel"

	ToneDefault  = ""
	ToneCritical = "critical"

	untilDateLayout = "Jan 2, 2006"
)

// PlanCard is what a rendering layer needs to draw one plan card.
type PlanCard struct {
	Type      entitlements.Plan    `json:"type"`
	Title     string               `json:"title"`
	State     entitlements.UIState `json:"state"`
	Label     string               `json:"label"`
	Action    string               `json:"action,omitempty"`
	Disabled  bool                 `json:"disabled"`
	Tone      string               `json:"tone,omitempty"`
	Highlight bool                 `json:"highlight"`
	Until     *time.Time           `json:"until,omitempty"`
}

// NewPlanCard maps a decision to its card. trialDays is shown on the subscribe button.
func NewPlanCard(d entitlements.Decision, trialDays int) PlanCard {
	card := PlanCard{
		Type:      d.Plan,
		Title:     "Beginner",
		State:     d.UIState,
		Disabled:  true,
		Highlight: d.Highlight,
		Until:     d.ActiveUntil,
	}
	if d.Plan == entitlements.PlanPremium {
		card.Title = "Advanced"
	}

	switch d.UIState {
	case entitlements.StateSubscribeCTA:
		card.Label = fmt.Sprintf("Start Free with %d Day Trial", trialDays)
		card.Action = ActionSubscribe
		card.Disabled = false
	case entitlements.StateCancelTrial:
		card.Label = "Cancel Trial"
		card.Action = ActionCancel
		card.Disabled = false
		card.Tone = ToneCritical
	case entitlements.StateCancelSubscription:
		card.Label = "Cancel Subscription"
		card.Action = ActionCancel
		card.Disabled = false
		card.Tone = ToneCritical
	case entitlements.StatePlanExpired:
		card.Label = "Plan expired"
	case entitlements.StateTrialActive, entitlements.StateTrialCancelledActive:
		card.Label = "Trial active until " + untilDate(d.ActiveUntil)
	case entitlements.StatePlanActiveUntil:
		card.Label = "Plan active until " + untilDate(d.ActiveUntil)
	case entitlements.StateFreeUsingAll:
		card.Label = "Using All Features"
	default:
		card.Label = "You're on Free Plan"
	}
	return card
}

// PlanCards maps both decisions, free card first.
func PlanCards(cards entitlements.Cards, trialDays int) []PlanCard {
	return []PlanCard{
		NewPlanCard(cards.Free, trialDays),
		NewPlanCard(cards.Premium, trialDays),
	}
}

func untilDate(t *time.Time) string {
	if t == nil {
		return "Unknown"
	}
	return t.Format(untilDateLayout)
}
