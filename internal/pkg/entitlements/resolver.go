package entitlements

import (
	"strings"
	"time"
)

// UIState is the affordance a plan card should show.
type UIState string

const (
	StateSubscribeCTA         UIState = "subscribe_cta"
	StateTrialActive          UIState = "trial_active"
	StateTrialCancelledActive UIState = "trial_cancelled_active"
	StatePlanActiveUntil      UIState = "plan_active_until"
	StateCancelSubscription   UIState = "cancel_subscription"
	StateCancelTrial          UIState = "cancel_trial"
	StatePlanExpired          UIState = "plan_expired"
	StateFreeUsingAll         UIState = "free_using_all"
	StateFreePlain            UIState = "free_plain"
)

// IsActiveUntil reports whether the state displays an "active until" date.
func (s UIState) IsActiveUntil() bool {
	return s == StateTrialActive || s == StatePlanActiveUntil || s == StateTrialCancelledActive
}

// Snapshot is the raw subscription data supplied by the billing side.
// Nil or zero timestamps are absent.
type Snapshot struct {
	Now             time.Time  `json:"now"`
	ActivePlanLabel string     `json:"active_plan"`
	BillingStatus   string     `json:"billing_status,omitempty"`
	SubscriptionID  string     `json:"subscription_id,omitempty"`
	TrialEndsOn     *time.Time `json:"trial_ends_on,omitempty"`
	PlanExpiresOn   *time.Time `json:"plan_expires_on,omitempty"`
}

// HasSubscriptionID reports whether a subscription record id is present.
func (s Snapshot) HasSubscriptionID() bool {
	return strings.TrimSpace(s.SubscriptionID) != ""
}

// Decision is the derived entitlement for one plan card at one instant.
type Decision struct {
	Plan               Plan       `json:"plan"`
	NormalizedPlan     string     `json:"normalized_plan"`
	PlanToken          PlanToken  `json:"plan_token"`
	IsTrialActive      bool       `json:"is_trial_active"`
	IsCancelled        bool       `json:"is_cancelled"`
	IsSubscribedRecord bool       `json:"is_subscribed_record"`
	HasPremiumAccess   bool       `json:"has_premium_access"`
	UIState            UIState    `json:"ui_state"`
	ActiveUntil        *time.Time `json:"active_until,omitempty"`
	Highlight          bool       `json:"highlight"`
}

// Cards holds the decisions for both plan cards of one snapshot.
type Cards struct {
	Free    Decision `json:"free"`
	Premium Decision `json:"premium"`
}

// Observer receives every evaluation. It must not retain the snapshot's pointers.
type Observer func(s Snapshot, d Decision)

// Option configures a Resolver.
type Option func(*Resolver)

// WithObserver installs an observer called after each evaluation.
func WithObserver(o Observer) Option {
	return func(r *Resolver) {
		r.observer = o
	}
}

// Resolver evaluates snapshots. The zero value is ready to use and safe for
// concurrent use.
type Resolver struct {
	observer Observer
}

// NewResolver creates a resolver with the given options.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultResolver = &Resolver{}

// Resolve evaluates a snapshot for the given plan card with the default resolver.
func Resolve(s Snapshot, plan Plan) Decision {
	return defaultResolver.Resolve(s, plan)
}

// ResolveCards evaluates both plan cards with the default resolver.
func ResolveCards(s Snapshot) Cards {
	return defaultResolver.ResolveCards(s)
}

// ResolveCards evaluates both plan cards against the same instant.
func (r *Resolver) ResolveCards(s Snapshot) Cards {
	return Cards{
		Free:    r.Resolve(s, PlanFree),
		Premium: r.Resolve(s, PlanPremium),
	}
}

// Resolve evaluates a snapshot for the given plan card.
func (r *Resolver) Resolve(s Snapshot, plan Plan) Decision {
	if plan != PlanPremium {
		plan = PlanFree
	}

	trialEnd := validTime(s.TrialEndsOn)
	expiry := validTime(s.PlanExpiresOn)

	normalized := NormalizePlanLabel(s.ActivePlanLabel)
	token := TokenFor(normalized)

	d := Decision{
		Plan:               plan,
		NormalizedPlan:     normalized,
		PlanToken:          token,
		IsCancelled:        isCancelledStatus(s.BillingStatus) || token == TokenScheduledCancel,
		IsTrialActive:      trialEnd != nil && s.Now.Before(*trialEnd),
		IsSubscribedRecord: token.IsSubscribedRecord(),
	}

	paidActive := token == TokenPremium && !d.IsCancelled && expiry != nil && s.Now.Before(*expiry)
	// Trial access wins over a cancelled paid plan.
	d.HasPremiumAccess = d.IsTrialActive || paidActive

	d.UIState = uiState(d, plan, s.HasSubscriptionID())
	switch d.UIState {
	case StateTrialActive, StateTrialCancelledActive:
		d.ActiveUntil = copyTime(trialEnd)
	case StatePlanActiveUntil:
		d.ActiveUntil = copyTime(expiry)
	}

	if plan == PlanPremium {
		d.Highlight = d.HasPremiumAccess
	} else {
		d.Highlight = !d.HasPremiumAccess
	}

	if r != nil && r.observer != nil {
		r.observer(s, d)
	}
	return d
}

// uiState applies the card precedence rules. Order matters: conditions overlap.
func uiState(d Decision, plan Plan, hasSubscriptionID bool) UIState {
	if plan != PlanPremium {
		if d.HasPremiumAccess {
			return StateFreeUsingAll
		}
		return StateFreePlain
	}

	if d.IsSubscribedRecord && hasSubscriptionID {
		switch {
		case d.IsCancelled && d.IsTrialActive:
			return StateTrialCancelledActive
		case d.IsCancelled:
			return StatePlanExpired
		case d.IsTrialActive:
			return StateCancelTrial
		default:
			return StateCancelSubscription
		}
	}

	if d.HasPremiumAccess {
		if d.IsTrialActive {
			return StateTrialActive
		}
		return StatePlanActiveUntil
	}
	return StateSubscribeCTA
}
