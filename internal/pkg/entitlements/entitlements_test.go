package entitlements

import (
	"testing"
	"time"
)

func TestNormalizePlanLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Premium Plan", want: "premium"},
		{in: "  PREMIUM  ", want: "premium"},
		{in: "Scheduled Cancel", want: "scheduled cancel"},
		{in: "Pending Plan ", want: "pending"},
		{in: "plan", want: "plan"},
		{in: "Basic Plan Plan", want: "basic"},
		{in: "a p planlan", want: "a"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		if got := NormalizePlanLabel(tt.in); got != tt.want {
			t.Fatalf("NormalizePlanLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizePlanLabelIdempotent(t *testing.T) {
	inputs := []string{"Premium Plan", " x  plan  plan ", "a p planlan", "Scheduled Cancel", "PLAN", " Plan", "ÄPFEL Plan"}
	for _, in := range inputs {
		once := NormalizePlanLabel(in)
		if twice := NormalizePlanLabel(once); twice != once {
			t.Fatalf("normalizing %q twice gave %q, once gave %q", in, twice, once)
		}
	}
}

func TestTokenFor(t *testing.T) {
	tests := []struct {
		in   string
		want PlanToken
	}{
		{in: "premium", want: TokenPremium},
		{in: "pending", want: TokenPending},
		{in: "scheduled cancel", want: TokenScheduledCancel},
		{in: "free", want: TokenFree},
		{in: "gold", want: TokenUnrecognized},
		{in: "", want: TokenUnrecognized},
	}

	for _, tt := range tests {
		if got := TokenFor(tt.in); got != tt.want {
			t.Fatalf("TokenFor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlanTokenRank(t *testing.T) {
	if TokenPremium.Rank() <= TokenScheduledCancel.Rank() {
		t.Fatalf("expected premium to outrank scheduled cancel")
	}
	if TokenScheduledCancel.Rank() <= TokenPending.Rank() {
		t.Fatalf("expected scheduled cancel to outrank pending")
	}
	if TokenPending.Rank() <= TokenFree.Rank() || TokenFree.Rank() != TokenUnrecognized.Rank() {
		t.Fatalf("unexpected ranks for pending/free/unrecognized")
	}
}

func TestParsePlan(t *testing.T) {
	if ParsePlan("Premium") != PlanPremium || ParsePlan(" premium ") != PlanPremium {
		t.Fatalf("expected premium plan type")
	}
	for _, in := range []string{"Free", "", "premium_max", "gold"} {
		if got := ParsePlan(in); got != PlanFree {
			t.Fatalf("ParsePlan(%q) = %q, want free", in, got)
		}
	}
}

func TestIsCancelledStatus(t *testing.T) {
	if !isCancelledStatus("cancelled") {
		t.Fatalf("expected %q to be cancelled", "cancelled")
	}
	for _, s := range []string{"", "active", "past_due", "cancel", "canceled", "CANCELLED", " cancelled ", " Cancelled "} {
		if isCancelledStatus(s) {
			t.Fatalf("expected %q not to be cancelled", s)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{in: "2025-03-10T12:00:00Z", want: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)},
		{in: "2025-03-10T12:00:00.250+02:00", want: time.Date(2025, 3, 10, 10, 0, 0, 250e6, time.UTC)},
		{in: "2025-03-10T12:00:00", want: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)},
		{in: "2025-03-10 12:00:00", want: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)},
		{in: " 2025-03-10 ", want: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
		{in: "Mon, 10 Mar 2025 12:00:00 GMT", want: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got := ParseTimestamp(tt.in)
		if got == nil {
			t.Fatalf("ParseTimestamp(%q) = nil", tt.in)
		}
		if !got.Equal(tt.want) {
			t.Fatalf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseTimestampInvalid(t *testing.T) {
	for _, in := range []string{"", "   ", "not a date", "2025-02-30", "2025-13-01T00:00:00Z", "0001-01-01T00:00:00Z", "Invalid Date"} {
		if got := ParseTimestamp(in); got != nil {
			t.Fatalf("ParseTimestamp(%q) = %v, want nil", in, got)
		}
	}
}
