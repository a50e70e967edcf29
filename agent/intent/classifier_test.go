package intent

import (
	"strings"
	"testing"

	contractx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/contract"
)

func TestClassifyStrongSignals(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		summary contractx.BehaviorSummary
		want    contractx.IntentLevel
	}{
		{
			name:    "buy page always high",
			summary: contractx.BehaviorSummary{VisitCount: 1, MaxStaySeconds: 3, HasEnterBuyPage: true},
			want:    contractx.IntentHigh,
		},
		{
			name:    "add to cart always high",
			summary: contractx.BehaviorSummary{VisitCount: 1, MaxStaySeconds: 3, HasAddToCart: true},
			want:    contractx.IntentHigh,
		},
		{
			name:    "deep stay is high",
			summary: contractx.BehaviorSummary{VisitCount: 1, MaxStaySeconds: 45, AvgStaySeconds: 45},
			want:    contractx.IntentHigh,
		},
		{
			name:    "favorite with repeat visits is high",
			summary: contractx.BehaviorSummary{VisitCount: 2, MaxStaySeconds: 8, AvgStaySeconds: 8, HasFavorite: true},
			want:    contractx.IntentHigh,
		},
		{
			name:    "favorite on a single visit is not automatically high",
			summary: contractx.BehaviorSummary{VisitCount: 1, MaxStaySeconds: 12, AvgStaySeconds: 12, HasFavorite: true},
			want:    contractx.IntentMedium,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Classify(tc.summary)
			if got.Level != tc.want {
				t.Errorf("Classify(%+v) = %s (%s), want %s", tc.summary, got.Level, got.Reason, tc.want)
			}
			if got.Reason == "" {
				t.Error("reason must never be empty")
			}
		})
	}
}

func TestClassifyHesitation(t *testing.T) {
	t.Parallel()

	// Three visits with no action means hesitation even when each stay is
	// respectable. The max stay is capped so the deep-stay rule does not fire.
	got := Classify(contractx.BehaviorSummary{VisitCount: 3, MaxStaySeconds: 25, AvgStaySeconds: 18})
	if got.Level != contractx.IntentHesitating {
		t.Fatalf("3 visits, no action = %s (%s), want hesitating", got.Level, got.Reason)
	}
	if !strings.Contains(got.Reason, "3 times") {
		t.Errorf("reason should name the visit count: %s", got.Reason)
	}

	// Two quick visits with no action also count as hesitation.
	got = Classify(contractx.BehaviorSummary{VisitCount: 2, MaxStaySeconds: 8, AvgStaySeconds: 5})
	if got.Level != contractx.IntentHesitating {
		t.Fatalf("2 short visits, no action = %s (%s), want hesitating", got.Level, got.Reason)
	}
}

func TestClassifyMedium(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		summary contractx.BehaviorSummary
	}{
		{
			name:    "two visits with real engagement",
			summary: contractx.BehaviorSummary{VisitCount: 2, MaxStaySeconds: 14, AvgStaySeconds: 12},
		},
		{
			name:    "first visit with a long stay",
			summary: contractx.BehaviorSummary{VisitCount: 1, MaxStaySeconds: 20, AvgStaySeconds: 20},
		},
		{
			name:    "first visit with a size chart view",
			summary: contractx.BehaviorSummary{VisitCount: 1, MaxStaySeconds: 8, AvgStaySeconds: 8, HasClickSizeChart: true},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Classify(tc.summary)
			if got.Level != contractx.IntentMedium {
				t.Errorf("Classify(%+v) = %s (%s), want medium", tc.summary, got.Level, got.Reason)
			}
		})
	}
}

func TestClassifyLow(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		summary contractx.BehaviorSummary
	}{
		{
			name:    "bounce visit",
			summary: contractx.BehaviorSummary{VisitCount: 1, MaxStaySeconds: 4, AvgStaySeconds: 4},
		},
		{
			name:    "single short visit without actions",
			summary: contractx.BehaviorSummary{VisitCount: 1, MaxStaySeconds: 12, AvgStaySeconds: 12},
		},
		{
			name:    "empty summary",
			summary: contractx.BehaviorSummary{},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Classify(tc.summary)
			if got.Level != contractx.IntentLow {
				t.Errorf("Classify(%+v) = %s (%s), want low", tc.summary, got.Level, got.Reason)
			}
		})
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	t.Parallel()

	// A strong signal beats the hesitation rule at the same visit count.
	got := Classify(contractx.BehaviorSummary{VisitCount: 4, MaxStaySeconds: 10, AvgStaySeconds: 6, HasAddToCart: true})
	if got.Level != contractx.IntentHigh {
		t.Errorf("cart with many visits = %s, want high", got.Level)
	}

	// Deep engagement beats the no-action hesitation rule.
	got = Classify(contractx.BehaviorSummary{VisitCount: 3, MaxStaySeconds: 40, AvgStaySeconds: 25})
	if got.Level != contractx.IntentHigh {
		t.Errorf("deep stay with many visits = %s, want high", got.Level)
	}
}

func TestScoreBreakdown(t *testing.T) {
	t.Parallel()

	s := Score(contractx.BehaviorSummary{
		VisitCount:        5,
		MaxStaySeconds:    40,
		AvgStaySeconds:    22,
		HasEnterBuyPage:   true,
		HasAddToCart:      true,
		HasFavorite:       true,
		HasShare:          true,
		HasClickSizeChart: true,
	})

	if s.HighSignal != 130 {
		t.Errorf("HighSignal = %d, want 130", s.HighSignal)
	}
	if s.Engagement != 45 {
		t.Errorf("Engagement = %d, want 45", s.Engagement)
	}
	if s.Frequency != 30 {
		t.Errorf("Frequency = %d, want 30", s.Frequency)
	}
	if s.Hesitation != 0 {
		t.Errorf("Hesitation = %d, want 0 with strong actions present", s.Hesitation)
	}
	if s.Total() != 205 {
		t.Errorf("Total = %d, want 205", s.Total())
	}
}

func TestScoreHesitationPenalty(t *testing.T) {
	t.Parallel()

	s := Score(contractx.BehaviorSummary{VisitCount: 4, MaxStaySeconds: 9, AvgStaySeconds: 4})
	if s.Hesitation != 50 {
		t.Errorf("Hesitation = %d, want 50 (30 repeat + 20 short stays)", s.Hesitation)
	}

	// The penalty is suppressed by any strong action.
	s = Score(contractx.BehaviorSummary{VisitCount: 4, MaxStaySeconds: 9, AvgStaySeconds: 4, HasFavorite: true})
	if s.Hesitation != 0 {
		t.Errorf("Hesitation = %d, want 0", s.Hesitation)
	}
}
