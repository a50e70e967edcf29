// Package intent classifies purchase readiness from a behavior summary.
//
// The classifier is deliberately conservative: "high" requires a strong
// signal (buy page, cart, or favorite with repeat visits); repeat visits
// without any action mean hesitation, not readiness. Every branch attaches a
// human-readable reason naming the inputs that drove the decision, because
// downstream consumers display the reason verbatim.
package intent

import (
	"fmt"

	contractx "github.com/tanpawarit/Shoply-Proactive-Sales-Assist/agent/contract"
)

// Thresholds tune the rule cascade. Defaults follow retail practice: better
// to under-estimate intent than to over-contact a browsing user.
type Thresholds struct {
	MaxStayForHigh           int     `split_words:"true" default:"30"`
	MinVisitsForFavoriteHigh int     `split_words:"true" default:"2"`
	HesitationCutoff         int     `split_words:"true" default:"20"`
	ShortStaySeconds         float64 `split_words:"true" default:"10"`
	MediumAvgStaySeconds     float64 `split_words:"true" default:"10"`
	MediumMaxStaySeconds     int     `split_words:"true" default:"15"`
	LowMaxStaySeconds        int     `split_words:"true" default:"6"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxStayForHigh:           30,
		MinVisitsForFavoriteHigh: 2,
		HesitationCutoff:         20,
		ShortStaySeconds:         10,
		MediumAvgStaySeconds:     10,
		MediumMaxStaySeconds:     15,
		LowMaxStaySeconds:        6,
	}
}

// Scores is the diagnostic breakdown of the four independent partial scores.
// Only the fallback branch of the cascade uses the weighted total directly;
// the earlier rules decide on the raw inputs.
type Scores struct {
	HighSignal int `json:"high_signal"`
	Engagement int `json:"engagement"`
	Frequency  int `json:"frequency"`
	Hesitation int `json:"hesitation"`
}

// Total is the weighted sum used by the fallback branch.
func (s Scores) Total() int {
	return s.HighSignal + s.Engagement + s.Frequency - s.Hesitation
}

// Score computes the partial scores for a summary. Exposed for diagnostics.
func Score(summary contractx.BehaviorSummary) Scores {
	return scoreWith(summary, DefaultThresholds())
}

func scoreWith(summary contractx.BehaviorSummary, th Thresholds) Scores {
	var s Scores

	if summary.HasEnterBuyPage {
		s.HighSignal += 60
	}
	if summary.HasAddToCart {
		s.HighSignal += 50
	}
	if summary.HasFavorite {
		s.HighSignal += 20
	}

	switch {
	case summary.MaxStaySeconds > th.MaxStayForHigh:
		s.Engagement += 30
	case summary.MaxStaySeconds > th.MediumMaxStaySeconds:
		s.Engagement += 20
	case float64(summary.MaxStaySeconds) > th.MediumAvgStaySeconds:
		s.Engagement += 10
	}
	if summary.HasClickSizeChart {
		s.Engagement += 10
	}
	if summary.HasShare {
		s.Engagement += 5
	}

	switch {
	case summary.VisitCount >= 5:
		s.Frequency += 30
	case summary.VisitCount >= 3:
		s.Frequency += 20
	case summary.VisitCount == 2:
		s.Frequency += 10
	}

	if !hasStrongAction(summary) {
		if summary.VisitCount >= 3 {
			s.Hesitation += 30
		}
		if summary.VisitCount >= 2 && summary.AvgStaySeconds < th.ShortStaySeconds {
			s.Hesitation += 20
		}
	}

	return s
}

func hasStrongAction(summary contractx.BehaviorSummary) bool {
	return summary.HasEnterBuyPage || summary.HasAddToCart || summary.HasFavorite
}

// Classify maps a behavior summary to an intent level with a reason. It is a
// pure function and never fails; absent summary fields are zero values.
func Classify(summary contractx.BehaviorSummary) contractx.IntentResult {
	return ClassifyWith(summary, DefaultThresholds())
}

// ClassifyWith is Classify with explicit thresholds. The cascade is an
// ordered priority list: the first matching rule wins.
func ClassifyWith(summary contractx.BehaviorSummary, th Thresholds) contractx.IntentResult {
	scores := scoreWith(summary, th)

	// Strong signals first.
	if summary.HasEnterBuyPage {
		return contractx.IntentResult{
			Level: contractx.IntentHigh,
			Reason: fmt.Sprintf(
				"user entered the buy page, the strongest purchase signal; visits=%d, max stay %ds",
				summary.VisitCount, summary.MaxStaySeconds),
		}
	}
	if summary.HasAddToCart {
		return contractx.IntentResult{
			Level: contractx.IntentHigh,
			Reason: fmt.Sprintf(
				"user added the product to the cart, a clear purchase signal; visits=%d, max stay %ds",
				summary.VisitCount, summary.MaxStaySeconds),
		}
	}
	if summary.MaxStaySeconds > th.MaxStayForHigh {
		return contractx.IntentResult{
			Level: contractx.IntentHigh,
			Reason: fmt.Sprintf(
				"peak single-visit stay of %ds exceeds %ds (avg %.1fs), indicating deep engagement",
				summary.MaxStaySeconds, th.MaxStayForHigh, summary.AvgStaySeconds),
		}
	}
	if summary.HasFavorite && summary.VisitCount >= th.MinVisitsForFavoriteHigh {
		return contractx.IntentResult{
			Level: contractx.IntentHigh,
			Reason: fmt.Sprintf(
				"user favorited the product across %d visits (avg stay %.1fs), showing sustained interest",
				summary.VisitCount, summary.AvgStaySeconds),
		}
	}

	// Repeat visits without action mean hesitation, not readiness.
	if scores.Hesitation >= th.HesitationCutoff {
		if summary.VisitCount >= 3 {
			return contractx.IntentResult{
				Level: contractx.IntentHesitating,
				Reason: fmt.Sprintf(
					"user visited %d times without any purchase action (no buy page, cart, or favorite); likely hesitating or missing information",
					summary.VisitCount),
			}
		}
		return contractx.IntentResult{
			Level: contractx.IntentHesitating,
			Reason: fmt.Sprintf(
				"user visited %d times but stayed only %.1fs on average and took no action, suggesting hesitation",
				summary.VisitCount, summary.AvgStaySeconds),
		}
	}

	if (summary.VisitCount == 2 || summary.VisitCount == 3) &&
		summary.AvgStaySeconds > th.MediumAvgStaySeconds {
		return contractx.IntentResult{
			Level: contractx.IntentMedium,
			Reason: fmt.Sprintf(
				"user visited %d times with %.1fs average stay, showing interest without a strong purchase signal",
				summary.VisitCount, summary.AvgStaySeconds),
		}
	}
	if summary.VisitCount == 1 &&
		(summary.MaxStaySeconds > th.MediumMaxStaySeconds || summary.HasClickSizeChart) {
		if summary.HasClickSizeChart {
			return contractx.IntentResult{
				Level: contractx.IntentMedium,
				Reason: fmt.Sprintf(
					"first visit with a %ds stay and a size-chart view, showing initial interest",
					summary.MaxStaySeconds),
			}
		}
		return contractx.IntentResult{
			Level: contractx.IntentMedium,
			Reason: fmt.Sprintf(
				"first visit with a %ds stay, showing initial interest", summary.MaxStaySeconds),
		}
	}

	if summary.VisitCount == 1 && summary.MaxStaySeconds < th.LowMaxStaySeconds {
		return contractx.IntentResult{
			Level: contractx.IntentLow,
			Reason: fmt.Sprintf(
				"single visit of only %ds, purchase interest is low", summary.MaxStaySeconds),
		}
	}
	if summary.VisitCount == 1 && summary.MaxStaySeconds < th.MediumMaxStaySeconds && !summary.HasFavorite {
		return contractx.IntentResult{
			Level: contractx.IntentLow,
			Reason: fmt.Sprintf(
				"single %ds visit with no favorite or other action, purchase interest is low",
				summary.MaxStaySeconds),
		}
	}

	// Fallback: weighted total over the partial scores.
	total := scores.Total()
	reason := fmt.Sprintf(
		"weighted score %d (signal=%d engagement=%d frequency=%d hesitation=%d) from visits=%d, max stay %ds, avg stay %.1fs",
		total, scores.HighSignal, scores.Engagement, scores.Frequency, scores.Hesitation,
		summary.VisitCount, summary.MaxStaySeconds, summary.AvgStaySeconds)

	switch {
	case total >= 60:
		return contractx.IntentResult{Level: contractx.IntentHigh, Reason: reason}
	case total >= 30:
		return contractx.IntentResult{Level: contractx.IntentMedium, Reason: reason}
	case scores.Hesitation > 0:
		return contractx.IntentResult{Level: contractx.IntentHesitating, Reason: reason}
	default:
		return contractx.IntentResult{Level: contractx.IntentLow, Reason: reason}
	}
}
