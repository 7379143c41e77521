package insights

import "sort"

// Snapshot is the immutable input every recommendation rule is evaluated against.
type Snapshot struct {
	Analytics  *AnalyticsMetrics
	Automation *AutomationMetrics
	Health     HealthScore
}

// Rule turns one threshold check into at most one recommendation.
// Rules never see each other's output.
type Rule interface {
	Evaluate(s Snapshot) (Recommendation, bool)
}

// RuleFunc adapts a plain predicate into a Rule.
type RuleFunc func(s Snapshot) (Recommendation, bool)

func (f RuleFunc) Evaluate(s Snapshot) (Recommendation, bool) {
	return f(s)
}

const (
	BounceRateLimit     = 70.0
	ConversionRateFloor = 2.0
	AutomationRateFloor = 90.0
	OverallHealthFloor  = 60
)

// DefaultRules are the built-in recommendation rules.
func DefaultRules() []Rule {
	return []Rule{
		RuleFunc(func(s Snapshot) (Recommendation, bool) {
			if s.Analytics == nil || s.Analytics.BounceRate <= BounceRateLimit {
				return Recommendation{}, false
			}
			return Recommendation{
				ID:          "reduce-bounce-rate",
				Title:       "Reduce bounce rate",
				Description: "More than 70% of visitors leave after one page. Improve page speed, landing page relevance and navigation.",
				Impact:      ImpactHigh,
				Category:    CategoryEngagement,
				Priority:    1,
				Actionable:  true,
				Effort:      "2-3 weeks",
			}, true
		}),
		RuleFunc(func(s Snapshot) (Recommendation, bool) {
			if s.Analytics == nil || s.Analytics.ConversionRate >= ConversionRateFloor {
				return Recommendation{}, false
			}
			return Recommendation{
				ID:          "optimize-conversion-funnel",
				Title:       "Optimize conversion funnel",
				Description: "Conversion rate is below 2%. Simplify checkout, strengthen calls to action and test pricing presentation.",
				Impact:      ImpactHigh,
				Category:    CategoryConversion,
				Priority:    2,
				Actionable:  true,
				Effort:      "3-4 weeks",
			}, true
		}),
		RuleFunc(func(s Snapshot) (Recommendation, bool) {
			if s.Automation == nil || s.Automation.SuccessRate >= AutomationRateFloor {
				return Recommendation{}, false
			}
			return Recommendation{
				ID:          "improve-workflow-reliability",
				Title:       "Improve workflow reliability",
				Description: "Automation success rate is below 90%. Add error handling and retries to the failing workflows.",
				Impact:      ImpactMedium,
				Category:    CategoryAutomation,
				Priority:    3,
				Actionable:  true,
				Effort:      "1-2 weeks",
			}, true
		}),
		RuleFunc(func(s Snapshot) (Recommendation, bool) {
			if s.Health.Overall >= OverallHealthFloor {
				return Recommendation{}, false
			}
			return Recommendation{
				ID:          "business-health-review",
				Title:       "Run a business health review",
				Description: "The composite health score is below 60. Review the weakest categories and set short-term goals for each.",
				Impact:      ImpactHigh,
				Category:    CategoryOverall,
				Priority:    4,
				Actionable:  true,
				Effort:      "1 week",
			}, true
		}),
	}
}

// GenerateRecommendations evaluates every rule against the same snapshot and
// orders the result by impact (high first) then ascending priority.
func GenerateRecommendations(s Snapshot, rules []Rule) []Recommendation {
	recs := []Recommendation{}
	for _, rule := range rules {
		if rec, ok := rule.Evaluate(s); ok {
			recs = append(recs, rec)
		}
	}
	SortRecommendations(recs)
	return recs
}

func SortRecommendations(recs []Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		ri, rj := impactRank(recs[i].Impact), impactRank(recs[j].Impact)
		if ri != rj {
			return ri > rj
		}
		return recs[i].Priority < recs[j].Priority
	})
}

func impactRank(impact string) int {
	switch impact {
	case ImpactHigh:
		return 3
	case ImpactMedium:
		return 2
	case ImpactLow:
		return 1
	}
	return 0
}
