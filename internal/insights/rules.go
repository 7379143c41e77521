package insights

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// RuleDefinition describes an operator-defined recommendation rule. When is an
// expr boolean expression over RuleEnv, for example "bounceRate > 60 && sessions > 1000".
type RuleDefinition struct {
	ID          string `mapstructure:"id"`
	When        string `mapstructure:"when"`
	Title       string `mapstructure:"title"`
	Description string `mapstructure:"description"`
	Impact      string `mapstructure:"impact"`
	Category    string `mapstructure:"category"`
	Priority    int    `mapstructure:"priority"`
	Effort      string `mapstructure:"effort"`
}

// RuleEnv is the flattened snapshot exposed to rule expressions.
type RuleEnv struct {
	AnalyticsAvailable  bool    `expr:"analyticsAvailable"`
	Sessions            float64 `expr:"sessions"`
	Users               float64 `expr:"users"`
	BounceRate          float64 `expr:"bounceRate"`
	SessionDuration     float64 `expr:"sessionDuration"`
	ConversionRate      float64 `expr:"conversionRate"`
	AutomationAvailable bool    `expr:"automationAvailable"`
	SuccessRate         float64 `expr:"successRate"`
	TimeSavedHours      float64 `expr:"timeSavedHours"`
	FailedExecutions    int     `expr:"failedExecutions"`
	ActiveWorkflows     int     `expr:"activeWorkflows"`
	Health              int     `expr:"health"`
	Traffic             int     `expr:"traffic"`
	Engagement          int     `expr:"engagement"`
	Conversion          int     `expr:"conversion"`
	Automation          int     `expr:"automation"`
}

func NewRuleEnv(s Snapshot) RuleEnv {
	env := RuleEnv{
		Health:     s.Health.Overall,
		Traffic:    s.Health.Categories.Traffic,
		Engagement: s.Health.Categories.Engagement,
		Conversion: s.Health.Categories.Conversion,
		Automation: s.Health.Categories.Automation,
	}
	if a := s.Analytics; a != nil {
		env.AnalyticsAvailable = true
		env.Sessions = a.Sessions
		env.Users = a.Users
		env.BounceRate = a.BounceRate
		env.SessionDuration = a.AvgSessionDuration
		env.ConversionRate = a.ConversionRate
	}
	if m := s.Automation; m != nil {
		env.AutomationAvailable = true
		env.SuccessRate = m.SuccessRate
		env.TimeSavedHours = m.TimeSavedHours
		env.FailedExecutions = m.FailedExecutions
		env.ActiveWorkflows = m.ActiveWorkflows
	}
	return env
}

type exprRule struct {
	def     RuleDefinition
	program *vm.Program
}

// CompileRule compiles a definition into a Rule. The expression must be boolean.
func CompileRule(def RuleDefinition) (Rule, error) {
	if def.ID == "" || def.When == "" {
		return nil, fmt.Errorf("rule requires id and when")
	}
	switch def.Impact {
	case ImpactHigh, ImpactMedium, ImpactLow:
	case "":
		def.Impact = ImpactMedium
	default:
		return nil, fmt.Errorf("rule %s: unknown impact %q", def.ID, def.Impact)
	}

	program, err := expr.Compile(def.When, expr.Env(RuleEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("rule %s: compile error: %w", def.ID, err)
	}
	return &exprRule{def: def, program: program}, nil
}

// CompileRules compiles every definition, failing on the first invalid one.
func CompileRules(defs []RuleDefinition) ([]Rule, error) {
	rules := make([]Rule, 0, len(defs))
	for _, def := range defs {
		rule, err := CompileRule(def)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func (r *exprRule) Evaluate(s Snapshot) (Recommendation, bool) {
	out, err := expr.Run(r.program, NewRuleEnv(s))
	if err != nil {
		return Recommendation{}, false
	}
	matched, ok := out.(bool)
	if !ok || !matched {
		return Recommendation{}, false
	}
	return Recommendation{
		ID:          r.def.ID,
		Title:       r.def.Title,
		Description: r.def.Description,
		Impact:      r.def.Impact,
		Category:    r.def.Category,
		Priority:    r.def.Priority,
		Actionable:  true,
		Effort:      r.def.Effort,
	}, true
}
