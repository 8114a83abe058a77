package engine

import (
	"decision-eval/backend/internal/decision"
	"decision-eval/backend/internal/match"
)

const noCriticalRisk = "No critical risks identified, but validate the premises"

var scaleKeywords = match.NewKeywordSet("escalar", "dobrar", "scale", "scaling", "double")

var keyMetrics = map[decision.Category][]string{
	decision.CategoryGrowth:  {"CAC Payback", "LTV/CAC", "Burn Multiple", "Churn by cohort"},
	decision.CategoryBudget:  {"Incremental ROAS", "Contribution Margin", "Marginal ROI"},
	decision.CategoryProduct: {"Activation Rate", "Retention", "NPS"},
	decision.CategoryPricing: {"Price elasticity", "Average ticket", "Churn by price"},
	decision.CategoryMarket:  {"Realistic TAM", "SAM", "SOM", "Penetration"},
}

// KeyMetrics returns the metrics to watch for a category.
func KeyMetrics(cat decision.Category) []string {
	if m, ok := keyMetrics[cat]; ok {
		return append([]string(nil), m...)
	}
	return []string{"CAC", "LTV", "Churn"}
}

// HiddenRisks evaluates the built-in rules in order, appends any extra
// messages, and falls back to a single default entry so the list is never
// empty.
func HiddenRisks(q match.QuestionProfile, bc decision.Context, extra []string) []string {
	var risks []string
	if ratio, ok := bc.LTVCAC(); ok && ratio < 3 {
		risks = append(risks, "Fragile unit economics: risk of premature scaling")
	}
	if bc.ChurnRate != nil && *bc.ChurnRate > 0.08 {
		risks = append(risks, "High churn points to a product problem, not an acquisition problem")
	}
	if scaleKeywords.Matches(q) {
		risks = append(risks, "Increasing investment may raise CAC (diminishing returns)")
	}
	if bc.Stage == decision.StageTraction {
		risks = append(risks, "Traction stage requires validation before scaling")
	}
	risks = append(risks, extra...)
	if len(risks) == 0 {
		risks = append(risks, noCriticalRisk)
	}
	return risks
}

var principles = map[decision.Category]string{
	decision.CategoryGrowth:  "Capital efficiency: grow only once unit economics are proven",
	decision.CategoryBudget:  "Marginal ROI: every additional dollar must produce a measurable return",
	decision.CategoryProduct: "Validation before scale: retention over acquisition",
	decision.CategoryPricing: "Willingness to pay: price must reflect perceived value",
	decision.CategoryMarket:  "Bottom-up sizing: TAM is not a guarantee of capture",
}

// Principle returns the strategic principle that applies to a category.
func Principle(cat decision.Category) string {
	if p, ok := principles[cat]; ok {
		return p
	}
	return "Decisions driven by data, not intuition"
}

// NextStep combines the initial decision and the validator's verdict. A BLOCK
// verdict overrides the decision.
func NextStep(action decision.Action, verdict decision.Verdict) string {
	if verdict == decision.VerdictBlock {
		return "Do not execute. Revisit the fundamental assumptions before taking any action."
	}
	switch action {
	case decision.ActionExecute:
		return "Execute with weekly monitoring of key metrics. Define reversal criteria."
	case decision.ActionAdjust:
		return "Adjust scope or timeline. Validate hypotheses with a controlled test before scaling."
	case decision.ActionPause:
		return "Pause and prioritise fixing fundamentals (retention, unit economics). Revisit in 30 days."
	default:
		return "Block execution. The risk of value destruction outweighs the potential gain."
	}
}
