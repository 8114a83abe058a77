package scoring

import (
	"github.com/sirupsen/logrus"

	"decision-eval/backend/internal/decision"
	"decision-eval/backend/internal/match"
)

// Input is everything the scoring engine reads.
type Input struct {
	Question    match.QuestionProfile
	Context     decision.Context
	Category    decision.Category
	HiddenRisks int
}

// Impact starts at 3 and moves on revenue-linked language, monthly revenue
// above 500k and growth or pricing decisions.
func Impact(in Input) int {
	score := 3
	if highImpactKeywords.Matches(in.Question) {
		score++
	}
	if vanityKeywords.Matches(in.Question) {
		score--
	}
	if in.Context.RevenueMonthly != nil && *in.Context.RevenueMonthly > 500_000 {
		score++
	}
	if in.Category == decision.CategoryGrowth || in.Category == decision.CategoryPricing {
		score++
	}
	return decision.ClampDimension(score)
}

// Risk starts at 2 and accumulates identified risks, weak unit economics,
// churn above 10% and early stage.
func Risk(in Input) int {
	score := 2
	switch {
	case in.HiddenRisks >= 3:
		score += 2
	case in.HiddenRisks >= 1:
		score++
	}
	if ratio, ok := in.Context.LTVCAC(); ok {
		switch {
		case ratio < 2:
			score += 2
		case ratio < 3:
			score++
		}
	}
	if in.Context.ChurnRate != nil && *in.Context.ChurnRate > 0.1 {
		score++
	}
	if in.Context.Stage == decision.StageTraction {
		score++
	}
	return decision.ClampDimension(score)
}

// Urgency starts at 3. Urgent and deferring language are checked
// independently, so a question can carry both.
func Urgency(in Input) int {
	score := 3
	if urgentKeywords.Matches(in.Question) {
		score++
	}
	if deferKeywords.Matches(in.Question) {
		score--
	}
	switch in.Context.Stage {
	case decision.StageTraction:
		score--
	case decision.StageScale:
		score++
	}
	return decision.ClampDimension(score)
}

// Calculate produces the composite score for one evaluation.
func Calculate(in Input) decision.Score {
	s := decision.NewScore(Impact(in), Risk(in), Urgency(in))
	logrus.WithFields(logrus.Fields{
		"impact":         s.Impact(),
		"risk":           s.Risk(),
		"urgency":        s.Urgency(),
		"score":          s.Value(),
		"interpretation": s.Interpretation(),
	}).Debug("decision scored")
	return s
}

// MapDecision turns a composite value into the initial decision.
func MapDecision(value float64) decision.Action {
	switch {
	case value >= 6:
		return decision.ActionExecute
	case value >= 4:
		return decision.ActionAdjust
	case value >= 2:
		return decision.ActionPause
	default:
		return decision.ActionBlock
	}
}
