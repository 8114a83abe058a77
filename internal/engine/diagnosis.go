package engine

import (
	"context"
	"fmt"

	"decision-eval/backend/internal/ai"
	"decision-eval/backend/internal/decision"
)

// TemplateDiagnosis picks exactly one of three fixed readings: weak unit
// economics, retention trouble, or healthy fundamentals.
func TemplateDiagnosis(bc decision.Context) string {
	ratio, hasRatio := bc.LTVCAC()
	if hasRatio && ratio < 3 {
		return fmt.Sprintf("Current LTV/CAC (%.1fx) is below the healthy minimum (3x). Scaling acquisition now may accelerate cash burn with no guaranteed return.", ratio)
	}
	if bc.ChurnRate != nil && *bc.ChurnRate > 0.1 {
		return fmt.Sprintf("Current churn (%.1f%%) points to retention problems. Growth in this scenario is potentially artificial.", *bc.ChurnRate*100)
	}
	ratioText := "n/a"
	if hasRatio {
		ratioText = fmt.Sprintf("%.1fx", ratio)
	}
	churnText := "n/a"
	if bc.ChurnRate != nil {
		churnText = fmt.Sprintf("%.1f%%", *bc.ChurnRate*100)
	}
	return fmt.Sprintf("Unit economics indicate healthy fundamentals (LTV/CAC: %s, Churn: %s). The decision should weigh capital efficiency.", ratioText, churnText)
}

// TemplateDiagnoser adapts TemplateDiagnosis to the ai.Diagnoser interface so
// it can sit at the end of a fallback chain.
type TemplateDiagnoser struct{}

func (TemplateDiagnoser) Enabled() bool { return true }

func (TemplateDiagnoser) Diagnose(_ context.Context, input ai.DiagnosisInput) (string, error) {
	return TemplateDiagnosis(input.Context), nil
}
