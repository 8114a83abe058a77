package validation

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"decision-eval/backend/internal/decision"
)

const (
	adjustRetention     = "Fix retention before scaling acquisition"
	adjustUnitEconomics = "Validate unit economics with recent data before executing"
	adjustPilot         = "Run a controlled two-week test before full scale"
	adjustMonitor       = "Implement with close monitoring and clear reversal criteria"
)

// Input is what the cross-validator sees. It deliberately excludes the hidden
// risks found earlier in the pipeline.
type Input struct {
	Action    decision.Action
	Diagnosis string
	Score     decision.Score
	Context   decision.Context
}

// Findings returns additional risks, assumption issues and blind spots, in
// that order.
func Findings(in Input) []Finding {
	out := additionalRisks(in)
	out = append(out, assumptionIssues(in)...)
	return append(out, blindSpots(in)...)
}

// Validate runs the independent second pass over an initial decision.
func Validate(in Input) decision.Validation {
	findings := Findings(in)
	verdict := Verdict(len(findings), in.Score, in.Context)

	risks := make([]string, 0, len(findings))
	for _, f := range findings {
		risks = append(risks, f.Message)
	}

	out := decision.Validation{
		Verdict:         verdict,
		AdditionalRisks: risks,
		FinalVerdict:    finalVerdict(in.Action, verdict, countGroup(findings, GroupAdditionalRisk)),
	}
	if verdict == decision.VerdictAdjust {
		out.Adjustments = Adjustments(findings)
	}

	logrus.WithFields(logrus.Fields{
		"decision": in.Action.String(),
		"verdict":  verdict.String(),
		"risks":    len(findings),
	}).Info("cross-validation complete")
	return out
}

// Verdict applies the priority policy; the first matching rule wins.
func Verdict(riskCount int, score decision.Score, bc decision.Context) decision.Verdict {
	if riskCount >= 4 {
		return decision.VerdictBlock
	}
	if ratio, ok := bc.LTVCAC(); ok && ratio < 2 {
		return decision.VerdictBlock
	}
	if riskCount >= 2 {
		return decision.VerdictAdjust
	}
	if v := score.Value(); v >= 3 && v < 5 {
		return decision.VerdictAdjust
	}
	return decision.VerdictConfirm
}

// Adjustments recommends changes keyed by the kinds of finding present.
func Adjustments(findings []Finding) []string {
	var retention, unitEconomics, pilot bool
	for _, f := range findings {
		switch f.Kind {
		case KindChurn:
			retention = true
		case KindUnitEconomicsAssumption, KindMissingUnitEconomics:
			unitEconomics = true
		case KindLowUrgencyExecute:
			pilot = true
		}
	}

	var out []string
	if retention {
		out = append(out, adjustRetention)
	}
	if unitEconomics {
		out = append(out, adjustUnitEconomics)
	}
	if pilot {
		out = append(out, adjustPilot)
	}
	if len(out) == 0 {
		out = append(out, adjustMonitor)
	}
	return out
}

func countGroup(findings []Finding, g Group) int {
	n := 0
	for _, f := range findings {
		if f.Group == g {
			n++
		}
	}
	return n
}

// finalVerdict quotes only the additional-risk group; assumption issues and
// blind spots still count towards the verdict itself.
func finalVerdict(action decision.Action, verdict decision.Verdict, risks int) string {
	switch verdict {
	case decision.VerdictConfirm:
		return fmt.Sprintf("Decision '%s' validated. Solid fundamentals, risks mapped.", action)
	case decision.VerdictAdjust:
		return fmt.Sprintf("Decision '%s' requires adjustments. %d additional risks identified.", action, risks)
	default:
		return fmt.Sprintf("Decision '%s' BLOCKED. Risks outweigh benefits in the current scenario.", action)
	}
}
