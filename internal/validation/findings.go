package validation

import "decision-eval/backend/internal/decision"

// Group is the sub-list a finding belongs to. Groups are reported in
// declaration order.
type Group uint8

const (
	GroupAdditionalRisk Group = iota
	GroupAssumption
	GroupBlindSpot
)

// Kind identifies the rule that produced a finding.
type Kind uint8

const (
	KindHighImpactHighRisk Kind = iota
	KindLowUrgencyExecute
	KindChurn
	KindGrossMargin
	KindUnitEconomicsAssumption
	KindStageRevenueMismatch
	KindMissingChurn
	KindMissingUnitEconomics
)

// Finding is one risk raised by the cross-validator.
type Finding struct {
	Kind    Kind
	Group   Group
	Message string
}

func additionalRisks(in Input) []Finding {
	var out []Finding
	s := in.Score
	if s.Impact() >= 4 && s.Risk() >= 4 {
		out = append(out, Finding{KindHighImpactHighRisk, GroupAdditionalRisk,
			"High impact with high risk: make sure the decision can be reversed"})
	}
	if s.Urgency() <= 2 && in.Action == decision.ActionExecute {
		out = append(out, Finding{KindLowUrgencyExecute, GroupAdditionalRisk,
			"Executing with low urgency: risk of acting prematurely"})
	}
	if c := in.Context.ChurnRate; c != nil && *c > 0.05 && in.Action != decision.ActionPause {
		out = append(out, Finding{KindChurn, GroupAdditionalRisk,
			"High churn may invalidate the growth assumptions"})
	}
	if m := in.Context.GrossMargin; m != nil && *m < 0.6 {
		out = append(out, Finding{KindGrossMargin, GroupAdditionalRisk,
			"Gross margin below 60% limits the capacity to invest in acquisition"})
	}
	return out
}

func assumptionIssues(in Input) []Finding {
	var out []Finding
	if ratio, ok := in.Context.LTVCAC(); ok && ratio < 3 {
		out = append(out, Finding{KindUnitEconomicsAssumption, GroupAssumption,
			"LTV/CAC > 3x premise not confirmed"})
	}
	if r := in.Context.RevenueMonthly; in.Context.Stage == decision.StageScale && r != nil && *r < 100_000 {
		out = append(out, Finding{KindStageRevenueMismatch, GroupAssumption,
			"Stage 'scale' declared but revenue indicates 'traction'"})
	}
	return out
}

func blindSpots(in Input) []Finding {
	var out []Finding
	if in.Context.ChurnRate == nil {
		out = append(out, Finding{KindMissingChurn, GroupBlindSpot,
			"Churn rate not provided: risk cannot be quantified"})
	}
	if !in.Context.HasUnitEconomics() {
		out = append(out, Finding{KindMissingUnitEconomics, GroupBlindSpot,
			"Unit economics incomplete: decision lacks foundation"})
	}
	return out
}
