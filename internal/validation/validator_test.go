package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"decision-eval/backend/internal/decision"
)

func fullContext() decision.Context {
	return decision.Context{
		Stage:          decision.StageScale,
		RevenueMonthly: decision.Float(400_000),
		ChurnRate:      decision.Float(0.02),
		CAC:            decision.Float(100),
		LTV:            decision.Float(500),
		GrossMargin:    decision.Float(0.75),
	}
}

func TestValidateScenario(t *testing.T) {
	got := Validate(Input{
		Action: decision.ActionPause,
		Score:  decision.NewScore(5, 5, 2),
		Context: decision.Context{
			Stage:          decision.StageTraction,
			CAC:            decision.Float(100),
			LTV:            decision.Float(200),
			ChurnRate:      decision.Float(0.03),
			RevenueMonthly: decision.Float(600_000),
		},
	})
	want := decision.Validation{
		Verdict: decision.VerdictAdjust,
		AdditionalRisks: []string{
			"High impact with high risk: make sure the decision can be reversed",
			"LTV/CAC > 3x premise not confirmed",
		},
		FinalVerdict: "Decision 'PAUSE' requires adjustments. 1 additional risks identified.",
		Adjustments:  []string{adjustUnitEconomics},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("validation mismatch (-want +got):\n%s", diff)
	}
}

func TestFinalVerdictCountsAdditionalRisksOnly(t *testing.T) {
	// One additional risk (gross margin), one assumption issue (LTV/CAC)
	// and one blind spot (churn missing).
	got := Validate(Input{
		Action: decision.ActionExecute,
		Score:  decision.NewScore(2, 2, 4),
		Context: decision.Context{
			Stage:       decision.StageTraction,
			CAC:         decision.Float(100),
			LTV:         decision.Float(250),
			GrossMargin: decision.Float(0.5),
		},
	})
	if got.Verdict != decision.VerdictAdjust {
		t.Fatalf("verdict = %s, want ADJUST", got.Verdict)
	}
	if len(got.AdditionalRisks) != 3 {
		t.Fatalf("risks = %q, want three findings", got.AdditionalRisks)
	}
	want := "Decision 'EXECUTE' requires adjustments. 1 additional risks identified."
	if got.FinalVerdict != want {
		t.Fatalf("final verdict = %q, want %q", got.FinalVerdict, want)
	}
}

func TestVerdictPriority(t *testing.T) {
	healthy := fullContext()
	broken := fullContext()
	broken.LTV = decision.Float(150)

	tests := []struct {
		name   string
		risks  int
		score  decision.Score
		bc     decision.Context
		expect decision.Verdict
	}{
		{"four risks block", 4, decision.NewScore(5, 1, 5), healthy, decision.VerdictBlock},
		{"ratio below two blocks", 0, decision.NewScore(5, 1, 5), broken, decision.VerdictBlock},
		{"two risks adjust", 2, decision.NewScore(5, 1, 5), healthy, decision.VerdictAdjust},
		{"borderline score adjusts", 0, decision.NewScore(4, 1, 1), healthy, decision.VerdictAdjust},
		{"score five confirms", 0, decision.NewScore(5, 1, 1), healthy, decision.VerdictConfirm},
		{"low score confirms", 1, decision.NewScore(1, 5, 1), healthy, decision.VerdictConfirm},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Verdict(tc.risks, tc.score, tc.bc); got != tc.expect {
				t.Fatalf("Verdict = %s, want %s", got, tc.expect)
			}
		})
	}
}

func TestFindingsOrderAndBlindSpots(t *testing.T) {
	in := Input{
		Action:  decision.ActionExecute,
		Score:   decision.NewScore(3, 2, 2),
		Context: decision.Context{Stage: decision.StageScale, RevenueMonthly: decision.Float(50_000), GrossMargin: decision.Float(0)},
	}
	var kinds []Kind
	for _, f := range Findings(in) {
		kinds = append(kinds, f.Kind)
	}
	want := []Kind{KindLowUrgencyExecute, KindGrossMargin, KindStageRevenueMismatch, KindMissingChurn, KindMissingUnitEconomics}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}

	got := Validate(in)
	if got.Verdict != decision.VerdictBlock {
		t.Fatalf("verdict = %s, want BLOCK", got.Verdict)
	}
	if got.Adjustments != nil {
		t.Fatalf("blocked validation should carry no adjustments, got %v", got.Adjustments)
	}
}

func TestChurnIgnoredWhenPaused(t *testing.T) {
	bc := fullContext()
	bc.ChurnRate = decision.Float(0.09)
	for _, action := range []decision.Action{decision.ActionPause, decision.ActionAdjust} {
		found := false
		for _, f := range Findings(Input{Action: action, Score: decision.NewScore(3, 3, 3), Context: bc}) {
			if f.Kind == KindChurn {
				found = true
			}
		}
		if found != (action != decision.ActionPause) {
			t.Errorf("churn finding for %s = %v", action, found)
		}
	}
}

func TestAdjustments(t *testing.T) {
	tests := []struct {
		name     string
		findings []Finding
		want     []string
	}{
		{"fallback", []Finding{{Kind: KindHighImpactHighRisk}, {Kind: KindGrossMargin}}, []string{adjustMonitor}},
		{"all keyed", []Finding{{Kind: KindLowUrgencyExecute}, {Kind: KindMissingUnitEconomics}, {Kind: KindChurn}},
			[]string{adjustRetention, adjustUnitEconomics, adjustPilot}},
		{"deduplicated", []Finding{{Kind: KindUnitEconomicsAssumption}, {Kind: KindMissingUnitEconomics}}, []string{adjustUnitEconomics}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, Adjustments(tc.findings)); diff != "" {
				t.Fatalf("adjustments mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
