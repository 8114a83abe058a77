package scoring

import (
	"testing"

	"decision-eval/backend/internal/decision"
	"decision-eval/backend/internal/match"
)

func TestScenarioTractionWithWeakUnitEconomics(t *testing.T) {
	in := Input{
		Question: match.NormalizeQuestion("Devemos escalar a aquisição para aumentar a receita?"),
		Context: decision.Context{
			Stage:          decision.StageTraction,
			CAC:            decision.Float(100),
			LTV:            decision.Float(200),
			ChurnRate:      decision.Float(0.03),
			RevenueMonthly: decision.Float(600_000),
		},
		Category:    decision.CategoryGrowth,
		HiddenRisks: 3,
	}

	s := Calculate(in)
	if s.Impact() != 5 || s.Risk() != 5 || s.Urgency() != 2 {
		t.Fatalf("dimensions = %d/%d/%d, want 5/5/2", s.Impact(), s.Risk(), s.Urgency())
	}
	if s.Value() != 2.0 {
		t.Fatalf("score = %v, want 2.0", s.Value())
	}
	if s.Interpretation() != decision.InterpretDoNotExecute {
		t.Fatalf("interpretation = %q", s.Interpretation())
	}
	if got := MapDecision(s.Value()); got != decision.ActionPause {
		t.Fatalf("decision = %s, want PAUSE", got)
	}
}

func TestRiskSkipsRatioWhenCACIsZero(t *testing.T) {
	base := Input{Context: decision.Context{LTV: decision.Float(50)}}
	withZero := base
	withZero.Context.CAC = decision.Float(0)
	if Risk(base) != 2 || Risk(withZero) != 2 {
		t.Fatalf("expected baseline risk 2, got %d and %d", Risk(base), Risk(withZero))
	}
}

func TestRiskComponents(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want int
	}{
		{"baseline", Input{}, 2},
		{"one hidden risk", Input{HiddenRisks: 1}, 3},
		{"three hidden risks", Input{HiddenRisks: 3}, 4},
		{"ratio below two", Input{Context: decision.Context{CAC: decision.Float(100), LTV: decision.Float(150)}}, 4},
		{"ratio below three", Input{Context: decision.Context{CAC: decision.Float(100), LTV: decision.Float(250)}}, 3},
		{"healthy ratio", Input{Context: decision.Context{CAC: decision.Float(100), LTV: decision.Float(400)}}, 2},
		{"churn", Input{Context: decision.Context{ChurnRate: decision.Float(0.2)}}, 3},
		{"clamped", Input{HiddenRisks: 4, Context: decision.Context{
			Stage: decision.StageTraction, ChurnRate: decision.Float(0.2),
			CAC: decision.Float(100), LTV: decision.Float(100),
		}}, 5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Risk(tc.in); got != tc.want {
				t.Fatalf("Risk = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestUrgencyKeywordsAreIndependent(t *testing.T) {
	tests := []struct {
		question string
		stage    decision.Stage
		want     int
	}{
		{"What colour should the logo be?", decision.StageUnset, 3},
		{"Devemos agir agora?", decision.StageUnset, 4},
		{"Vamos planejar o futuro", decision.StageUnset, 2},
		{"Agora ou no futuro?", decision.StageUnset, 3},
		{"Is this the window to expand?", decision.StageScale, 5},
		{"Should we consider a new plan?", decision.StageTraction, 1},
	}
	for _, tc := range tests {
		got := Urgency(Input{Question: match.NormalizeQuestion(tc.question), Context: decision.Context{Stage: tc.stage}})
		if got != tc.want {
			t.Errorf("Urgency(%q, %s) = %d, want %d", tc.question, tc.stage, got, tc.want)
		}
	}
}

func TestImpactVanityLowersScore(t *testing.T) {
	in := Input{Question: match.NormalizeQuestion("Should we chase more likes and impressions?"), Category: decision.CategoryProduct}
	if got := Impact(in); got != 2 {
		t.Fatalf("Impact = %d, want 2", got)
	}
}

func TestMapDecisionIsMonotonic(t *testing.T) {
	prev := MapDecision(0)
	for v := 0.0; v <= 25; v += 0.01 {
		cur := MapDecision(v)
		if cur.Strength() < prev.Strength() {
			t.Fatalf("MapDecision(%.2f) = %s weaker than previous %s", v, cur, prev)
		}
		prev = cur
	}

	boundaries := []struct {
		value float64
		want  decision.Action
	}{
		{6, decision.ActionExecute},
		{5.99, decision.ActionAdjust},
		{4, decision.ActionAdjust},
		{3.99, decision.ActionPause},
		{2, decision.ActionPause},
		{1.99, decision.ActionBlock},
	}
	for _, b := range boundaries {
		if got := MapDecision(b.value); got != b.want {
			t.Errorf("MapDecision(%v) = %s, want %s", b.value, got, b.want)
		}
	}
}
