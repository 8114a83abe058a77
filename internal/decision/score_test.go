package decision

import (
	"encoding/json"
	"math"
	"testing"
)

func TestNewScoreFormula(t *testing.T) {
	for impact := MinDimension; impact <= MaxDimension; impact++ {
		for risk := MinDimension; risk <= MaxDimension; risk++ {
			for urgency := MinDimension; urgency <= MaxDimension; urgency++ {
				s := NewScore(impact, risk, urgency)
				want := math.Round(float64(impact*urgency)/float64(risk)*100) / 100
				if s.Value() != want {
					t.Fatalf("NewScore(%d,%d,%d) = %v, want %v", impact, risk, urgency, s.Value(), want)
				}
				if s.Interpretation() != Interpret(want) {
					t.Fatalf("interpretation mismatch for %v", want)
				}
			}
		}
	}
}

func TestNewScoreClampsRiskAwayFromZero(t *testing.T) {
	for _, risk := range []int{-10, -1, 0, 1, 7} {
		s := NewScore(3, risk, 3)
		if s.Risk() < MinDimension || s.Risk() > MaxDimension {
			t.Fatalf("risk %d clamped to %d", risk, s.Risk())
		}
		if s.Value() == 0 {
			t.Fatalf("risk %d produced fallback score", risk)
		}
	}
}

func TestCompositeZeroRiskFallback(t *testing.T) {
	if got := composite(5, 5, 0); got != 0 {
		t.Fatalf("composite with zero risk = %v, want 0", got)
	}
	if got := composite(5, 5, -2); got != 0 {
		t.Fatalf("composite with negative risk = %v, want 0", got)
	}
}

func TestInterpretThresholds(t *testing.T) {
	tests := []struct {
		value float64
		want  Interpretation
	}{
		{25, InterpretExecute},
		{6, InterpretExecute},
		{5.99, InterpretValidate},
		{3, InterpretValidate},
		{2.99, InterpretDoNotExecute},
		{0, InterpretDoNotExecute},
	}
	for _, tc := range tests {
		if got := Interpret(tc.value); got != tc.want {
			t.Errorf("Interpret(%v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestScoreJSONRecomputesValue(t *testing.T) {
	var s Score
	payload := `{"impact":4,"risk":2,"urgency":3,"score":99,"interpretation":"EXECUTE"}`
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Value() != 6 {
		t.Fatalf("expected recomputed score 6, got %v", s.Value())
	}

	out, err := json.Marshal(NewScore(5, 5, 2))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"impact":5,"risk":5,"urgency":2,"score":2,"interpretation":"DO NOT EXECUTE"}`
	if string(out) != want {
		t.Fatalf("marshal = %s, want %s", out, want)
	}
}
