package decision

import (
	"encoding/json"
	"math"
)

const (
	MinDimension = 1
	MaxDimension = 5
)

// Formula is the human-readable composite score definition.
const Formula = "Score = (Impact × Urgency) ÷ Risk"

// Score is the composite decision score. Its value and interpretation are
// always derived from the three dimensions; use NewScore to build one.
type Score struct {
	impact         int
	risk           int
	urgency        int
	value          float64
	interpretation Interpretation
}

// NewScore clamps each dimension to [1,5] and derives the composite value.
func NewScore(impact, risk, urgency int) Score {
	impact = ClampDimension(impact)
	risk = ClampDimension(risk)
	urgency = ClampDimension(urgency)
	value := composite(impact, urgency, risk)
	return Score{
		impact:         impact,
		risk:           risk,
		urgency:        urgency,
		value:          value,
		interpretation: Interpret(value),
	}
}

func (s Score) Impact() int                    { return s.impact }
func (s Score) Risk() int                      { return s.risk }
func (s Score) Urgency() int                   { return s.urgency }
func (s Score) Value() float64                 { return s.value }
func (s Score) Interpretation() Interpretation { return s.interpretation }

// composite applies (impact × urgency) ÷ risk rounded to two decimals, with 0
// as the result for a non-positive risk.
func composite(impact, urgency, risk int) float64 {
	if risk <= 0 {
		return 0
	}
	return round2(float64(impact*urgency) / float64(risk))
}

// Interpret maps a composite value to its three-tier reading.
func Interpret(value float64) Interpretation {
	switch {
	case value >= 6:
		return InterpretExecute
	case value >= 3:
		return InterpretValidate
	default:
		return InterpretDoNotExecute
	}
}

// ClampDimension bounds a sub-score to [1,5].
func ClampDimension(v int) int {
	if v < MinDimension {
		return MinDimension
	}
	if v > MaxDimension {
		return MaxDimension
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type scoreJSON struct {
	Impact         int            `json:"impact"`
	Risk           int            `json:"risk"`
	Urgency        int            `json:"urgency"`
	Score          float64        `json:"score"`
	Interpretation Interpretation `json:"interpretation"`
}

func (s Score) MarshalJSON() ([]byte, error) {
	return json.Marshal(scoreJSON{
		Impact:         s.impact,
		Risk:           s.risk,
		Urgency:        s.urgency,
		Score:          s.value,
		Interpretation: s.interpretation,
	})
}

// UnmarshalJSON reads the dimensions and recomputes the composite; any
// supplied score or interpretation is ignored.
func (s *Score) UnmarshalJSON(data []byte) error {
	var raw scoreJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = NewScore(raw.Impact, raw.Risk, raw.Urgency)
	return nil
}
