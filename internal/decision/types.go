package decision

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownStage    = errors.New("unknown company stage")
	ErrUnknownCategory = errors.New("unknown decision category")
	ErrUnknownAction   = errors.New("unknown decision")
	ErrUnknownVerdict  = errors.New("unknown validation verdict")
)

// Stage is the declared maturity of the company. The zero value means the
// caller did not declare one.
type Stage uint8

const (
	StageUnset Stage = iota
	StageTraction
	StageScale
	StageEnterprise
)

var stageNames = map[Stage]string{
	StageTraction:   "traction",
	StageScale:      "scale",
	StageEnterprise: "enterprise",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return ""
}

// ParseStage accepts the lower-case wire names; an empty string is StageUnset.
func ParseStage(value string) (Stage, error) {
	key := strings.ToLower(strings.TrimSpace(value))
	if key == "" {
		return StageUnset, nil
	}
	for stage, name := range stageNames {
		if name == key {
			return stage, nil
		}
	}
	return StageUnset, fmt.Errorf("%w: %q", ErrUnknownStage, value)
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Stage) UnmarshalText(text []byte) error {
	parsed, err := ParseStage(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Category classifies a strategic question. The zero value means no
// explicit category was supplied and the classifier must decide.
type Category uint8

const (
	CategoryUnset Category = iota
	CategoryGrowth
	CategoryBudget
	CategoryProduct
	CategoryPricing
	CategoryMarket
)

// Categories lists the closed set in classifier priority order.
var Categories = []Category{CategoryGrowth, CategoryBudget, CategoryProduct, CategoryPricing, CategoryMarket}

var categoryNames = map[Category]string{
	CategoryGrowth:  "growth",
	CategoryBudget:  "budget",
	CategoryProduct: "product",
	CategoryPricing: "pricing",
	CategoryMarket:  "market",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return ""
}

func ParseCategory(value string) (Category, error) {
	key := strings.ToLower(strings.TrimSpace(value))
	if key == "" {
		return CategoryUnset, nil
	}
	for category, name := range categoryNames {
		if name == key {
			return category, nil
		}
	}
	return CategoryUnset, fmt.Errorf("%w: %q", ErrUnknownCategory, value)
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Action is the initial, score-driven decision.
type Action uint8

const (
	ActionBlock Action = iota
	ActionPause
	ActionAdjust
	ActionExecute
)

var actionNames = map[Action]string{
	ActionExecute: "EXECUTE",
	ActionAdjust:  "ADJUST",
	ActionPause:   "PAUSE",
	ActionBlock:   "BLOCK",
}

func (a Action) String() string {
	return actionNames[a]
}

// Strength orders actions from BLOCK (0) to EXECUTE (3).
func (a Action) Strength() int {
	return int(a)
}

func ParseAction(value string) (Action, error) {
	key := strings.ToUpper(strings.TrimSpace(value))
	for action, name := range actionNames {
		if name == key {
			return action, nil
		}
	}
	return ActionBlock, fmt.Errorf("%w: %q", ErrUnknownAction, value)
}

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Verdict is the cross-validator's independent judgement.
type Verdict uint8

const (
	VerdictConfirm Verdict = iota
	VerdictAdjust
	VerdictBlock
)

var verdictNames = map[Verdict]string{
	VerdictConfirm: "CONFIRM",
	VerdictAdjust:  "ADJUST",
	VerdictBlock:   "BLOCK",
}

func (v Verdict) String() string {
	return verdictNames[v]
}

func ParseVerdict(value string) (Verdict, error) {
	key := strings.ToUpper(strings.TrimSpace(value))
	for verdict, name := range verdictNames {
		if name == key {
			return verdict, nil
		}
	}
	return VerdictConfirm, fmt.Errorf("%w: %q", ErrUnknownVerdict, value)
}

func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Verdict) UnmarshalText(text []byte) error {
	parsed, err := ParseVerdict(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Interpretation is the three-tier reading of a composite score. It is
// derived independently from Action and the two can disagree.
type Interpretation string

const (
	InterpretExecute      Interpretation = "EXECUTE"
	InterpretValidate     Interpretation = "VALIDATE"
	InterpretDoNotExecute Interpretation = "DO NOT EXECUTE"
)
