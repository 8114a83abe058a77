package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/google/cel-go/cel"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"decision-eval/backend/internal/decision"
	"decision-eval/backend/internal/match"
)

var ErrEmptyExpression = errors.New("rule expression can't be empty")

// Rule is an operator-defined hidden-risk check. Expression is a CEL
// predicate over the variables metrics (map of supplied metrics), stage,
// category and question (lower-case, accents removed).
type Rule struct {
	Name       string `yaml:"name"`
	Expression string `yaml:"expression"`
	Message    string `yaml:"message"`
}

type file struct {
	Rules []Rule `yaml:"rules"`
}

type compiled struct {
	Rule
	program cel.Program
}

// Set is a compiled, ordered list of rules. A nil *Set matches nothing.
type Set struct {
	rules       []compiled
	fingerprint string
}

// Facts is what a rule is evaluated against.
type Facts struct {
	Question string
	Context  decision.Context
	Category decision.Category
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("metrics", cel.MapType(cel.StringType, cel.DoubleType)),
		cel.Variable("stage", cel.StringType),
		cel.Variable("category", cel.StringType),
		cel.Variable("question", cel.StringType),
	)
}

// Compile builds programs for every rule, failing on the first bad one.
func Compile(rules []Rule) (*Set, error) {
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("error creating CEL environment: %w", err)
	}
	set := &Set{}
	h := sha256.New()
	for _, r := range rules {
		if r.Expression == "" {
			return nil, fmt.Errorf("rule %q: %w", r.Name, ErrEmptyExpression)
		}
		if r.Message == "" {
			return nil, fmt.Errorf("rule %q has no message", r.Name)
		}
		ast, issues := env.Compile(r.Expression)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("rule %q: error compiling CEL expression: %w", r.Name, issues.Err())
		}
		p, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("rule %q: error creating program: %w", r.Name, err)
		}
		set.rules = append(set.rules, compiled{Rule: r, program: p})
		fmt.Fprintf(h, "%q\x00%q\x00%q\n", r.Name, r.Expression, r.Message)
	}
	if len(set.rules) > 0 {
		set.fingerprint = hex.EncodeToString(h.Sum(nil))[:16]
	}
	return set, nil
}

// Parse reads a YAML rules document.
func Parse(data []byte) (*Set, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	return Compile(f.Rules)
}

// Load reads rules from path. An empty path yields an empty set.
func Load(path string) (*Set, error) {
	if path == "" {
		return &Set{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return Parse(data)
}

// Fingerprint identifies the rule contents and order. Empty for no rules.
func (s *Set) Fingerprint() string {
	if s == nil {
		return ""
	}
	return s.fingerprint
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Evaluate returns the messages of every rule whose predicate holds, in
// rule order. Rules that fail at evaluation time are skipped.
func (s *Set) Evaluate(f Facts) []string {
	if s.Len() == 0 {
		return nil
	}
	vars := map[string]any{
		"metrics":  f.Context.Metrics(),
		"stage":    f.Context.Stage.String(),
		"category": f.Category.String(),
		"question": match.Fold(f.Question),
	}
	var out []string
	for _, r := range s.rules {
		hit, err := r.eval(vars)
		if err != nil {
			logrus.WithError(err).WithField("rule", r.Name).Warn("custom rule skipped")
			continue
		}
		if hit {
			out = append(out, r.Message)
		}
	}
	return out
}

func (c compiled) eval(vars map[string]any) (bool, error) {
	out, _, err := c.program.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("error evaluating CEL expression: %w", err)
	}
	nv, err := out.ConvertToNative(reflect.TypeOf(true))
	if err != nil {
		return false, fmt.Errorf("rule did not produce a bool: %w", err)
	}
	return nv.(bool), nil
}
